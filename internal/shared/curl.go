// Utilities for rendering HTTP requests as cURL commands.
package shared

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// CurlRequest captures the parts of an HTTP request needed to reproduce it from a shell.
type CurlRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// NewCurlRequest builds a [CurlRequest] from an [http.Request].
//
// Only single-valued headers are captured; the body is not read.
func NewCurlRequest(req *http.Request) *CurlRequest {
	headers := make(map[string]string, len(req.Header))
	for key := range req.Header {
		headers[key] = req.Header.Get(key)
	}

	return &CurlRequest{
		Method:  req.Method,
		URL:     req.URL.String(),
		Headers: headers,
	}
}

// String renders the request as a copy-pasteable cURL command.
//
// Authorization values are redacted so diagnostic output can be shared safely.
// Headers are emitted in sorted order for stable output.
func (c *CurlRequest) String() string {
	parts := []string{"curl"}

	if c.Method != "" && c.Method != http.MethodGet {
		parts = append(parts, "-X", c.Method)
	}

	parts = append(parts, shellQuote(c.URL))

	keys := make([]string, 0, len(c.Headers))
	for key := range c.Headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := c.Headers[key]
		if strings.EqualFold(key, "authorization") {
			value = redactAuthorization(value)
		}
		parts = append(parts, "-H", shellQuote(fmt.Sprintf("%s: %s", key, value)))
	}

	if len(c.Body) > 0 {
		parts = append(parts, "--data", shellQuote(string(c.Body)))
	}

	return strings.Join(parts, " ")
}

// redactAuthorization keeps the scheme ("Bearer", "Basic") and masks the credential.
func redactAuthorization(value string) string {
	fields := strings.Fields(value)
	if len(fields) == 2 {
		return fields[0] + " [redacted]"
	}
	return "[redacted]"
}

// shellQuote wraps s in single quotes, escaping embedded single quotes.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
