// Token cache for interactive logins.
//
// Tokens acquired through the browser flow are persisted so later commands can
// authenticate without another round-trip.
package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/sdx/internal/shared"
	"golang.org/x/oauth2"
)

// DefaultTokenPath returns the token cache location, ~/.sdx/token.json.
func DefaultTokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".sdx", "token.json"), nil
}

// ResolveTokenPath returns the configured token path, falling back to the default.
func ResolveTokenPath(creds shared.SpotifyConfig) (string, error) {
	if creds.TokenPath != "" {
		return creds.TokenPath, nil
	}
	return DefaultTokenPath()
}

// LoadToken reads a cached OAuth token from path.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := shared.VerifyAndReadFile(path)
	if err != nil {
		return nil, err
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}

	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, fmt.Errorf("%w: token file holds no tokens", shared.ErrInvalidCredentials)
	}
	return &token, nil
}

// SaveToken writes an OAuth token to path, creating parent directories.
// Mode 0600: the file embeds a refresh token.
func SaveToken(path string, token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("%w: nil token", shared.ErrInvalidCredentials)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}

	data, err := shared.MarshalJSON(token, true)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}
