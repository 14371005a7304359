// Package web implements an HTMX-based dashboard mirroring the TUI functionality.
//
// # HTMX Dashboard Implementation Plan
//
// # Architecture
//
// The dashboard replicates the run-browser TUI workflow using server-side rendering
// with HTMX for dynamic updates. Each view corresponds to a template and handler:
//
//  1. Run List: Server-rendered table of cached runs with hx-get for detail
//  2. Run Detail: HTMX partial swap showing cached tracks and feature coverage
//  3. Collect Confirm: Modal confirmation with hx-post trigger
//  4. Progress Monitor: SSE (Server-Sent Events) streaming collection progress
//  5. Run Summary: Totals, failed-feature breakdown, and links to CSV output
//
// Core Components
//
//   - HTTP Server: server.BasicRouter with html/template rendering
//   - Engine Integration: Uses the same tasks.CollectEngine as the TUI
//   - Run Store: repositories.RunCacheAdapter backing all read views
//   - SSE Handler: Streams real-time progress during a collection pass
//
// Routes
//
//	GET  /                    → Run list view
//	GET  /runs/{id}           → HTMX partial: run detail with cached tracks
//	POST /collect             → Start collection, return SSE endpoint
//	GET  /collect/{id}/stream → SSE progress stream
//	GET  /collect/{id}/result → Final run summary view
//
// Templates
//
//   - base.html: Layout with navigation and database status
//   - runs.html: Table with hx-get on rows
//   - run_detail.html: Partial template for cached tracks and features
//   - progress.html: SSE consumer with phase labels
//   - summary.html: Feature coverage and failed-chunk breakdown
//
// # State Management
//
// Unlike the TUI's in-memory state, the dashboard persists state in:
//   - CollectionRun rows: run progress and totals survive across requests
//   - In-memory channels: SSE connections for the active collection
//
// # Progress Streaming
//
// Collection progress uses Server-Sent Events:
//  1. POST /collect starts a run, returns its run ID
//  2. Client opens SSE connection to /collect/{id}/stream
//  3. Handler launches goroutine running CollectEngine.Run
//  4. Progress channel updates stream as SSE events with phase names
//  5. On completion, send "done" event with the summary URL
//
// Dependencies
//
//   - html/template: Server-side rendering
//   - internal/server: router, middleware, and OAuth handler reuse
//
// Implementation Tasks
//
//  1. HTTP server setup reusing server.BasicRouter registration
//  2. Template structure with HTMX integration
//  3. Run list handler over RunCacheAdapter.ListRuns
//  4. Run detail handler (HTMX partial) over RunTracks/RunFeatures
//  5. Collect endpoint wiring CollectEngine with a progress channel
//  6. SSE handler streaming ProgressUpdate events
//  7. Summary handler rendering CollectionResult totals
//  8. Error handling and validation
//
// # Testing Strategy
//
// Use httptest:
//   - Fake RunStore for cached run data
//   - Fake CollectEngine for collection passes
//   - Validate HTMX headers and response structure
//   - Test SSE stream formatting
package web
