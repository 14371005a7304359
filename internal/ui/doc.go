// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing cached collection runs:
//  1. [RunListView] : Browse cached runs, most recent first
//  2. [TrackListView] : Inspect the top tracks cached for a run
//  3. [ConfirmView] : Confirm starting a new collection pass
//  4. [CollectView] : Monitor real-time collection progress
//  5. [ResultView] : Display run totals and any tracks missing features
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the CollectEngine, providing non-blocking
// status reporting during a collection pass.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, c, q) with contextual
// help displayed via charmbracelet/bubbles/help.
package ui
