package ui

import (
	"github.com/desertthunder/sdx/internal/models"
	"github.com/desertthunder/sdx/internal/tasks"
)

// runsLoadedMsg carries the cached runs fetched during Init or a refresh.
type runsLoadedMsg struct {
	runs []*models.CollectionRun
	err  error
}

// runDetailMsg carries the cached tracks for a selected run.
type runDetailMsg struct {
	run    *models.CollectionRun
	tracks []models.TopTrack
	err    error
}

// progressUpdateMsg relays one collection progress event into the Elm loop.
type progressUpdateMsg tasks.ProgressUpdate

// collectDoneMsg signals the end of a collection pass started from the TUI.
type collectDoneMsg struct {
	result *tasks.CollectionResult
	err    error
}
