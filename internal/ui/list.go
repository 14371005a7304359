package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/sdx/internal/models"
)

var (
	_ list.Item = runItem{}
	_ list.Item = trackItem{}
)

// runItem wraps [models.CollectionRun] to implement [list.Item].
type runItem struct {
	run *models.CollectionRun
}

func (i runItem) FilterValue() string { return i.run.ID() }
func (i runItem) Title() string {
	return fmt.Sprintf("%s (%s)", i.run.ID(), i.run.TimeRange())
}
func (i runItem) Description() string {
	desc := fmt.Sprintf("%s • %d tracks", i.run.Status(), i.run.TracksTotal())
	if i.run.FeaturesFailed() > 0 {
		desc = fmt.Sprintf("%s • %d features failed", desc, i.run.FeaturesFailed())
	}
	return desc
}

// trackItem wraps [models.TopTrack] to implement [list.Item].
type trackItem struct {
	track models.TopTrack
}

func (i trackItem) FilterValue() string { return i.track.Name }
func (i trackItem) Title() string {
	return fmt.Sprintf("%d. %s", i.track.Rank, i.track.Name)
}
func (i trackItem) Description() string {
	desc := i.track.Artist
	if i.track.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album)
	}
	return desc
}
