package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/sdx/internal/models"
	"github.com/desertthunder/sdx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	RunListView ViewState = iota
	TrackListView
	ConfirmView
	CollectView
	ResultView
)

// RunStore reads cached collection runs for display.
// Satisfied by the repositories run-cache adapter.
type RunStore interface {
	ListRuns() ([]*models.CollectionRun, error)
	RunTracks(runID string) ([]models.TopTrack, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	store        RunStore
	engine       tasks.CollectEngine
	width        int
	height       int
	runList      list.Model
	runs         []*models.CollectionRun
	trackList    list.Model
	selectedRun  *models.CollectionRun
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	result       *tasks.CollectionResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
// The engine may be nil, in which case starting a collection is disabled.
func NewModel(ctx context.Context, store RunStore, engine tasks.CollectEngine) *Model {
	return &Model{
		ctx:    ctx,
		view:   RunListView,
		store:  store,
		engine: engine,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init initializes the TUI by loading cached runs.
func (m *Model) Init() tea.Cmd {
	return m.loadRuns()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.runList.Width() == 0 {
			m.runList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.trackList.Width() == 0 {
			m.trackList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case RunListView:
			return m.handleRunListKeys(msg)
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case runsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.runs = msg.runs
		items := make([]list.Item, len(msg.runs))
		for i, run := range msg.runs {
			items[i] = runItem{run: run}
		}
		m.runList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.runList.Title = "Collection Runs"
		m.runList.SetSize(m.width-4, m.height-8)
		return m, nil

	case runDetailMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = RunListView
			return m, nil
		}
		m.selectedRun = msg.run
		items := make([]list.Item, len(msg.tracks))
		for i, track := range msg.tracks {
			items[i] = trackItem{track: track}
		}
		m.trackList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.trackList.Title = fmt.Sprintf("Tracks in run %s", msg.run.ID())
		m.trackList.SetSize(m.width-4, m.height-8)
		m.view = TrackListView
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case collectDoneMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case RunListView:
		return m.renderRunList()
	case TrackListView:
		return m.renderTrackList()
	case ConfirmView:
		return m.renderConfirm()
	case CollectView:
		return m.renderCollect()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleRunListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		return m, m.loadRuns()
	case "c":
		if m.engine != nil {
			m.view = ConfirmView
			return m, nil
		}
	case "enter":
		selected := m.runList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(runItem); ok {
				return m, m.loadRunDetail(item.run)
			}
		}
	}

	var cmd tea.Cmd
	m.runList, cmd = m.runList.Update(msg)
	return m, cmd
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = RunListView
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = RunListView
		return m, nil
	case "y":
		m.view = CollectView
		return m, m.startCollection()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = RunListView
		m.selectedRun = nil
		m.result = nil
		m.err = nil
		return m, m.loadRuns()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case RunListView:
		m.runList, cmd = m.runList.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) loadRuns() tea.Cmd {
	return func() tea.Msg {
		runs, err := m.store.ListRuns()
		return runsLoadedMsg{runs: runs, err: err}
	}
}

func (m *Model) loadRunDetail(run *models.CollectionRun) tea.Cmd {
	return func() tea.Msg {
		tracks, err := m.store.RunTracks(run.ID())
		return runDetailMsg{run: run, tracks: tracks, err: err}
	}
}

func (m *Model) startCollection() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	progress := m.progressChan

	go func() {
		result, err := m.engine.Run(m.ctx, progress)
		m.result = result
		m.err = err
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return collectDoneMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return collectDoneMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderRunList() string {
	if len(m.runs) == 0 {
		title := styles.title.Render("Collection Runs")
		empty := "No cached runs yet. Press c to start a collection."
		helpView := m.help.ShortHelpView([]key.Binding{m.keys.collect, m.keys.restart, m.keys.quit})
		return fmt.Sprintf("%s\n%s\n\n%s", title, empty, helpView)
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.collect, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.runList.View(), helpView)
}

func (m *Model) renderTrackList() string {
	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render("Start a new collection run?")
	info := "\nFetches top tracks, artists, audio features, and recommendations,\nthen writes CSV files and caches the run.\n"

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderCollect() string {
	title := styles.title.Render("Collecting Listening Data")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchTopTracks:
		phase = "Fetching top tracks..."
	case tasks.FetchTopArtists:
		phase = "Fetching top artists..."
	case tasks.FetchFeatures:
		phase = fmt.Sprintf("Fetching audio features (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.MergeFeatures:
		phase = "Merging tracks with features..."
	case tasks.DeriveSeeds:
		phase = "Deriving seed genres..."
	case tasks.FetchRecommendations:
		phase = "Fetching recommendations..."
	case tasks.WriteOutput:
		phase = "Writing CSV files..."
	case tasks.CacheRun:
		phase = "Caching run..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Collection failed: %v\n\nPress r to go back, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to go back, q to quit")
	}

	title := styles.ok.Render("✓ Collection Complete!")
	info := fmt.Sprintf(
		"\nRun: %s (%s)\nTracks: %d\nFeatures: %d fetched, %d failed\nRecommendations: %d\nFiles: %d",
		m.result.RunID,
		m.result.TimeRange,
		len(m.result.Tracks),
		len(m.result.Features),
		len(m.result.FailedFeatures),
		len(m.result.Recommendations),
		len(m.result.Files),
	)

	var failed string
	if len(m.result.FailedFeatures) > 0 {
		failed = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("%d tracks missing features:", len(m.result.FailedFeatures))))
		for id, reason := range m.result.FailedFeatures {
			failed += fmt.Sprintf("\n  • %s - %s", id, reason)
		}
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}
