// Package ui implements the interactive match review terminal interface
// using bubbletea's Elm architecture.
//
// The TUI provides a two-view workflow for resolving pending matches:
//  1. [SongListView] : Browse songs that need a manual decision
//  2. [CandidateView] : Pick a catalog candidate or skip the song
//
// Every decision is written to the resolution cache before the view
// advances, so quitting mid-review never loses completed work.
package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sundowner/kutx2spotify/internal/cache"
	"github.com/sundowner/kutx2spotify/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SongListView ViewState = iota
	CandidateView
	DoneView
)

// Recorder persists a manual match decision.
type Recorder interface {
	Record(fingerprint string, entry cache.ResolutionEntry) error
}

// Decision records one resolved song for the final summary.
type Decision struct {
	Song    models.Song
	Track   *models.SpotifyTrack // nil when skipped
	Skipped bool
}

// Model represents the review TUI application state.
type Model struct {
	view       ViewState
	recorder   Recorder
	pending    []models.Match
	current    int
	songList   list.Model
	candidates list.Model
	decisions  []Decision
	width      int
	height     int
	err        error
	help       help.Model
	keys       keyMap
}

// NewModel creates a review model for the given pending matches.
func NewModel(pending []models.Match, recorder Recorder) *Model {
	items := make([]list.Item, len(pending))
	for i, m := range pending {
		items[i] = songItem{match: m}
	}
	songList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	songList.Title = "Songs needing review"

	return &Model{
		view:     SongListView,
		recorder: recorder,
		pending:  pending,
		current:  -1,
		songList: songList,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Decisions returns the decisions made during this session, in the order
// they were resolved.
func (m *Model) Decisions() []Decision {
	return m.decisions
}

// Err returns the error that ended the session, if any.
func (m *Model) Err() error {
	return m.err
}

// Init implements [tea.Model]. There is nothing to fetch up front.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.songList.SetSize(msg.Width-4, msg.Height-8)
		if m.candidates.Width() == 0 {
			m.candidates.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SongListView:
			return m.handleSongListKeys(msg)
		case CandidateView:
			return m.handleCandidateKeys(msg)
		case DoneView:
			return m.handleDoneKeys(msg)
		}
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case SongListView:
		return m.renderSongList()
	case CandidateView:
		return m.renderCandidates()
	case DoneView:
		return m.renderDone()
	default:
		return ""
	}
}

func (m *Model) handleSongListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.view = DoneView
		return m, nil
	case "s":
		if item, ok := m.songList.SelectedItem().(songItem); ok {
			return m.resolve(item.match, nil)
		}
	case "enter":
		if item, ok := m.songList.SelectedItem().(songItem); ok {
			m.openCandidates(item.match)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

func (m *Model) handleCandidateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.view = DoneView
		return m, nil
	case "esc":
		m.view = SongListView
		return m, nil
	case "s":
		return m.resolve(m.pending[m.current], nil)
	case "enter":
		if item, ok := m.candidates.SelectedItem().(candidateItem); ok {
			track := item.track
			return m.resolve(m.pending[m.current], &track)
		}
	}

	var cmd tea.Cmd
	m.candidates, cmd = m.candidates.Update(msg)
	return m, cmd
}

func (m *Model) handleDoneKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "enter":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SongListView:
		m.songList, cmd = m.songList.Update(msg)
	case CandidateView:
		m.candidates, cmd = m.candidates.Update(msg)
	}
	return m, cmd
}

// openCandidates switches to the candidate view for the given match.
func (m *Model) openCandidates(match models.Match) {
	m.current = m.indexOf(match)

	items := make([]list.Item, len(match.Alternatives))
	for i, alt := range match.Alternatives {
		items[i] = candidateItem{track: alt}
	}
	m.candidates = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.candidates.Title = fmt.Sprintf("Candidates for '%s - %s'", match.Song.Artist, match.Song.Title)
	m.candidates.SetSize(m.width-4, m.height-8)
	m.view = CandidateView
}

func (m *Model) indexOf(match models.Match) int {
	fp := match.Song.Fingerprint()
	for i, p := range m.pending {
		if p.Song.Fingerprint() == fp {
			return i
		}
	}
	return -1
}

// resolve records the decision durably, removes the song from the pending
// list, and advances to the next view.
func (m *Model) resolve(match models.Match, track *models.SpotifyTrack) (tea.Model, tea.Cmd) {
	entry := cache.SkipResolution()
	if track != nil {
		entry = cache.TrackResolution(track.ID, models.TierExact)
	}

	if m.recorder != nil {
		if err := m.recorder.Record(match.Song.Fingerprint(), entry); err != nil {
			m.err = err
			return m, nil
		}
	}

	m.decisions = append(m.decisions, Decision{
		Song:    match.Song,
		Track:   track,
		Skipped: track == nil,
	})
	m.removePending(match)

	if len(m.pending) == 0 {
		m.view = DoneView
		return m, nil
	}
	m.view = SongListView
	return m, nil
}

func (m *Model) removePending(match models.Match) {
	idx := m.indexOf(match)
	if idx < 0 {
		return
	}
	m.pending = append(m.pending[:idx], m.pending[idx+1:]...)

	items := make([]list.Item, len(m.pending))
	for i, p := range m.pending {
		items[i] = songItem{match: p}
	}
	m.songList.SetItems(items)
	m.current = -1
}

func (m *Model) renderSongList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.skip, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.songList.View(), helpView)
}

func (m *Model) renderCandidates() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.skip, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.candidates.View(), helpView)
}

func (m *Model) renderDone() string {
	title := styles.success.Render("✓ Review complete")
	if len(m.decisions) == 0 {
		title = styles.warning.Render("No songs resolved")
	}

	body := ""
	picked, skipped := 0, 0
	for _, d := range m.decisions {
		if d.Skipped {
			skipped++
			body += fmt.Sprintf("\n  • %s - %s: skipped", d.Song.Artist, d.Song.Title)
			continue
		}
		picked++
		body += fmt.Sprintf("\n  • %s - %s → %s", d.Song.Artist, d.Song.Title, d.Track.Title)
	}

	info := fmt.Sprintf("\n\nResolved %d, skipped %d, remaining %d", picked, skipped, len(m.pending))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})

	return fmt.Sprintf("%s%s%s\n\n%s", title, body, info, helpView)
}
