package feed

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"skyline/app"
	"skyline/domain"
	"skyline/tui/common"
)

// --- Messages ---

// TimelineLoadedMsg is sent when a merged timeline fetch completes.
type TimelineLoadedMsg struct {
	Timeline domain.Timeline
	Append   bool // true for a load-more page, false for a fresh load
	ReqSeq   int
}

// TimelineErrorMsg is sent when a merged timeline fetch fails outright
// (resolution or follow-graph failure; per-account failures never get here).
type TimelineErrorMsg struct {
	Err    error
	ReqSeq int
}

// OpenProfileMsg asks the root model to show an author's own feed.
type OpenProfileMsg struct {
	Author domain.Author
}

// --- Model ---

// Model holds the state for the merged timeline view.
type Model struct {
	timeline app.TimelineService
	actor    string

	posts   []domain.Post
	cursors domain.CursorMap // As returned by the last fetch; nil before first load

	cursor     int
	startIndex int
	loading    bool
	olderLoad  bool // A load-more request is in flight
	err        error
	reqSeq     int // Guards against stale responses after a refresh

	keys    common.KeyMap
	spinner spinner.Model
	width   int
	height  int
}

// New creates a feed model for the given root actor.
func New(timeline app.TimelineService, actor string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#42A5F5"))

	return Model{
		timeline: timeline,
		actor:    actor,
		loading:  true,
		keys:     common.DefaultKeyMap(),
		spinner:  s,
	}
}

// Init starts the initial timeline fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchTimeline(nil, m.reqSeq),
		m.spinner.Tick,
	)
}

// Update handles messages for the feed view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.loading && !m.olderLoad {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TimelineLoadedMsg:
		if msg.ReqSeq != m.reqSeq {
			return m, nil
		}
		if msg.Append {
			m.posts = append(m.posts, msg.Timeline.Posts...)
		} else {
			m.posts = msg.Timeline.Posts
			m.cursor = 0
			m.startIndex = 0
		}
		m.cursors = msg.Timeline.Cursors
		m.loading = false
		m.olderLoad = false
		m.err = nil
		return m, nil

	case TimelineErrorMsg:
		if msg.ReqSeq != m.reqSeq {
			return m, nil
		}
		m.err = msg.Err
		m.loading = false
		m.olderLoad = false
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Refresh):
			if m.loading {
				break
			}
			m.loading = true
			m.err = nil
			m.reqSeq++
			// Fresh session: discard pagination state entirely.
			m.cursors = nil
			return m, tea.Batch(m.fetchTimeline(nil, m.reqSeq), m.spinner.Tick)

		case key.Matches(msg, m.keys.LoadMore):
			return m.startLoadMore()

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.startIndex {
					m.startIndex = m.cursor
				}
			}

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.posts)-1 {
				m.cursor++
				if m.cursor >= m.startIndex+m.visibleCount() {
					m.startIndex++
				}
				return m, nil
			}
			// Scrolled past the end: fetch the next page of every sub-feed.
			return m.startLoadMore()

		case key.Matches(msg, m.keys.Open):
			if p, ok := m.SelectedPost(); ok {
				return m, openURL(p.WebURL())
			}

		case key.Matches(msg, m.keys.Profile):
			if p, ok := m.SelectedPost(); ok {
				author := p.Author
				return m, func() tea.Msg { return OpenProfileMsg{Author: author} }
			}
		}
	}

	return m, nil
}

func (m Model) startLoadMore() (Model, tea.Cmd) {
	// Nothing to resume: every sub-feed is exhausted or never loaded.
	if m.loading || m.olderLoad || len(m.cursors) == 0 {
		return m, nil
	}
	m.olderLoad = true
	return m, tea.Batch(m.fetchTimeline(m.cursors, m.reqSeq), m.spinner.Tick)
}

// visibleCount estimates how many post boxes fit in the current height.
func (m Model) visibleCount() int {
	reserved := 7 // Header and status bar
	available := m.height - reserved
	if available < 0 {
		available = 0
	}
	// Each box renders to roughly 6 lines (4 content + 2 border).
	count := available / 6
	if count < 1 {
		count = 1
	}
	return count
}

// Posts returns the current posts for external access.
func (m Model) Posts() []domain.Post {
	return m.posts
}

// Cursors returns the pagination state from the last fetch.
func (m Model) Cursors() domain.CursorMap {
	return m.cursors
}

// Loading reports whether an initial or refresh fetch is in flight.
func (m Model) Loading() bool {
	return m.loading
}

// Err returns the current fatal error, if any.
func (m Model) Err() error {
	return m.err
}

// SelectedPost returns the currently highlighted post, if any.
func (m Model) SelectedPost() (domain.Post, bool) {
	if len(m.posts) == 0 || m.cursor >= len(m.posts) {
		return domain.Post{}, false
	}
	return m.posts[m.cursor], true
}
