package profile

import (
	"context"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"skyline/app"
	"skyline/domain"
	"skyline/tui/common"
)

const pageSize = 20

// --- Messages ---

// LoadedMsg is sent when the profile and first feed page arrive.
type LoadedMsg struct {
	Profile app.Profile
	Posts   []domain.Post
	Cursor  string
	Err     error
}

// MoreMsg is sent when a further feed page arrives.
type MoreMsg struct {
	Posts  []domain.Post
	Cursor string
	Err    error
}

// BackMsg asks the root model to return to the merged feed.
type BackMsg struct{}

// --- Model ---

// Model shows a single account's own feed: the simpler parallel path that
// skips the follow graph and merge entirely.
type Model struct {
	timeline app.TimelineService
	account  app.AccountService
	author   domain.Author

	profile app.Profile
	posts   []domain.Post
	cursor  string // Continuation for the author's feed; "" when exhausted

	selected  int
	loading   bool
	olderLoad bool
	err       error

	keys    common.KeyMap
	spinner spinner.Model
	width   int
	height  int
}

// New creates a profile model for the given author snapshot.
func New(timeline app.TimelineService, account app.AccountService, author domain.Author) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#42A5F5"))

	return Model{
		timeline: timeline,
		account:  account,
		author:   author,
		loading:  true,
		keys:     common.DefaultKeyMap(),
		spinner:  s,
	}
}

// Init fetches the profile and the first feed page concurrently.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchInitial(), m.spinner.Tick)
}

func (m Model) fetchInitial() tea.Cmd {
	timeline := m.timeline
	account := m.account
	author := m.author
	return func() tea.Msg {
		var (
			prof   app.Profile
			posts  []domain.Post
			cursor string
			perr   error
			ferr   error
		)
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			prof, perr = account.Profile(context.Background(), author.DID)
		}()
		go func() {
			defer wg.Done()
			posts, cursor, ferr = timeline.UserTimeline(context.Background(), author.DID, pageSize, "")
		}()
		wg.Wait()
		if perr != nil {
			return LoadedMsg{Err: perr}
		}
		if ferr != nil {
			return LoadedMsg{Err: ferr}
		}
		return LoadedMsg{Profile: prof, Posts: posts, Cursor: cursor}
	}
}

func (m Model) fetchMore() tea.Cmd {
	timeline := m.timeline
	did := m.author.DID
	cursor := m.cursor
	return func() tea.Msg {
		posts, next, err := timeline.UserTimeline(context.Background(), did, pageSize, cursor)
		return MoreMsg{Posts: posts, Cursor: next, Err: err}
	}
}

// Update handles messages for the profile view.
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

	case LoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.profile = msg.Profile
		m.posts = msg.Posts
		m.cursor = msg.Cursor
		m.err = nil
		return m, nil

	case MoreMsg:
		m.olderLoad = false
		if msg.Err != nil {
			// Load-more failures are transient; keep what we have.
			return m, nil
		}
		m.posts = append(m.posts, msg.Posts...)
		m.cursor = msg.Cursor
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(msg, m.keys.Up):
			if m.selected > 0 {
				m.selected--
			}

		case key.Matches(msg, m.keys.Down):
			if m.selected < len(m.posts)-1 {
				m.selected++
				return m, nil
			}
			if m.cursor != "" && !m.olderLoad && !m.loading {
				m.olderLoad = true
				return m, tea.Batch(m.fetchMore(), m.spinner.Tick)
			}
		}
	}

	return m, nil
}

// Posts returns the loaded posts for external access.
func (m Model) Posts() []domain.Post {
	return m.posts
}

// Err returns the current error, if any.
func (m Model) Err() error {
	return m.err
}
