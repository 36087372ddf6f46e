package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"skyline/app"
	"skyline/tui/common"
	"skyline/tui/feed"
	"skyline/tui/profile"
)

// Deps holds all dependencies the TUI needs. Plain struct, not a DI container.
type Deps struct {
	Timeline app.TimelineService
	Account  app.AccountService
	Actor    string // Root handle or DID whose network is shown
}

type activeView int

const (
	feedView activeView = iota
	profileView
)

// App is the root Bubble Tea model. It routes between sub-views.
type App struct {
	deps    Deps
	active  activeView
	feed    feed.Model
	profile profile.Model
	keys    common.KeyMap
}

// NewApp creates the root model with all dependencies wired.
func NewApp(deps Deps) App {
	return App{
		deps:   deps,
		active: feedView,
		feed:   feed.New(deps.Timeline, deps.Actor),
		keys:   common.DefaultKeyMap(),
	}
}

// Init delegates to the feed view.
func (a App) Init() tea.Cmd {
	return a.feed.Init()
}

// Update handles messages and routes to the active sub-model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, a.keys.Quit) {
			return a, tea.Quit
		}

	case tea.WindowSizeMsg:
		// Both views track the window size.
		var feedCmd, profCmd tea.Cmd
		a.feed, feedCmd = a.feed.Update(msg)
		a.profile, profCmd = a.profile.Update(msg)
		return a, tea.Batch(feedCmd, profCmd)

	case feed.OpenProfileMsg:
		a.active = profileView
		a.profile = profile.New(a.deps.Timeline, a.deps.Account, msg.Author)
		return a, a.profile.Init()

	case profile.BackMsg:
		a.active = feedView
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		switch a.active {
		case feedView:
			a.feed, cmd = a.feed.Update(msg)
		case profileView:
			a.profile, cmd = a.profile.Update(msg)
		}
		return a, cmd
	}

	switch a.active {
	case feedView:
		updated, cmd := a.feed.Update(msg)
		a.feed = updated
		return a, cmd
	case profileView:
		updated, cmd := a.profile.Update(msg)
		a.profile = updated
		return a, cmd
	}

	return a, nil
}

// View renders the active sub-model.
func (a App) View() string {
	switch a.active {
	case profileView:
		return a.profile.View()
	default:
		return a.feed.View()
	}
}
