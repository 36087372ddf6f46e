package common

import "github.com/charmbracelet/lipgloss"

var (
	// AppTitleStyle styles the application title.
	AppTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#42A5F5")).
			Padding(1, 2, 0, 1)

	// ActorStyle styles the root actor shown next to the title.
	ActorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6DA95")).
			Bold(true)

	// TaglineStyle styles the app's tagline.
	TaglineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555")).
			Italic(true).
			MarginLeft(1)

	// AuthorStyle styles the post author display name.
	AuthorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7DC4E4"))

	// HandleStyle styles the author handle.
	HandleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E738D"))

	// TimestampStyle styles timestamps.
	TimestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E738D"))

	// ContentStyle styles post text.
	ContentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CAD3F5"))

	// RepostStyle styles the "reposted by" attribution line.
	RepostStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6DA95"))

	// EmbedStyle styles embed summaries (images, link cards, video).
	EmbedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8AADF4")).
			Italic(true)

	// CountStyle styles reply/repost/like counts.
	CountStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E738D"))

	// SelectedStyle highlights the currently selected post.
	SelectedStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#42A5F5")).
			Padding(0, 1)

	// UnselectedStyle gives unselected posts a subtle greyed-out border.
	UnselectedStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#45475A")).
			Padding(0, 1)

	// StatusBarStyle styles the bottom status bar.
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E738D")).
			Padding(1, 0, 0, 0)

	// ErrorStyle styles error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ED8796")).
			Bold(true)

	// BioStyle styles profile descriptions.
	BioStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CAD3F5")).
			MarginLeft(1)
)
