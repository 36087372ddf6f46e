package profile

import (
	"fmt"
	"strings"

	"skyline/tui/common"
)

// View renders the profile and the account's own feed.
func (m Model) View() string {
	var b strings.Builder

	name := m.profile.DisplayName
	if name == "" {
		name = m.author.Name()
	}
	handle := m.profile.Handle
	if handle == "" {
		handle = m.author.Handle
	}

	b.WriteString(common.AppTitleStyle.Padding(1, 0, 0, 1).Render(name))
	b.WriteString(common.HandleStyle.Render(" @" + handle))
	b.WriteString("\n")

	if m.profile.Bio != "" {
		b.WriteString(common.BioStyle.Render(common.TruncateLines(m.profile.Bio, m.width-4, 2)) + "\n")
	}
	if m.profile.DID != "" {
		stats := fmt.Sprintf("  %d posts · %d followers · %d following", m.profile.Posts, m.profile.Followers, m.profile.Follows)
		b.WriteString(common.CountStyle.Render(stats) + "\n")
	}
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(fmt.Sprintf("  %s Loading feed...\n", m.spinner.View()))
	case m.err != nil:
		b.WriteString(common.ErrorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n")
	case len(m.posts) == 0:
		b.WriteString("  No posts yet.\n")
	default:
		m.renderPosts(&b)
	}

	help := "  ↑/↓ navigate · esc back · q quit"
	if m.olderLoad {
		help = fmt.Sprintf("  %s loading more...", m.spinner.View())
	}
	b.WriteString(common.StatusBarStyle.Render(help))

	return common.FitWidth(b.String(), m.width)
}

func (m Model) renderPosts(b *strings.Builder) {
	width := m.width - 6
	if width < 20 {
		width = 20
	}

	// Window the list around the selection.
	reserved := 8
	available := m.height - reserved
	if available < 0 {
		available = 0
	}
	visible := available / 5
	if visible < 1 {
		visible = 1
	}
	start := 0
	if m.selected >= visible {
		start = m.selected - visible + 1
	}
	end := start + visible
	if end > len(m.posts) {
		end = len(m.posts)
	}

	for i := start; i < end; i++ {
		p := m.posts[i]
		var box strings.Builder
		if p.RepostedBy != nil {
			box.WriteString(common.RepostStyle.Render("↻ reposted by "+p.RepostedBy.Name()) + "\n")
		}
		box.WriteString(common.TimestampStyle.Render(common.RelTime(p.IndexedAt)) + "\n")
		box.WriteString(common.ContentStyle.Render(common.TruncateLines(p.Text, width-2, 2)))

		if i == m.selected {
			b.WriteString(common.SelectedStyle.Width(width).Render(box.String()))
		} else {
			b.WriteString(common.UnselectedStyle.Width(width).Render(box.String()))
		}
		b.WriteString("\n")
	}
}
