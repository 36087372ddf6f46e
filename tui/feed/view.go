package feed

import (
	"fmt"
	"strings"

	"skyline/domain"
	"skyline/tui/common"
)

// View renders the merged timeline as a string.
func (m Model) View() string {
	var b strings.Builder

	title := common.AppTitleStyle.Padding(1, 0, 0, 1).Render("☁ skyline")
	tagline := common.TaglineStyle.Render("<your network, one feed>")
	actor := common.ActorStyle.Margin(0, 0, 1, 2).Render("@" + m.actor)

	b.WriteString(title + tagline + "\n")
	b.WriteString(actor + "\n")

	switch {
	case m.loading && len(m.posts) == 0:
		b.WriteString(fmt.Sprintf("  %s Gathering your network's posts...\n", m.spinner.View()))
	case m.err != nil:
		b.WriteString(common.ErrorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
		b.WriteString("\n\n  Press r to retry.\n")
	case len(m.posts) == 0:
		b.WriteString("  Nothing here. The accounts you follow have been quiet.\n")
	default:
		m.renderPosts(&b)
	}

	help := "  ↑/↓ navigate · m load more · o open · p profile · r refresh · q quit"
	if m.olderLoad {
		help = fmt.Sprintf("  %s loading more...", m.spinner.View())
	}
	b.WriteString(common.StatusBarStyle.Render(help))

	return common.FitWidth(b.String(), m.width)
}

func (m Model) renderPosts(b *strings.Builder) {
	start := m.startIndex
	if start < 0 {
		start = 0
	}
	if start >= len(m.posts) {
		start = len(m.posts) - 1
	}
	end := start + m.visibleCount()
	if end > len(m.posts) {
		end = len(m.posts)
	}

	width := m.width - 6
	if width < 20 {
		width = 20
	}

	for i := start; i < end; i++ {
		box := m.renderPost(m.posts[i], width)
		if i == m.cursor {
			b.WriteString(common.SelectedStyle.Width(width).Render(box))
		} else {
			b.WriteString(common.UnselectedStyle.Width(width).Render(box))
		}
		b.WriteString("\n")
	}
}

func (m Model) renderPost(p domain.Post, width int) string {
	var b strings.Builder

	if p.RepostedBy != nil {
		b.WriteString(common.RepostStyle.Render("↻ reposted by "+p.RepostedBy.Name()) + "\n")
	}

	header := common.AuthorStyle.Render(p.Author.Name()) +
		common.HandleStyle.Render(" @"+p.Author.Handle) +
		common.TimestampStyle.Render(" · "+common.RelTime(p.IndexedAt))
	b.WriteString(header + "\n")

	b.WriteString(common.ContentStyle.Render(common.TruncateLines(p.Text, width-2, 3)))

	if line := embedSummary(p.Embed); line != "" {
		b.WriteString("\n" + common.EmbedStyle.Render(line))
	}

	counts := fmt.Sprintf("↩ %d  ↻ %d  ♥ %d", p.ReplyCount, p.RepostCount, p.LikeCount)
	b.WriteString("\n" + common.CountStyle.Render(counts))

	return b.String()
}

func embedSummary(e domain.Embed) string {
	switch e.Kind {
	case domain.EmbedImages:
		alt := ""
		for _, img := range e.Images {
			if img.Alt != "" {
				alt = ": " + img.Alt
				break
			}
		}
		if len(e.Images) == 1 {
			return "🖼 1 image" + alt
		}
		return fmt.Sprintf("🖼 %d images%s", len(e.Images), alt)
	case domain.EmbedExternal:
		title := e.External.Title
		if title == "" {
			title = e.External.URI
		}
		return "🔗 " + title
	case domain.EmbedVideo:
		if e.Video.Alt != "" {
			return "▶ video: " + e.Video.Alt
		}
		return "▶ video"
	case domain.EmbedUnknown:
		return "⧉ attachment"
	default:
		return ""
	}
}
