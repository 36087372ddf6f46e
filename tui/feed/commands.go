package feed

import (
	"context"
	"net/url"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"skyline/domain"
)

func (m Model) fetchTimeline(cursors domain.CursorMap, reqSeq int) tea.Cmd {
	timeline := m.timeline
	actor := m.actor
	appendPage := cursors != nil
	return func() tea.Msg {
		tl, err := timeline.MergedTimeline(context.Background(), actor, cursors)
		if err != nil {
			return TimelineErrorMsg{Err: err, ReqSeq: reqSeq}
		}
		return TimelineLoadedMsg{Timeline: tl, Append: appendPage, ReqSeq: reqSeq}
	}
}

func openURL(rawURL string) tea.Cmd {
	if !isSafeExternalURL(rawURL) {
		return nil
	}
	return func() tea.Msg {
		_ = exec.Command("open", rawURL).Start()
		return nil
	}
}

func isSafeExternalURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Host == "" {
		return false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return true
	default:
		return false
	}
}
