package bsky

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// sanitizeForTerminal strips ANSI escape sequences and control characters
// from upstream text before it reaches the terminal. Post text and display
// names are attacker-controlled; this keeps them from smuggling cursor
// movement or OSC sequences into the UI. Newlines survive, everything else
// below 0x20 and DEL does not.
func sanitizeForTerminal(s string) string {
	s = ansi.Strip(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' {
			b.WriteRune(r)
			continue
		}
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
