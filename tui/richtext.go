package tui

import (
	"html"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	strongStyle = lipgloss.NewStyle().Bold(true)
	emStyle     = lipgloss.NewStyle().Italic(true)
)

// FromRichText converts the renderer's safe markup subset (<strong>, <em>,
// escaped entities) into styled terminal text. Tags are matched literally and
// each text segment is unescaped exactly once, so escaped angle brackets in
// the original content can never turn into styling.
func FromRichText(s string) string {
	var b strings.Builder

	for len(s) > 0 {
		i := strings.IndexByte(s, '<')
		if i < 0 {
			b.WriteString(html.UnescapeString(s))
			break
		}
		b.WriteString(html.UnescapeString(s[:i]))
		s = s[i:]

		switch {
		case strings.HasPrefix(s, "<strong>"):
			end := strings.Index(s, "</strong>")
			if end < 0 {
				b.WriteString(html.UnescapeString(s))
				return b.String()
			}
			b.WriteString(strongStyle.Render(html.UnescapeString(s[len("<strong>"):end])))
			s = s[end+len("</strong>"):]
		case strings.HasPrefix(s, "<em>"):
			end := strings.Index(s, "</em>")
			if end < 0 {
				b.WriteString(html.UnescapeString(s))
				return b.String()
			}
			b.WriteString(emStyle.Render(html.UnescapeString(s[len("<em>"):end])))
			s = s[end+len("</em>"):]
		default:
			b.WriteByte('<')
			s = s[1:]
		}
	}

	return b.String()
}
