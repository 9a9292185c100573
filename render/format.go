// Package render holds the conversation thread shown in the chat surface:
// an append-only sequence of user, assistant, placeholder, and result
// entries, plus the text pipeline and export layouts for result entries.
package render

import (
	"html"
	"regexp"
	"strings"
)

var (
	boldRe   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe = regexp.MustCompile(`\*([^*]+)\*`)
	breaksRe = regexp.MustCompile(`\n{3,}`)
)

// EscapeText HTML-escapes external text (filenames, transcripts, summaries)
// so it can never inject markup into the thread.
func EscapeText(s string) string {
	return html.EscapeString(s)
}

// ApplyEmphasis converts the small server-trusted markdown subset to inline
// markup: **bold** to <strong>, *italic* to <em>. It must run after
// EscapeText, never before, so injected asterisk-wrapped markup stays inert.
func ApplyEmphasis(s string) string {
	s = boldRe.ReplaceAllString(s, "<strong>$1</strong>")
	s = italicRe.ReplaceAllString(s, "<em>$1</em>")
	return s
}

// NormalizeBreaks collapses runs of three or more line breaks down to two.
func NormalizeBreaks(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return breaksRe.ReplaceAllString(s, "\n\n")
}

// RichText runs the full pipeline once: escape, then emphasis, then line
// break normalization. Callers apply it at display time only, so the stored
// text is always the raw original and the conversion never compounds.
func RichText(s string) string {
	return NormalizeBreaks(ApplyEmphasis(EscapeText(s)))
}
