package tui

import (
	"strings"
	"testing"

	"noteflow/render"
)

func TestFromRichText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"bold content survives", "<strong>Hi</strong>", []string{"Hi"}},
		{"italic content survives", "<em>soft</em>", []string{"soft"}},
		{"entities unescaped once", "5 &lt; 6 &amp; 7", []string{"5 < 6 & 7"}},
		{"unknown tags pass through", "<div>x</div>", []string{"<div>x</div>"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromRichText(tt.input)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("FromRichText(%q) = %q, missing %q", tt.input, got, want)
				}
			}
		})
	}
}

func TestFromRichTextEscapedTagsStayLiteral(t *testing.T) {
	// Text that arrives with escaped angle brackets was user content, not
	// markup; after one unescape it must read as literal tags.
	rich := render.RichText("<strong>injected</strong>")
	got := FromRichText(rich)
	if !strings.Contains(got, "<strong>injected</strong>") {
		t.Errorf("escaped markup should display literally, got %q", got)
	}
}

func TestFromRichTextFullPipeline(t *testing.T) {
	got := FromRichText(render.RichText("**Key point** about *tone*"))
	for _, want := range []string{"Key point", "tone"} {
		if !strings.Contains(got, want) {
			t.Errorf("pipeline output %q missing %q", got, want)
		}
	}
	if strings.Contains(got, "**") || strings.Contains(got, "<strong>") {
		t.Errorf("markup left unconverted: %q", got)
	}
}
