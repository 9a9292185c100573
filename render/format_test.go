package render

import "testing"

func TestRichText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bold", "**Hi**", "<strong>Hi</strong>"},
		{"italic", "*soft*", "<em>soft</em>"},
		{"mixed", "**Key point**: *maybe*", "<strong>Key point</strong>: <em>maybe</em>"},
		{"plain", "nothing special", "nothing special"},
		{"escapes markup", "<script>alert(1)</script>", "&lt;script&gt;alert(1)&lt;/script&gt;"},
		{"escape runs before emphasis", "**<b>x</b>**", "<strong>&lt;b&gt;x&lt;/b&gt;</strong>"},
		{"collapses break runs", "a\n\n\n\nb", "a\n\nb"},
		{"keeps double breaks", "a\n\nb", "a\n\nb"},
		{"crlf normalized", "a\r\nb", "a\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RichText(tt.input); got != tt.want {
				t.Errorf("RichText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEscapeThenEmphasisNeverDoubleEscapes(t *testing.T) {
	input := "5 < 6 & **true**"
	once := ApplyEmphasis(EscapeText(input))
	if got := ApplyEmphasis(EscapeText(input)); got != once {
		t.Errorf("pipeline not deterministic: %q vs %q", got, once)
	}
	want := "5 &lt; 6 &amp; <strong>true</strong>"
	if once != want {
		t.Errorf("got %q, want %q", once, want)
	}
}
