package render

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
)

// ExportFormat selects an export layout.
type ExportFormat string

const (
	FormatTXT      ExportFormat = "txt"
	FormatMarkdown ExportFormat = "md"
)

// BuildTXT lays out the currently displayed transcript and summary as plain
// text. Without a transcript only the summary section is emitted.
func BuildTXT(transcript, summary string) string {
	if transcript == "" {
		return "SUMMARY:\n\n" + summary
	}
	return "TRANSCRIPT:\n\n" + transcript + "\n\n\nSUMMARY:\n\n" + summary
}

// BuildMarkdown lays out the currently displayed transcript and summary as a
// Markdown document.
func BuildMarkdown(transcript, summary string) string {
	out := "# NoteFlow Notes\n\n"
	if transcript != "" {
		out += "## Transcript\n\n" + transcript + "\n\n"
	}
	out += "## AI-Generated Summary\n\n" + summary + "\n"
	return out
}

// ExportFilename returns a timestamped filename for a new export.
func ExportFilename(format ExportFormat) string {
	return fmt.Sprintf("noteflow-%d.%s", time.Now().UnixMilli(), format)
}

// SaveExport writes the entry's displayed text to a timestamped file in dir
// and returns the written path.
func SaveExport(dir string, format ExportFormat, entry Entry) (string, error) {
	var body string
	switch format {
	case FormatMarkdown:
		body = BuildMarkdown(entry.Transcript, entry.Summary)
	default:
		body = BuildTXT(entry.Transcript, entry.Summary)
	}

	path := filepath.Join(dir, ExportFilename(format))
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}

// CopyToClipboard puts the entry's displayed text on the system clipboard in
// the TXT layout.
func CopyToClipboard(entry Entry) error {
	if err := clipboard.WriteAll(BuildTXT(entry.Transcript, entry.Summary)); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}
