// Package content classifies uploadable files by extension and maps each
// content kind to the server endpoint and multipart form field that accepts it.
package content

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind is the classification of an uploadable item.
type Kind string

const (
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
	KindBook  Kind = "book"
)

// Target describes where and how a classified file is uploaded.
type Target struct {
	// Kind is the resolved content kind
	Kind Kind

	// Endpoint is the server path the file is POSTed to
	Endpoint string

	// FormField is the multipart field name the server expects
	FormField string
}

// Upload endpoints, matching the NoteFlow server routes.
const (
	EndpointAudio = "/upload"
	EndpointVideo = "/videos/process"
	EndpointBook  = "/books/upload"
)

// Result-fetch endpoint prefixes, per kind.
const (
	RecordPathAudio = "/api/meeting/"
	RecordPathVideo = "/api/video/"
	RecordPathBook  = "/api/book/"
)

// Extension tables. Lookup order is audio, video, book; first match wins.
var (
	audioExts = map[string]bool{
		"mp3": true, "wav": true, "m4a": true, "ogg": true,
		"flac": true, "webm": true, "opus": true,
	}
	videoExts = map[string]bool{
		"mp4": true, "mov": true, "avi": true, "mkv": true,
	}
	bookExts = map[string]bool{
		"pdf": true, "epub": true, "txt": true, "docx": true, "doc": true,
	}
)

// UnsupportedTypeError is returned when a filename's extension matches no
// known content kind. No upload is attempted for such files.
type UnsupportedTypeError struct {
	Filename string
	Ext      string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Ext == "" {
		return fmt.Sprintf("unsupported file type: %q has no extension", e.Filename)
	}
	return fmt.Sprintf("unsupported file type: .%s", e.Ext)
}

// Classify resolves a filename to its upload target based on the extension
// after the last dot, case-insensitively. Unrecognized extensions return an
// *UnsupportedTypeError.
func Classify(filename string) (Target, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))

	switch {
	case audioExts[ext]:
		return Target{Kind: KindAudio, Endpoint: EndpointAudio, FormField: "audio"}, nil
	case videoExts[ext]:
		return Target{Kind: KindVideo, Endpoint: EndpointVideo, FormField: "video"}, nil
	case bookExts[ext]:
		return Target{Kind: KindBook, Endpoint: EndpointBook, FormField: "book"}, nil
	}

	return Target{}, &UnsupportedTypeError{Filename: filename, Ext: ext}
}

// VideoTarget returns the upload target for a pasted video URL. URLs are
// always processed as video regardless of any path suffix.
func VideoTarget() Target {
	return Target{Kind: KindVideo, Endpoint: EndpointVideo, FormField: "video"}
}

// RecordPath returns the result-fetch path for a processed record of the
// given kind.
func RecordPath(kind Kind, id string) string {
	switch kind {
	case KindAudio:
		return RecordPathAudio + id
	case KindVideo:
		return RecordPathVideo + id
	case KindBook:
		return RecordPathBook + id
	}
	return ""
}

// IsYouTubeURL reports whether a pasted URL looks like a YouTube link.
// The server only extracts from YouTube, so anything else is rejected
// before a network call is made.
func IsYouTubeURL(url string) bool {
	return strings.Contains(url, "youtube.com") || strings.Contains(url, "youtu.be")
}

// FileIcon returns a small glyph for the upload badge shown next to a
// user message, keyed off the file extension.
func FileIcon(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch {
	case audioExts[ext]:
		return "🎵"
	case videoExts[ext]:
		return "🎬"
	case ext == "pdf":
		return "📕"
	case ext == "epub":
		return "📘"
	case bookExts[ext]:
		return "📄"
	}
	return "📎"
}

// FormatFileSize renders a byte count for display, e.g. "2.40 MB".
func FormatFileSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}
