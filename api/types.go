// Package api provides the HTTP client for a NoteFlow summarization server:
// media uploads, result fetches, translation, follow-up chat, and the live
// caption WebSocket used while recording.
package api

import (
	"encoding/json"
	"strconv"
)

// UploadResponse is the server's reply to any upload or URL-processing
// request. Exactly one of the id fields is populated on success, depending
// on which endpoint was called.
type UploadResponse struct {
	// Success is the application-level outcome; the server may answer 200
	// with Success=false and a human-readable Message
	Success bool `json:"success"`

	// Message carries the failure description when Success is false
	Message string `json:"message,omitempty"`

	// ErrorKind is an optional machine-readable failure category. Older
	// servers omit it, in which case Message is pattern-matched instead.
	ErrorKind string `json:"error_kind,omitempty"`

	// MeetingID is set after a successful audio upload
	MeetingID json.Number `json:"meeting_id,omitempty"`

	// VideoID is set after a successful video upload or URL submission
	VideoID json.Number `json:"video_id,omitempty"`

	// BookID is set after a successful book upload
	BookID json.Number `json:"book_id,omitempty"`
}

// RecordID returns whichever id the server populated.
func (r *UploadResponse) RecordID() string {
	switch {
	case r.MeetingID != "":
		return r.MeetingID.String()
	case r.VideoID != "":
		return r.VideoID.String()
	case r.BookID != "":
		return r.BookID.String()
	}
	return ""
}

// Record is the structured result fetched after a successful upload.
// Transcript is present for audio and video; book records carry only a
// title and summary.
type Record struct {
	ID         json.Number `json:"id"`
	Title      string      `json:"title,omitempty"`
	Transcript string      `json:"transcript,omitempty"`
	Summary    string      `json:"summary"`
	VideoURL   string      `json:"video_url,omitempty"`
}

// TranslateRequest asks the server to translate text into a target language.
// The client always sends the original, untranslated text so repeated
// translations never compound.
type TranslateRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// TranslateResponse is the server's reply to a translation request.
type TranslateResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message,omitempty"`
	ErrorKind      string `json:"error_kind,omitempty"`
	TranslatedText string `json:"translated_text,omitempty"`
}

// ChatRequest is one follow-up message with the session context that anchors
// it to the most recently processed record.
type ChatRequest struct {
	Message        string `json:"message"`
	ContextType    string `json:"context_type,omitempty"`
	ContextID      string `json:"context_id,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ChatResponse is the assistant's reply. ConversationID is populated when
// the server opens a new conversation; the client reuses it afterwards.
type ChatResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message,omitempty"`
	ErrorKind      string `json:"error_kind,omitempty"`
	Response       string `json:"response,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// APIError represents a failed request: either an HTTP-level failure or a
// 200 with success=false. Both funnel into the same categorization.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Kind       string `json:"error_kind,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.StatusCode != 0 {
		return "server error (status " + strconv.Itoa(e.StatusCode) + ")"
	}
	return "request failed"
}
