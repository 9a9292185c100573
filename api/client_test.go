package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"noteflow/content"
)

func writeTempFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestUploadFile(t *testing.T) {
	var gotField, gotFilename, gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("failed to parse multipart form: %v", err)
		}
		for field, headers := range r.MultipartForm.File {
			gotField = field
			gotFilename = headers[0].Filename
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "meeting_id": "42"})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	path := writeTempFile(t, "lecture.mp3", "fake audio")

	target, err := content.Classify("lecture.mp3")
	if err != nil {
		t.Fatal(err)
	}

	resp, err := client.UploadFile(context.Background(), target, path)
	if err != nil {
		t.Fatalf("UploadFile failed: %v", err)
	}

	if gotPath != "/upload" {
		t.Errorf("posted to %q, want /upload", gotPath)
	}
	if gotField != "audio" {
		t.Errorf("form field = %q, want audio", gotField)
	}
	if gotFilename != "lecture.mp3" {
		t.Errorf("filename = %q, want lecture.mp3", gotFilename)
	}
	if resp.RecordID() != "42" {
		t.Errorf("record id = %q, want 42", resp.RecordID())
	}
}

func TestUploadFileApplicationFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "⏳ rate limit, wait 3 minutes",
		})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	path := writeTempFile(t, "talk.mkv", "fake video")
	target, _ := content.Classify("talk.mkv")

	_, err := client.UploadFile(context.Background(), target, path)
	if err == nil {
		t.Fatal("expected error for success=false response")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if !strings.Contains(apiErr.Message, "rate limit") {
		t.Errorf("message = %q, want server text preserved", apiErr.Message)
	}
}

func TestUploadFileHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{"message": "boom"})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	path := writeTempFile(t, "a.mp3", "x")
	target, _ := content.Classify("a.mp3")

	_, err := client.UploadFile(context.Background(), target, path)
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", apiErr.StatusCode)
	}
	if apiErr.Message != "boom" {
		t.Errorf("message = %q, want boom", apiErr.Message)
	}
}

func TestUploadFileMissing(t *testing.T) {
	client := NewClient()
	target, _ := content.Classify("a.mp3")
	_, err := client.UploadFile(context.Background(), target, "/no/such/file.mp3")
	if err == nil || !strings.Contains(err.Error(), "failed to access file") {
		t.Errorf("expected file access error, got: %v", err)
	}
}

func TestProcessURL(t *testing.T) {
	var gotBody map[string]string
	var gotContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotBody)
		json.NewEncoder(w).Encode(map[string]any{"success": true, "video_id": 7})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	resp, err := client.ProcessURL(context.Background(), "https://youtu.be/abc123")
	if err != nil {
		t.Fatalf("ProcessURL failed: %v", err)
	}

	if gotContentType != "application/json" {
		t.Errorf("content type = %q, want application/json", gotContentType)
	}
	if gotBody["video_url"] != "https://youtu.be/abc123" {
		t.Errorf("video_url = %q", gotBody["video_url"])
	}
	if resp.RecordID() != "7" {
		t.Errorf("record id = %q, want 7", resp.RecordID())
	}
}

func TestFetchRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/meeting/42" {
			t.Errorf("fetched %q, want /api/meeting/42", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":         "42",
			"transcript": "hello",
			"summary":    "**Hi**",
		})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	record, err := client.FetchRecord(context.Background(), content.KindAudio, "42")
	if err != nil {
		t.Fatalf("FetchRecord failed: %v", err)
	}
	if record.Transcript != "hello" || record.Summary != "**Hi**" {
		t.Errorf("record = %+v", record)
	}
}

func TestTranslate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req TranslateRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Language != "Spanish" {
			t.Errorf("language = %q, want Spanish", req.Language)
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "translated_text": "Hola"})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	translated, err := client.Translate(context.Background(), "Hello", "Spanish")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if translated != "Hola" {
		t.Errorf("translated = %q, want Hola", translated)
	}
}

func TestChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.ContextType != "video" || req.ContextID != "7" {
			t.Errorf("context = %s/%s, want video/7", req.ContextType, req.ContextID)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success":         true,
			"response":        "It covers three topics.",
			"conversation_id": "conv-1",
		})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	resp, err := client.Chat(context.Background(), ChatRequest{
		Message:     "what is it about?",
		ContextType: "video",
		ContextID:   "7",
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Response != "It covers three topics." {
		t.Errorf("response = %q", resp.Response)
	}
	if resp.ConversationID != "conv-1" {
		t.Errorf("conversation id = %q, want conv-1", resp.ConversationID)
	}
}

func TestClientOptions(t *testing.T) {
	client := NewClient(WithBaseURL("http://example.com/"))
	if client.BaseURL() != "http://example.com" {
		t.Errorf("base url = %q, trailing slash should be trimmed", client.BaseURL())
	}
}
