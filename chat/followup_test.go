package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"noteflow/api"
	"noteflow/content"
	"noteflow/render"
)

func newChatFixture(t *testing.T, limit int, handler http.HandlerFunc) *fixture {
	t.Helper()
	f := newFixture(t, handler)
	f.session = NewSession(limit)
	f.orch.session = f.session
	return f
}

func echoChatHandler(requests *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			requests.Add(1)
		}
		var req api.ChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]any{
			"success":         true,
			"response":        "echo: " + req.Message,
			"conversation_id": "conv-9",
		})
	}
}

func TestSendFollowup(t *testing.T) {
	var gotReq api.ChatRequest
	f := newChatFixture(t, 0, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(map[string]any{
			"success":         true,
			"response":        "Three topics.",
			"conversation_id": "conv-9",
		})
	})
	f.session.SetRecord(content.KindVideo, "7")

	f.orch.SendFollowup(context.Background(), "what is it about?")

	if gotReq.ContextType != "video" || gotReq.ContextID != "7" {
		t.Errorf("context sent = %s/%s, want video/7", gotReq.ContextType, gotReq.ContextID)
	}
	entry := f.lastEntry(t)
	if entry.Kind != render.EntryAssistant || entry.Text != "Three topics." {
		t.Errorf("reply entry = %+v", entry)
	}
	if f.session.ConversationID() != "conv-9" {
		t.Errorf("conversation id = %q, want conv-9", f.session.ConversationID())
	}
	if f.session.Remaining() != DefaultMessageLimit-2 {
		t.Errorf("remaining = %d, both turns should count", f.session.Remaining())
	}
	if f.thread.HasPlaceholder() {
		t.Error("typing placeholder should be resolved")
	}
}

func TestSendFollowupEmptyIgnored(t *testing.T) {
	var requests atomic.Int32
	f := newChatFixture(t, 0, echoChatHandler(&requests))

	f.orch.SendFollowup(context.Background(), "   ")

	if requests.Load() != 0 {
		t.Error("empty message must not reach the network")
	}
	if len(f.thread.Entries()) != 0 {
		t.Error("empty message must not append entries")
	}
}

func TestSendFollowupLimit(t *testing.T) {
	var requests atomic.Int32
	f := newChatFixture(t, 4, echoChatHandler(&requests))

	// Two exchanges consume the four-message budget.
	f.orch.SendFollowup(context.Background(), "one")
	f.orch.SendFollowup(context.Background(), "two")
	if got := requests.Load(); got != 2 {
		t.Fatalf("requests = %d, want 2", got)
	}
	if !f.session.AtLimit() {
		t.Fatalf("remaining = %d, want 0", f.session.Remaining())
	}

	f.orch.SendFollowup(context.Background(), "three")

	if got := requests.Load(); got != 2 {
		t.Errorf("requests = %d, over-limit send must not reach the network", got)
	}
	if entry := f.lastEntry(t); entry.Text != LimitReachedMessage {
		t.Errorf("entry = %q, want limit message", entry.Text)
	}
}

func TestSendFollowupWarnsOnce(t *testing.T) {
	f := newChatFixture(t, 8, echoChatHandler(nil))

	for _, msg := range []string{"one", "two", "three"} {
		f.orch.SendFollowup(context.Background(), msg)
	}

	warnings := 0
	for _, n := range f.notices {
		if strings.HasPrefix(n, "warning:") {
			warnings++
		}
	}
	if warnings != 1 {
		t.Errorf("warnings = %d, want exactly one low-budget warning", warnings)
	}
}

func TestSendFollowupFailure(t *testing.T) {
	f := newChatFixture(t, 0, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "💳 quota exhausted"})
	})

	f.orch.SendFollowup(context.Background(), "hello?")

	entry := f.lastEntry(t)
	if entry.Kind != render.EntryAssistant || !strings.Contains(entry.Text, "quota") {
		t.Errorf("entry = %+v, want categorized quota message", entry)
	}
	if f.thread.HasPlaceholder() {
		t.Error("typing placeholder should be resolved on failure")
	}
}

func TestNewConversation(t *testing.T) {
	f := newChatFixture(t, 4, echoChatHandler(nil))
	f.session.SetRecord(content.KindAudio, "42")

	f.orch.SendFollowup(context.Background(), "one")
	f.orch.SendFollowup(context.Background(), "two")
	f.orch.NewConversation()

	if f.session.AtLimit() {
		t.Error("reset should restore the message budget")
	}
	if f.session.ConversationID() != "" {
		t.Error("reset should clear the conversation id")
	}
	if _, _, ok := f.session.Record(); ok {
		t.Error("reset should clear the record context")
	}
}

func TestSessionWarnThreshold(t *testing.T) {
	s := NewSession(10)
	for i := 0; i < 4; i++ {
		s.CountMessage()
	}
	if s.ShouldWarn() {
		t.Error("should not warn with 6 remaining")
	}
	s.CountMessage()
	if !s.ShouldWarn() {
		t.Error("should warn at 5 remaining")
	}
	if s.ShouldWarn() {
		t.Error("warning must fire only once")
	}
}
