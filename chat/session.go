// Package chat orchestrates the NoteFlow conversation: uploads and URL
// submissions flowing into the thread, in-place translation, and the bounded
// follow-up exchange with the server's chat endpoint.
package chat

import (
	"sync"

	"noteflow/content"
)

const (
	// DefaultMessageLimit caps one conversation. User and assistant turns
	// both count toward the limit.
	DefaultMessageLimit = 30

	// WarnRemaining is where the one-time running-out warning fires.
	WarnRemaining = 5
)

// Session is the conversation context: the most recently shown record, the
// server-assigned conversation id, and the bounded message counter. It is
// constructed once at startup and passed to whatever needs it; there is no
// package-level state.
type Session struct {
	mu             sync.Mutex
	kind           content.Kind
	recordID       string
	conversationID string
	messages       int
	limit          int
	warned         bool
}

// NewSession creates a session with the given message limit; zero or
// negative means DefaultMessageLimit.
func NewSession(limit int) *Session {
	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	return &Session{limit: limit}
}

// SetRecord points the session at a newly rendered record. Called by the
// orchestrator after every successful render.
func (s *Session) SetRecord(kind content.Kind, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kind = kind
	s.recordID = id
}

// Record returns the current record context, if any.
func (s *Session) Record() (kind content.Kind, id string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kind, s.recordID, s.recordID != ""
}

// ConversationID returns the server-assigned conversation id, empty before
// the first follow-up reply.
func (s *Session) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// SetConversationID stores the id the server assigned.
func (s *Session) SetConversationID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" {
		s.conversationID = id
	}
}

// AtLimit reports whether the conversation has used up its message budget.
func (s *Session) AtLimit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messages >= s.limit
}

// Remaining returns how many messages are left in the budget.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limit - s.messages
}

// CountMessage records one sent or received message against the budget.
func (s *Session) CountMessage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.messages < s.limit {
		s.messages++
	}
}

// ShouldWarn reports, exactly once per conversation, that the budget is
// almost used up.
func (s *Session) ShouldWarn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.warned || s.limit-s.messages > WarnRemaining {
		return false
	}
	s.warned = true
	return true
}

// Reset clears the session for a new conversation.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kind = ""
	s.recordID = ""
	s.conversationID = ""
	s.messages = 0
	s.warned = false
}
