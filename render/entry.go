package render

import (
	"sync"

	"github.com/google/uuid"

	"noteflow/api"
	"noteflow/content"
)

// EntryKind distinguishes the four entry types in the thread.
type EntryKind int

const (
	EntryUser EntryKind = iota
	EntryAssistant
	EntryPlaceholder
	EntryResult
)

// FileInfo describes the file attached to a user upload message.
type FileInfo struct {
	Name string
	Size int64
}

// Entry is one row of the conversation thread. Text fields hold raw text;
// RichText is applied at display time.
type Entry struct {
	ID   string
	Kind EntryKind

	// Text is the body of a user or assistant entry
	Text string

	// File is set on user entries created by an upload
	File *FileInfo

	// Placeholder fields
	Label   string
	Percent float64
	Errored bool

	// Result fields. Summary and Transcript are what is currently
	// displayed (possibly a translation); the originals are kept so the
	// display can always revert.
	ContentKind        content.Kind
	RecordID           string
	Title              string
	Summary            string
	Transcript         string
	Language           string
	OriginalSummary    string
	OriginalTranscript string
}

// Thread is the append-only conversation transcript. Entries are never
// reordered; the single processing placeholder is the only entry that is
// ever removed, when it resolves to a result or an error message.
type Thread struct {
	mu            sync.Mutex
	entries       []*Entry
	placeholderID string
}

// NewThread creates an empty conversation thread.
func NewThread() *Thread {
	return &Thread{}
}

// AppendUser appends a user message, optionally tagged with an uploaded file.
func (t *Thread) AppendUser(text string, file *FileInfo) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := &Entry{ID: uuid.NewString(), Kind: EntryUser, Text: text, File: file}
	t.entries = append(t.entries, e)
	return e.ID
}

// AppendAssistant appends an assistant message.
func (t *Thread) AppendAssistant(text string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := &Entry{ID: uuid.NewString(), Kind: EntryAssistant, Text: text}
	t.entries = append(t.entries, e)
	return e.ID
}

// ShowPlaceholder appends the processing placeholder and returns the request
// id that owns it. There is at most one placeholder: starting a new request
// while one is showing takes over the slot, and the superseded request's id
// can no longer touch it.
func (t *Thread) ShowPlaceholder(label string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.dropPlaceholderLocked()
	e := &Entry{ID: uuid.NewString(), Kind: EntryPlaceholder, Label: label}
	t.entries = append(t.entries, e)
	t.placeholderID = e.ID
	return e.ID
}

// UpdatePlaceholder sets the placeholder's progress and stage label. It is a
// no-op unless requestID still owns the placeholder.
func (t *Thread) UpdatePlaceholder(requestID string, percent float64, label string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.ownedPlaceholderLocked(requestID)
	if e == nil {
		return false
	}
	e.Percent = percent
	if label != "" {
		e.Label = label
	}
	return true
}

// FailPlaceholder flips the owning request's placeholder into its error
// visual state.
func (t *Thread) FailPlaceholder(requestID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.ownedPlaceholderLocked(requestID)
	if e == nil {
		return false
	}
	e.Errored = true
	return true
}

// ResolvePlaceholder removes the placeholder, but only for the request that
// created it.
func (t *Thread) ResolvePlaceholder(requestID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.placeholderID == "" || t.placeholderID != requestID {
		return false
	}
	t.dropPlaceholderLocked()
	return true
}

// HasPlaceholder reports whether a processing placeholder is visible.
func (t *Thread) HasPlaceholder() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.placeholderID != ""
}

// AppendResult appends a fetched record, storing the untranslated originals
// so translation can always be reverted.
func (t *Thread) AppendResult(record *api.Record, kind content.Kind) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := &Entry{
		ID:                 uuid.NewString(),
		Kind:               EntryResult,
		ContentKind:        kind,
		RecordID:           record.ID.String(),
		Title:              record.Title,
		Summary:            record.Summary,
		Transcript:         record.Transcript,
		OriginalSummary:    record.Summary,
		OriginalTranscript: record.Transcript,
	}
	t.entries = append(t.entries, e)
	return e.ID
}

// SetTranslation replaces a result entry's displayed text with a
// translation. Empty transcript leaves the transcript untouched.
func (t *Thread) SetTranslation(entryID, language, summary, transcript string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.resultLocked(entryID)
	if e == nil {
		return false
	}
	e.Language = language
	e.Summary = summary
	if transcript != "" {
		e.Transcript = transcript
	}
	return true
}

// RestoreOriginal reverts a result entry to the untranslated text.
func (t *Thread) RestoreOriginal(entryID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.resultLocked(entryID)
	if e == nil {
		return false
	}
	e.Language = ""
	e.Summary = e.OriginalSummary
	e.Transcript = e.OriginalTranscript
	return true
}

// Entry returns a copy of the entry with the given id.
func (t *Thread) Entry(id string) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, e := range t.entries {
		if e.ID == id {
			return *e, true
		}
	}
	return Entry{}, false
}

// Entries returns a snapshot of the thread in display order.
func (t *Thread) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		out[i] = *e
	}
	return out
}

// LastResult returns a copy of the most recent result entry.
func (t *Thread) LastResult() (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := len(t.entries) - 1; i >= 0; i-- {
		if t.entries[i].Kind == EntryResult {
			return *t.entries[i], true
		}
	}
	return Entry{}, false
}

func (t *Thread) dropPlaceholderLocked() {
	if t.placeholderID == "" {
		return
	}
	for i, e := range t.entries {
		if e.ID == t.placeholderID {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			break
		}
	}
	t.placeholderID = ""
}

func (t *Thread) ownedPlaceholderLocked(requestID string) *Entry {
	if t.placeholderID == "" || t.placeholderID != requestID {
		return nil
	}
	for _, e := range t.entries {
		if e.ID == t.placeholderID {
			return e
		}
	}
	return nil
}

func (t *Thread) resultLocked(entryID string) *Entry {
	for _, e := range t.entries {
		if e.ID == entryID && e.Kind == EntryResult {
			return e
		}
	}
	return nil
}
