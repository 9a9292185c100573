package render

import (
	"encoding/json"
	"testing"

	"noteflow/api"
	"noteflow/content"
)

func countPlaceholders(t *Thread) int {
	n := 0
	for _, e := range t.Entries() {
		if e.Kind == EntryPlaceholder {
			n++
		}
	}
	return n
}

func TestPlaceholderLifecycle(t *testing.T) {
	thread := NewThread()

	req := thread.ShowPlaceholder("Uploading...")
	if countPlaceholders(thread) != 1 {
		t.Fatalf("placeholders = %d, want 1", countPlaceholders(thread))
	}

	if !thread.UpdatePlaceholder(req, 42.5, "Transcribing...") {
		t.Error("owner update rejected")
	}
	entries := thread.Entries()
	last := entries[len(entries)-1]
	if last.Percent != 42.5 || last.Label != "Transcribing..." {
		t.Errorf("placeholder = %+v", last)
	}

	if !thread.ResolvePlaceholder(req) {
		t.Error("owner resolve rejected")
	}
	if countPlaceholders(thread) != 0 {
		t.Errorf("placeholders after resolve = %d, want 0", countPlaceholders(thread))
	}
	if thread.ResolvePlaceholder(req) {
		t.Error("second resolve should be a no-op")
	}
}

func TestPlaceholderOwnership(t *testing.T) {
	thread := NewThread()

	first := thread.ShowPlaceholder("Uploading...")
	second := thread.ShowPlaceholder("Uploading...")

	if countPlaceholders(thread) != 1 {
		t.Fatalf("placeholders = %d, want at most 1", countPlaceholders(thread))
	}
	if thread.UpdatePlaceholder(first, 50, "") {
		t.Error("superseded request should not update the placeholder")
	}
	if thread.ResolvePlaceholder(first) {
		t.Error("superseded request should not remove the placeholder")
	}
	if !thread.ResolvePlaceholder(second) {
		t.Error("owning request should remove the placeholder")
	}
}

func TestPlaceholderError(t *testing.T) {
	thread := NewThread()
	req := thread.ShowPlaceholder("Uploading...")

	if !thread.FailPlaceholder(req) {
		t.Fatal("owner fail rejected")
	}
	entries := thread.Entries()
	if !entries[len(entries)-1].Errored {
		t.Error("placeholder should be in error state")
	}
}

func TestAppendOrderIsDisplayOrder(t *testing.T) {
	thread := NewThread()
	thread.AppendUser("upload this", &FileInfo{Name: "lecture.mp3", Size: 2_500_000})
	thread.AppendAssistant("working on it")

	entries := thread.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Kind != EntryUser || entries[1].Kind != EntryAssistant {
		t.Errorf("order = %v, %v", entries[0].Kind, entries[1].Kind)
	}
	if entries[0].File == nil || entries[0].File.Name != "lecture.mp3" {
		t.Errorf("file info not carried: %+v", entries[0].File)
	}
}

func TestTranslationRevert(t *testing.T) {
	thread := NewThread()
	record := &api.Record{
		ID:         json.Number("42"),
		Transcript: "hello",
		Summary:    "**Hi**",
	}
	id := thread.AppendResult(record, content.KindAudio)

	if !thread.SetTranslation(id, "Spanish", "**Hola**", "hola") {
		t.Fatal("translation rejected")
	}
	entry, _ := thread.Entry(id)
	if entry.Summary != "**Hola**" || entry.Transcript != "hola" || entry.Language != "Spanish" {
		t.Errorf("translated entry = %+v", entry)
	}

	if !thread.RestoreOriginal(id) {
		t.Fatal("revert rejected")
	}
	entry, _ = thread.Entry(id)
	if entry.Summary != "**Hi**" || entry.Transcript != "hello" || entry.Language != "" {
		t.Errorf("reverted entry = %+v", entry)
	}
}

func TestLastResult(t *testing.T) {
	thread := NewThread()
	if _, ok := thread.LastResult(); ok {
		t.Error("empty thread should have no result")
	}

	thread.AppendResult(&api.Record{ID: json.Number("1"), Summary: "first"}, content.KindAudio)
	thread.AppendAssistant("between")
	thread.AppendResult(&api.Record{ID: json.Number("2"), Summary: "second"}, content.KindVideo)

	entry, ok := thread.LastResult()
	if !ok || entry.RecordID != "2" {
		t.Errorf("last result = %+v, ok=%v", entry, ok)
	}
}
