package record

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestPickFormat(t *testing.T) {
	tests := []struct {
		name     string
		encoders string
		want     string
	}{
		{"opus preferred", "libopus aac libvorbis", "webm"},
		{"aac fallback", "aac libvorbis", "m4a"},
		{"vorbis fallback", "libvorbis", "ogg"},
		{"nothing matches", "pcm_s16le", "ogg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pickFormat(tt.encoders); got.Ext != tt.want {
				t.Errorf("pickFormat = %q, want %q", got.Ext, tt.want)
			}
		})
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{7 * time.Second, "00:07"},
		{75 * time.Second, "01:15"},
		{10 * time.Minute, "10:00"},
	}

	for _, tt := range tests {
		if got := FormatElapsed(tt.d); got != tt.want {
			t.Errorf("FormatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestStopAndDiscardBeforeStart(t *testing.T) {
	r := NewRecorder(WithDir(t.TempDir()))
	// Unstarted recorder has nothing to stop or discard.
	if _, err := r.Stop(); err == nil {
		t.Error("Stop before Start should fail")
	}
	if err := r.Discard(); err != nil {
		t.Errorf("Discard before Start should be a no-op, got: %v", err)
	}
}

func TestReleaseIdempotent(t *testing.T) {
	r := NewRecorder(WithDir(t.TempDir()))
	// release with no process must be safe, repeatedly.
	r.release()
	r.release()
	if got := r.Elapsed(); got != 0 {
		t.Errorf("Elapsed on unstarted recorder = %v, want 0", got)
	}
}

func TestStartFailureWithFrameSink(t *testing.T) {
	orig := ffmpegBin
	ffmpegBin = filepath.Join(t.TempDir(), "missing-ffmpeg")
	defer func() { ffmpegBin = orig }()

	r := NewRecorder(WithDir(t.TempDir()), WithFrameSink(func([]byte) {}))
	if err := r.Start(context.Background()); err == nil {
		t.Fatal("Start should fail when ffmpeg is missing")
	}

	// A failed start must still leave the recorder safe to tear down.
	r.release()
	if err := r.Discard(); err != nil {
		t.Errorf("Discard after failed start: %v", err)
	}
}

func TestCaptureArgsHaveInput(t *testing.T) {
	args := strings.Join(captureArgs(), " ")
	if !strings.Contains(args, "-i ") {
		t.Errorf("capture args missing input device: %q", args)
	}
}
