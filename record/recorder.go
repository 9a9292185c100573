// Package record captures microphone audio through ffmpeg for upload. The
// capture process is a scoped resource: every way out of a recording session
// funnels through a single release that terminates ffmpeg exactly once.
package record

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Format is a negotiated recording container and codec.
type Format struct {
	Ext   string
	Codec string
}

// ffmpegBin is the capture binary; a variable so tests can point it at a
// missing path.
var ffmpegBin = "ffmpeg"

// Preferred recording formats, best first. Matches what the upload
// classifier accepts as audio.
var preferredFormats = []Format{
	{Ext: "webm", Codec: "libopus"},
	{Ext: "m4a", Codec: "aac"},
	{Ext: "ogg", Codec: "libvorbis"},
}

// Recorder captures one recording session. It is single-use: create a new
// Recorder for each session.
type Recorder struct {
	dir     string
	logger  *log.Logger
	onFrame func([]byte)

	mu      sync.Mutex
	cmd     *exec.Cmd
	path    string
	started time.Time

	releaseOnce sync.Once
	waitErr     error
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithDir sets where recordings are written; defaults to the OS temp dir.
func WithDir(dir string) Option {
	return func(r *Recorder) { r.dir = dir }
}

// WithLogger sets the debug logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Recorder) { r.logger = logger }
}

// WithFrameSink receives raw PCM frames (16kHz mono s16le) while recording,
// in addition to the encoded file. Used to feed the live caption preview.
func WithFrameSink(sink func(frame []byte)) Option {
	return func(r *Recorder) { r.onFrame = sink }
}

// NewRecorder creates an unstarted recording session.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		dir:    os.TempDir(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start begins capturing from the default microphone. It returns once the
// capture process is live. Cancelling ctx releases the capture like Stop.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd != nil {
		return fmt.Errorf("recording already started")
	}

	format := negotiateFormat()
	r.path = filepath.Join(r.dir, fmt.Sprintf("recording-%d.%s", time.Now().UnixMilli(), format.Ext))

	args := append(captureArgs(), "-codec:a", format.Codec, "-y", r.path)
	if r.onFrame != nil {
		// Second output: raw PCM on stdout for the live caption preview.
		args = append(args, "-f", "s16le", "-ar", "16000", "-ac", "1", "pipe:1")
	}
	cmd := exec.Command(ffmpegBin, args...)

	var frames io.ReadCloser
	if r.onFrame != nil {
		var err error
		frames, err = cmd.StdoutPipe()
		if err != nil {
			return fmt.Errorf("failed to open frame pipe: %w", err)
		}
	}

	r.logger.Debug("starting capture", "path", r.path, "codec", format.Codec)
	if err := cmd.Start(); err != nil {
		if frames != nil {
			frames.Close()
		}
		return fmt.Errorf("failed to start ffmpeg: %w\n\n%s", err, installHelp())
	}

	if frames != nil {
		go r.pumpFrames(frames)
	}

	r.cmd = cmd
	r.started = time.Now()

	go func() {
		<-ctx.Done()
		r.release()
	}()
	return nil
}

// Stop ends the capture and returns the path of the finished recording.
func (r *Recorder) Stop() (string, error) {
	r.release()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.path == "" {
		return "", fmt.Errorf("recording never started")
	}
	if _, err := os.Stat(r.path); err != nil {
		return "", fmt.Errorf("recording file missing: %w", err)
	}
	return r.path, nil
}

// Discard ends the capture and deletes the partial recording.
func (r *Recorder) Discard() error {
	r.release()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.path == "" {
		return nil
	}
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove recording: %w", err)
	}
	return nil
}

// Elapsed reports how long the capture has been running.
func (r *Recorder) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started.IsZero() {
		return 0
	}
	return time.Since(r.started)
}

func (r *Recorder) pumpFrames(frames io.ReadCloser) {
	defer frames.Close()
	buf := make([]byte, 4096)
	for {
		n, err := frames.Read(buf)
		if n > 0 {
			frame := make([]byte, n)
			copy(frame, buf[:n])
			r.onFrame(frame)
		}
		if err != nil {
			return
		}
	}
}

// release terminates the capture process. Every exit path calls it; the
// process is signalled exactly once no matter how many paths fire.
func (r *Recorder) release() {
	r.releaseOnce.Do(func() {
		r.mu.Lock()
		cmd := r.cmd
		r.mu.Unlock()
		if cmd == nil || cmd.Process == nil {
			return
		}

		// Interrupt lets ffmpeg finalize the container before exiting.
		if err := cmd.Process.Signal(os.Interrupt); err != nil {
			cmd.Process.Kill()
		}

		done := make(chan error, 1)
		go func() { done <- cmd.Wait() }()
		select {
		case err := <-done:
			r.waitErr = err
		case <-time.After(3 * time.Second):
			cmd.Process.Kill()
			r.waitErr = <-done
		}
		r.logger.Debug("capture released", "err", r.waitErr)
	})
}

// negotiateFormat picks the best recording format the local ffmpeg supports.
func negotiateFormat() Format {
	out, err := exec.Command(ffmpegBin, "-hide_banner", "-encoders").Output()
	if err != nil {
		return preferredFormats[0]
	}
	return pickFormat(string(out))
}

func pickFormat(encoders string) Format {
	for _, f := range preferredFormats {
		if strings.Contains(encoders, f.Codec) {
			return f
		}
	}
	return preferredFormats[len(preferredFormats)-1]
}

// captureArgs returns the platform-specific ffmpeg input arguments for the
// default microphone.
func captureArgs() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"-f", "avfoundation", "-i", ":0"}
	case "windows":
		return []string{"-f", "dshow", "-i", "audio=default"}
	default:
		return []string{"-f", "pulse", "-i", "default"}
	}
}

// FormatElapsed renders a capture duration as the mm:ss recording timer.
func FormatElapsed(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// CheckFFmpeg verifies ffmpeg is installed, returning its version line.
func CheckFFmpeg() (string, error) {
	out, err := exec.Command(ffmpegBin, "-version").Output()
	if err != nil {
		return "", fmt.Errorf("ffmpeg not found: %w\n\n%s", err, installHelp())
	}
	lines := strings.Split(string(out), "\n")
	if len(lines) > 0 {
		return strings.TrimSpace(lines[0]), nil
	}
	return "ffmpeg installed", nil
}

func installHelp() string {
	switch runtime.GOOS {
	case "darwin":
		return "Install FFmpeg on macOS:\n  brew install ffmpeg"
	case "windows":
		return "Install FFmpeg on Windows:\n  winget install ffmpeg"
	default:
		return "Install FFmpeg on Linux:\n  Ubuntu/Debian: sudo apt install ffmpeg\n  Fedora:        sudo dnf install ffmpeg\n  Arch:          sudo pacman -S ffmpeg"
	}
}
