package chat

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"noteflow/api"
	"noteflow/content"
	"noteflow/render"
	"noteflow/stages"
)

// Notifier surfaces a transient notification outside the thread. Severity is
// one of info, success, warning, error.
type Notifier func(title, message, severity string)

// Languages offered by the translation menu on a rendered result.
var Languages = []string{
	"Spanish", "French", "German", "Italian", "Portuguese", "Russian",
	"Japanese", "Korean", "Chinese", "Arabic", "Hindi", "Turkish",
}

// DefaultErrorHold is how long an errored progress bar stays visible before
// the placeholder is replaced by the error message.
const DefaultErrorHold = 600 * time.Millisecond

// Config wires an Orchestrator to its collaborators.
type Config struct {
	Client  *api.Client
	Thread  *render.Thread
	Session *Session

	// Notify surfaces transient notifications; nil disables them
	Notify Notifier

	// OnChange is called after every thread mutation so the surface can
	// repaint; nil disables it
	OnChange func()

	Logger    *log.Logger
	ErrorHold time.Duration
}

// Orchestrator runs the upload pipeline: classify, upload, animate synthetic
// progress, fetch the record, render it, and update the session context. All
// outcomes land in the thread; nothing is returned to the caller.
type Orchestrator struct {
	client    *api.Client
	thread    *render.Thread
	session   *Session
	notify    Notifier
	onChange  func()
	logger    *log.Logger
	errorHold time.Duration
}

// NewOrchestrator builds an Orchestrator from its config.
func NewOrchestrator(cfg Config) *Orchestrator {
	o := &Orchestrator{
		client:    cfg.Client,
		thread:    cfg.Thread,
		session:   cfg.Session,
		notify:    cfg.Notify,
		onChange:  cfg.OnChange,
		logger:    cfg.Logger,
		errorHold: cfg.ErrorHold,
	}
	if o.notify == nil {
		o.notify = func(string, string, string) {}
	}
	if o.onChange == nil {
		o.onChange = func() {}
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	if o.errorHold == 0 {
		o.errorHold = DefaultErrorHold
	}
	return o
}

// ProcessFile uploads a local file and renders the outcome into the thread.
func (o *Orchestrator) ProcessFile(ctx context.Context, path string) {
	name := filepath.Base(path)

	target, err := content.Classify(name)
	if err != nil {
		o.thread.AppendAssistant(fmt.Sprintf(
			"Sorry, I can't process that file. %s\n\nSupported formats: audio (mp3, wav, m4a, ogg, flac, webm, opus), video (mp4, mov, avi, mkv), documents (pdf, epub, txt, docx, doc).",
			err))
		o.notify("Unsupported file", err.Error(), "warning")
		o.onChange()
		return
	}

	var size int64
	if info, statErr := os.Stat(path); statErr == nil {
		size = info.Size()
	}
	o.thread.AppendUser("", &render.FileInfo{Name: name, Size: size})
	o.onChange()

	o.logger.Debug("processing file", "name", name, "kind", target.Kind)
	o.process(ctx, target.Kind, func(ctx context.Context) (*api.UploadResponse, error) {
		return o.client.UploadFile(ctx, target, path)
	})
}

// ProcessURL submits a YouTube URL for server-side extraction. Non-YouTube
// URLs are rejected before any network call.
func (o *Orchestrator) ProcessURL(ctx context.Context, url string) {
	if !content.IsYouTubeURL(url) {
		o.thread.AppendAssistant("That doesn't look like a YouTube link. Paste a youtube.com or youtu.be URL, or upload a video file instead.")
		o.notify("Invalid URL", "Only YouTube links are supported", "warning")
		o.onChange()
		return
	}

	o.thread.AppendUser(url, nil)
	o.onChange()

	o.logger.Debug("processing url", "url", url)
	o.process(ctx, content.KindVideo, func(ctx context.Context) (*api.UploadResponse, error) {
		return o.client.ProcessURL(ctx, url)
	})
}

// process runs one upload through the placeholder/simulator/fetch/render
// sequence. The simulator is stopped exactly once on every path out.
func (o *Orchestrator) process(ctx context.Context, kind content.Kind, upload func(context.Context) (*api.UploadResponse, error)) {
	table := stages.Table(kind)
	req := o.thread.ShowPlaceholder(table[0].Label)
	o.onChange()

	sim := stages.Start(kind, func(percent float64, label string) {
		if o.thread.UpdatePlaceholder(req, percent, label) {
			o.onChange()
		}
	})
	defer sim.Stop()

	resp, err := upload(ctx)
	sim.Stop()
	if err != nil {
		o.fail(req, err)
		return
	}

	o.thread.UpdatePlaceholder(req, 100, "Done")
	o.onChange()

	record, err := o.client.FetchRecord(ctx, kind, resp.RecordID())
	if err != nil {
		o.fail(req, err)
		return
	}

	o.thread.ResolvePlaceholder(req)
	o.thread.AppendResult(record, kind)
	o.session.SetRecord(kind, record.ID.String())
	o.notify("Ready", "Your summary is ready", "success")
	o.onChange()
}

// fail transitions the placeholder through its error state and renders the
// categorized message. No retry is attempted.
func (o *Orchestrator) fail(req string, err error) {
	o.logger.Debug("request failed", "err", err)

	if o.thread.FailPlaceholder(req) {
		o.onChange()
		time.Sleep(o.errorHold)
	}
	o.thread.ResolvePlaceholder(req)

	ce := api.Categorize(err)
	o.thread.AppendAssistant(ce.Message + "\n\n" + ce.Advice)
	o.notify(errorTitle(ce.Category), ce.Advice, "error")
	o.onChange()
}

// Translate swaps a result entry's displayed text for a translation, or
// restores the original when language is empty. The original stored text is
// always what gets translated, so repeated translations never compound.
func (o *Orchestrator) Translate(ctx context.Context, entryID, language string) error {
	if language == "" {
		o.thread.RestoreOriginal(entryID)
		o.onChange()
		return nil
	}

	entry, ok := o.thread.Entry(entryID)
	if !ok {
		return fmt.Errorf("no such entry: %s", entryID)
	}

	// Interim marker while the round trip is in flight. Failure puts the
	// previously displayed text back, not the marker.
	o.thread.SetTranslation(entryID, entry.Language, "⏳ Translating to "+language+"...", "")
	o.onChange()

	restore := func() {
		o.thread.SetTranslation(entryID, entry.Language, entry.Summary, entry.Transcript)
		o.onChange()
	}

	summary, err := o.client.Translate(ctx, entry.OriginalSummary, language)
	if err != nil {
		restore()
		ce := api.Categorize(err)
		o.notify(errorTitle(ce.Category), ce.Advice, "error")
		return err
	}

	transcript := ""
	if entry.OriginalTranscript != "" {
		transcript, err = o.client.Translate(ctx, entry.OriginalTranscript, language)
		if err != nil {
			restore()
			ce := api.Categorize(err)
			o.notify(errorTitle(ce.Category), ce.Advice, "error")
			return err
		}
	}

	o.thread.SetTranslation(entryID, language, summary, transcript)
	o.onChange()
	return nil
}

// Export writes the last result's displayed text to a timestamped file in
// dir and returns the path.
func (o *Orchestrator) Export(dir string, format render.ExportFormat) (string, error) {
	entry, ok := o.thread.LastResult()
	if !ok {
		return "", fmt.Errorf("nothing to export yet")
	}
	path, err := render.SaveExport(dir, format, entry)
	if err != nil {
		return "", err
	}
	o.notify("Exported", filepath.Base(path), "success")
	return path, nil
}

// Copy puts the last result's displayed text on the system clipboard.
func (o *Orchestrator) Copy() error {
	entry, ok := o.thread.LastResult()
	if !ok {
		return fmt.Errorf("nothing to copy yet")
	}
	if err := render.CopyToClipboard(entry); err != nil {
		ce := api.Categorize(err)
		o.notify("Copy failed", ce.Advice, "error")
		return err
	}
	o.notify("Copied", "Notes copied to clipboard", "success")
	return nil
}

func errorTitle(category api.Category) string {
	switch category {
	case api.CategoryRateLimited:
		return "Rate limited"
	case api.CategoryQuotaExceeded:
		return "Quota exceeded"
	case api.CategoryAuthFailure:
		return "Authentication problem"
	}
	return "Something went wrong"
}
