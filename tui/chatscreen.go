package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"noteflow/api"
	"noteflow/chat"
	"noteflow/content"
	"noteflow/record"
	"noteflow/render"
)

// screenMode is what the bottom panel is currently showing.
type screenMode int

const (
	modeChat screenMode = iota
	modePickFile
	modeLanguage
	modeRecording
)

// Messages

type threadChangedMsg struct{}

type noticeMsg struct {
	title    string
	message  string
	severity string
}

type noticeExpiredMsg struct{}

type captionMsg struct {
	text  string
	final bool
}

type recordTickMsg time.Time

type recordingStartedMsg struct {
	recorder *record.Recorder
	captions *api.CaptionStream
	cancel   context.CancelFunc
	err      error
}

type recordingDoneMsg struct {
	path string
	err  error
}

type taskDoneMsg struct{}

const noticeDuration = 4 * time.Second

// ChatModel is the Bubble Tea model for the conversation screen.
type ChatModel struct {
	orch    *chat.Orchestrator
	thread  *render.Thread
	session *chat.Session
	client  *api.Client
	logger  *log.Logger

	viewport   viewport.Model
	input      textinput.Model
	spin       spinner.Model
	bar        progress.Model
	filepicker filepicker.Model

	mode          screenMode
	languageIndex int

	recorder      *record.Recorder
	captions      *api.CaptionStream
	stopRecording context.CancelFunc
	lastCaption   string

	notice        *noticeMsg
	noticeExpires time.Time

	// send delivers messages to the running program from callbacks
	send func(tea.Msg)

	width    int
	height   int
	ready    bool
	quitting bool
}

// NewChatModel creates the conversation screen.
func NewChatModel(orch *chat.Orchestrator, thread *render.Thread, session *chat.Session, client *api.Client, logger *log.Logger) ChatModel {
	ti := textinput.New()
	ti.Placeholder = "Type a message or paste a YouTube link..."
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(ColorPrimary)

	fp := filepicker.New()
	fp.AllowedTypes = []string{
		".mp3", ".wav", ".m4a", ".ogg", ".flac", ".webm", ".opus",
		".mp4", ".mov", ".avi", ".mkv",
		".pdf", ".epub", ".txt", ".docx", ".doc",
	}
	fp.ShowHidden = false
	fp.Height = 12

	return ChatModel{
		orch:       orch,
		thread:     thread,
		session:    session,
		client:     client,
		logger:     logger,
		input:      ti,
		spin:       sp,
		bar:        progress.New(progress.WithDefaultGradient()),
		filepicker: fp,
		send:       func(tea.Msg) {},
	}
}

// SetSender wires the model's callbacks to the running program.
func (m *ChatModel) SetSender(send func(tea.Msg)) {
	m.send = send
}

func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick)
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := msg.Height - 10
		if vpHeight < 5 {
			vpHeight = 5
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width-2, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 2
			m.viewport.Height = vpHeight
		}
		m.input.Width = msg.Width - 6
		m.bar.Width = msg.Width / 2
		m.refreshThread()
		return m, nil

	case threadChangedMsg:
		m.refreshThread()
		return m, nil

	case noticeMsg:
		m.notice = &msg
		m.noticeExpires = time.Now().Add(noticeDuration)
		return m, tea.Tick(noticeDuration, func(time.Time) tea.Msg { return noticeExpiredMsg{} })

	case noticeExpiredMsg:
		if !time.Now().Before(m.noticeExpires) {
			m.notice = nil
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		if m.thread.HasPlaceholder() {
			m.refreshThread()
		}
		return m, cmd

	case captionMsg:
		m.lastCaption = msg.text
		return m, nil

	case recordTickMsg:
		if m.mode != modeRecording {
			return m, nil
		}
		return m, recordTick()

	case recordingStartedMsg:
		if msg.err != nil {
			m.mode = modeChat
			m.notice = &noticeMsg{title: "Recording failed", message: msg.err.Error(), severity: "error"}
			m.noticeExpires = time.Now().Add(noticeDuration)
			return m, nil
		}
		m.recorder = msg.recorder
		m.captions = msg.captions
		m.stopRecording = msg.cancel
		return m, nil

	case recordingDoneMsg:
		m.recorder = nil
		m.captions = nil
		m.stopRecording = nil
		m.lastCaption = ""
		if msg.err != nil {
			m.notice = &noticeMsg{title: "Recording failed", message: msg.err.Error(), severity: "error"}
			m.noticeExpires = time.Now().Add(noticeDuration)
		}
		return m, nil

	case taskDoneMsg:
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateComponents(msg)
}

func (m ChatModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modePickFile:
		return m.handlePickFileKey(msg)
	case modeLanguage:
		return m.handleLanguageKey(msg)
	case modeRecording:
		return m.handleRecordingKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "ctrl+o":
		m.mode = modePickFile
		return m, m.filepicker.Init()

	case "ctrl+r":
		m.mode = modeRecording
		m.lastCaption = ""
		return m, tea.Batch(m.startRecording(), recordTick())

	case "ctrl+t":
		if _, ok := m.thread.LastResult(); !ok {
			return m.showNotice("Nothing to translate", "Process something first", "warning")
		}
		m.mode = modeLanguage
		m.languageIndex = 0
		return m, nil

	case "ctrl+e":
		if _, ok := m.thread.LastResult(); !ok {
			return m.showNotice("Nothing to export", "Process something first", "warning")
		}
		return m, m.export(render.FormatTXT)

	case "ctrl+g":
		if _, ok := m.thread.LastResult(); !ok {
			return m.showNotice("Nothing to export", "Process something first", "warning")
		}
		return m, m.export(render.FormatMarkdown)

	case "ctrl+y":
		if _, ok := m.thread.LastResult(); !ok {
			return m.showNotice("Nothing to copy", "Process something first", "warning")
		}
		orch := m.orch
		return m, func() tea.Msg { orch.Copy(); return taskDoneMsg{} }

	case "ctrl+n":
		orch := m.orch
		return m, func() tea.Msg { orch.NewConversation(); return taskDoneMsg{} }

	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.Reset()
		return m, m.submit(text)
	}

	return m.updateComponents(msg)
}

func (m ChatModel) handlePickFileKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.mode = modeChat
		return m, nil
	}

	var cmd tea.Cmd
	m.filepicker, cmd = m.filepicker.Update(msg)

	if ok, path := m.filepicker.DidSelectFile(msg); ok {
		m.mode = modeChat
		orch := m.orch
		return m, func() tea.Msg {
			orch.ProcessFile(context.Background(), path)
			return taskDoneMsg{}
		}
	}
	return m, cmd
}

func (m ChatModel) handleLanguageKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Index 0 is "Original (no translation)".
	options := len(chat.Languages) + 1

	switch msg.String() {
	case "esc":
		m.mode = modeChat
		return m, nil
	case "up", "k":
		m.languageIndex = (m.languageIndex + options - 1) % options
		return m, nil
	case "down", "j":
		m.languageIndex = (m.languageIndex + 1) % options
		return m, nil
	case "enter":
		m.mode = modeChat
		entry, ok := m.thread.LastResult()
		if !ok {
			return m, nil
		}
		language := ""
		if m.languageIndex > 0 {
			language = chat.Languages[m.languageIndex-1]
		}
		orch := m.orch
		return m, func() tea.Msg {
			orch.Translate(context.Background(), entry.ID, language)
			return taskDoneMsg{}
		}
	}
	return m, nil
}

func (m ChatModel) handleRecordingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "ctrl+r":
		m.mode = modeChat
		return m, m.finishRecording(false)
	case "d", "esc":
		m.mode = modeChat
		return m, m.finishRecording(true)
	}
	return m, nil
}

func (m ChatModel) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	if m.mode == modePickFile {
		m.filepicker, cmd = m.filepicker.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *ChatModel) showNotice(title, message, severity string) (tea.Model, tea.Cmd) {
	m.notice = &noticeMsg{title: title, message: message, severity: severity}
	m.noticeExpires = time.Now().Add(noticeDuration)
	return *m, tea.Tick(noticeDuration, func(time.Time) tea.Msg { return noticeExpiredMsg{} })
}

// Commands

func (m ChatModel) submit(text string) tea.Cmd {
	orch := m.orch
	return func() tea.Msg {
		if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
			orch.ProcessURL(context.Background(), text)
		} else {
			orch.SendFollowup(context.Background(), text)
		}
		return taskDoneMsg{}
	}
}

func (m ChatModel) export(format render.ExportFormat) tea.Cmd {
	orch := m.orch
	return func() tea.Msg {
		if _, err := orch.Export(".", format); err != nil {
			return noticeMsg{title: "Export failed", message: err.Error(), severity: "error"}
		}
		return taskDoneMsg{}
	}
}

func (m ChatModel) startRecording() tea.Cmd {
	client := m.client
	logger := m.logger
	send := m.send

	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())

		// The caption preview is best-effort; recording works without it.
		stream, err := client.OpenCaptionStream(ctx, &api.CaptionConfig{
			OnCaption: func(text string, final bool) { send(captionMsg{text: text, final: final}) },
		})
		if err != nil {
			logger.Debug("caption stream unavailable", "err", err)
		}

		opts := []record.Option{record.WithLogger(logger)}
		if stream != nil {
			opts = append(opts, record.WithFrameSink(func(frame []byte) { stream.SendAudio(frame) }))
		}

		rec := record.NewRecorder(opts...)
		if err := rec.Start(ctx); err != nil {
			cancel()
			if stream != nil {
				stream.Close()
			}
			return recordingStartedMsg{err: err}
		}
		return recordingStartedMsg{recorder: rec, captions: stream, cancel: cancel}
	}
}

func (m ChatModel) finishRecording(discard bool) tea.Cmd {
	rec := m.recorder
	stream := m.captions
	cancel := m.stopRecording
	orch := m.orch

	return func() tea.Msg {
		if stream != nil {
			stream.Close()
		}
		if cancel != nil {
			defer cancel()
		}
		if rec == nil {
			return recordingDoneMsg{}
		}

		if discard {
			return recordingDoneMsg{err: rec.Discard()}
		}

		path, err := rec.Stop()
		if err != nil {
			return recordingDoneMsg{err: err}
		}
		orch.ProcessFile(context.Background(), path)
		return recordingDoneMsg{path: path}
	}
}

func recordTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return recordTickMsg(t) })
}

// Views

func (m *ChatModel) refreshThread() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.threadView())
	m.viewport.GotoBottom()
}

func (m ChatModel) threadView() string {
	entries := m.thread.Entries()
	if len(entries) == 0 {
		return MutedStyle.Render("Upload a file (ctrl+o), paste a YouTube link, or record audio (ctrl+r) to get started.")
	}

	var parts []string
	for _, e := range entries {
		parts = append(parts, m.renderEntry(e))
	}
	return strings.Join(parts, "\n\n")
}

func (m ChatModel) renderEntry(e render.Entry) string {
	switch e.Kind {
	case render.EntryUser:
		body := FromRichText(render.RichText(e.Text))
		if e.File != nil {
			body = FileBadgeStyle.Render(fmt.Sprintf("%s %s (%s)",
				content.FileIcon(e.File.Name), e.File.Name, content.FormatFileSize(e.File.Size)))
		}
		return UserLabelStyle.Render("You") + "\n" + body

	case render.EntryAssistant:
		return AssistantLabelStyle.Render("NoteFlow") + "\n" + FromRichText(render.RichText(e.Text))

	case render.EntryPlaceholder:
		if e.Errored {
			return ErrorStyle.Render("✗ " + e.Label)
		}
		bar := m.bar.ViewAs(e.Percent / 100)
		return m.spin.View() + " " + BodyStyle.Render(e.Label) + "\n" + bar

	case render.EntryResult:
		return m.renderResult(e)
	}
	return ""
}

func (m ChatModel) renderResult(e render.Entry) string {
	title := e.Title
	if title == "" {
		title = "Your notes"
	}

	var b strings.Builder
	if e.Transcript != "" {
		b.WriteString(InfoStyle.Render("Transcript") + "\n")
		b.WriteString(FromRichText(render.RichText(e.Transcript)) + "\n\n")
	}
	b.WriteString(InfoStyle.Render("Summary") + "\n")
	b.WriteString(FromRichText(render.RichText(e.Summary)))
	if e.Language != "" {
		b.WriteString("\n\n" + MutedStyle.Render("Translated to "+e.Language+" - ctrl+t to change"))
	}

	width := m.width - 6
	if width < 20 {
		width = 60
	}
	return Card(title, b.String(), width)
}

func (m ChatModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(RenderHeader() + "\n")
	b.WriteString(m.viewport.View() + "\n")
	b.WriteString(m.noticeView() + "\n")

	switch m.mode {
	case modePickFile:
		b.WriteString(TitleStyle.Render("Pick a file to process") + "\n")
		b.WriteString(m.filepicker.View() + "\n")
		b.WriteString(KeyHelp([][2]string{{"enter", "select"}, {"esc", "cancel"}}))

	case modeLanguage:
		b.WriteString(m.languageMenuView() + "\n")
		b.WriteString(KeyHelp([][2]string{{"enter", "translate"}, {"esc", "cancel"}}))

	case modeRecording:
		b.WriteString(m.recordingView() + "\n")
		b.WriteString(KeyHelp([][2]string{{"enter", "stop & upload"}, {"d", "discard"}}))

	default:
		b.WriteString(m.input.View() + "\n")
		b.WriteString(KeyHelp([][2]string{
			{"ctrl+o", "upload"}, {"ctrl+r", "record"}, {"ctrl+t", "translate"},
			{"ctrl+e", "export .txt"}, {"ctrl+g", "export .md"}, {"ctrl+y", "copy"},
			{"ctrl+n", "new chat"}, {"esc", "quit"},
		}))
	}

	return b.String()
}

func (m ChatModel) noticeView() string {
	if m.notice == nil {
		remaining := m.session.Remaining()
		if remaining <= chat.WarnRemaining {
			return WarningStyle.Render(fmt.Sprintf("%d messages left in this conversation", remaining))
		}
		return ""
	}
	style := SeverityStyle(m.notice.severity)
	return style.Render(m.notice.title) + MutedStyle.Render(" - "+m.notice.message)
}

func (m ChatModel) languageMenuView() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Translate to") + "\n")

	options := append([]string{"Original (no translation)"}, chat.Languages...)
	for i, option := range options {
		cursor := "  "
		style := BodyStyle
		if i == m.languageIndex {
			cursor = "> "
			style = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
		}
		b.WriteString(cursor + style.Render(option) + "\n")
	}
	return b.String()
}

func (m ChatModel) recordingView() string {
	elapsed := time.Duration(0)
	if m.recorder != nil {
		elapsed = m.recorder.Elapsed()
	}

	var b strings.Builder
	b.WriteString(ErrorStyle.Render("● REC") + " " + BodyStyle.Render(record.FormatElapsed(elapsed)))
	if m.captions != nil && m.captions.IsConnected() {
		caption := m.lastCaption
		if caption == "" {
			caption = "Listening..."
		}
		b.WriteString("\n" + MutedStyle.Render(caption))
	}
	return RecordingBoxStyle.Render(b.String())
}

// Run wires the conversation screen to its orchestrator and runs it until
// the user quits.
func Run(client *api.Client, session *chat.Session, logger *log.Logger) error {
	thread := render.NewThread()

	var program *tea.Program
	deliver := func(msg tea.Msg) {
		if program != nil {
			program.Send(msg)
		}
	}

	orch := chat.NewOrchestrator(chat.Config{
		Client:  client,
		Thread:  thread,
		Session: session,
		Logger:  logger,
		Notify: func(title, message, severity string) {
			deliver(noticeMsg{title: title, message: message, severity: severity})
		},
		OnChange: func() {
			deliver(threadChangedMsg{})
		},
	})

	model := NewChatModel(orch, thread, session, client, logger)
	model.SetSender(deliver)

	program = tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
