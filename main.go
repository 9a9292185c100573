package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"noteflow/api"
	"noteflow/chat"
	"noteflow/record"
	"noteflow/render"
	"noteflow/tui"
)

// Build info - set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	versionFlag := flag.Bool("version", false, "Print version information")
	shortVersionFlag := flag.Bool("v", false, "Print version information (short)")
	flag.Parse()

	if *versionFlag || *shortVersionFlag {
		fmt.Printf("noteflow %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
		fmt.Printf("  go:     %s\n", runtime.Version())
		fmt.Printf("  os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		os.Exit(0)
	}

	// Load .env file if it exists (won't error if missing)
	_ = godotenv.Load()

	logger := log.New(os.Stderr)
	if os.Getenv("NOTEFLOW_DEBUG") != "" {
		logger.SetLevel(log.DebugLevel)
	}

	client := api.NewClientFromEnv(api.WithLogger(logger))

	fmt.Println(tui.RenderHeader())
	fmt.Println(tui.MutedStyle.Render("Server: " + client.BaseURL()))

	// Recording needs ffmpeg; everything else works without it.
	if _, err := record.CheckFFmpeg(); err != nil {
		fmt.Println(tui.WarningStyle.Render("ffmpeg not found - recording will be unavailable"))
		logger.Debug("ffmpeg check failed", "err", err)
	}

	for {
		if !runMainMenu(client, logger) {
			break
		}
	}

	fmt.Println(tui.InfoStyle.Render("\nBye!"))
}

func runMainMenu(client *api.Client, logger *log.Logger) bool {
	var choice string
	menu := huh.NewSelect[string]().
		Title("NoteFlow").
		Description("Turn audio, video, and books into notes").
		Options(
			huh.NewOption("Open the chat", "chat"),
			huh.NewOption("Summarize a file", "file"),
			huh.NewOption("Summarize a YouTube video", "url"),
			huh.NewOption("Exit", "exit"),
		).
		Value(&choice)

	if err := huh.NewForm(huh.NewGroup(menu)).WithTheme(huh.ThemeCatppuccin()).Run(); err != nil {
		return false
	}

	switch choice {
	case "chat":
		if err := tui.Run(client, newSession(), logger); err != nil {
			fmt.Println(tui.ErrorStyle.Render("Error: " + err.Error()))
		}
		return true
	case "file":
		return runQuickFile(client, logger)
	case "url":
		return runQuickURL(client, logger)
	}
	return false
}

// runQuickFile processes one file without entering the chat screen.
func runQuickFile(client *api.Client, logger *log.Logger) bool {
	var path string
	startDir, _ := os.Getwd()

	picker := huh.NewFilePicker().
		Title("Select a file to summarize").
		Description("Audio, video, or a book").
		Picking(true).
		CurrentDirectory(startDir).
		ShowHidden(false).
		ShowSize(true).
		Height(15).
		AllowedTypes([]string{
			".mp3", ".wav", ".m4a", ".ogg", ".flac", ".webm", ".opus",
			".mp4", ".mov", ".avi", ".mkv",
			".pdf", ".epub", ".txt", ".docx", ".doc",
		}).
		Value(&path)

	if err := huh.NewForm(huh.NewGroup(picker)).WithTheme(huh.ThemeCatppuccin()).Run(); err != nil {
		// Back to the menu, aborted or not.
		return true
	}

	runQuick(client, logger, "Processing "+path+"...", func(ctx context.Context, orch *chat.Orchestrator) {
		orch.ProcessFile(ctx, path)
	})
	return true
}

// runQuickURL processes one YouTube link without entering the chat screen.
func runQuickURL(client *api.Client, logger *log.Logger) bool {
	var url string
	input := huh.NewInput().
		Title("YouTube link").
		Placeholder("https://youtube.com/watch?v=...").
		Value(&url)

	if err := huh.NewForm(huh.NewGroup(input)).WithTheme(huh.ThemeCatppuccin()).Run(); err != nil {
		return true
	}

	runQuick(client, logger, "Processing video...", func(ctx context.Context, orch *chat.Orchestrator) {
		orch.ProcessURL(ctx, url)
	})
	return true
}

func runQuick(client *api.Client, logger *log.Logger, title string, task func(context.Context, *chat.Orchestrator)) {
	thread := render.NewThread()
	orch := chat.NewOrchestrator(chat.Config{
		Client:  client,
		Thread:  thread,
		Session: newSession(),
		Logger:  logger,
	})

	_ = spinner.New().
		Title(title).
		Action(func() { task(context.Background(), orch) }).
		Run()

	printOutcome(thread)
}

// printOutcome writes the terminal entry of a quick run to stdout.
func printOutcome(thread *render.Thread) {
	if entry, ok := thread.LastResult(); ok {
		title := entry.Title
		if title == "" {
			title = "Your notes"
		}
		body := ""
		if entry.Transcript != "" {
			body = tui.InfoStyle.Render("Transcript") + "\n" +
				tui.FromRichText(render.RichText(entry.Transcript)) + "\n\n"
		}
		body += tui.InfoStyle.Render("Summary") + "\n" +
			tui.FromRichText(render.RichText(entry.Summary))
		fmt.Println(tui.Card(title, body, 78))

		if path, err := render.SaveExport(".", render.FormatTXT, entry); err == nil {
			fmt.Println(tui.SuccessStyle.Render("Saved " + path))
		}
		return
	}

	entries := thread.Entries()
	if len(entries) > 0 {
		last := entries[len(entries)-1]
		fmt.Println(tui.ErrorStyle.Render(tui.FromRichText(render.RichText(last.Text))))
	}
}

func newSession() *chat.Session {
	limit := 0
	if v := os.Getenv("NOTEFLOW_CHAT_LIMIT"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	return chat.NewSession(limit)
}
