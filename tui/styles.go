// Package tui renders the NoteFlow conversation in the terminal using the
// Charm stack: a scrolling thread, a message input, and panels for file
// picking and recording.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette - Catppuccin Mocha inspired with some custom touches
var (
	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"} // Violet
	ColorSecondary = lipgloss.AdaptiveColor{Light: "#0EA5E9", Dark: "#38BDF8"} // Sky blue
	ColorAccent    = lipgloss.AdaptiveColor{Light: "#F59E0B", Dark: "#FBBF24"} // Amber

	ColorSuccess = lipgloss.AdaptiveColor{Light: "#10B981", Dark: "#34D399"} // Emerald
	ColorWarning = lipgloss.AdaptiveColor{Light: "#F59E0B", Dark: "#FBBF24"} // Amber
	ColorError   = lipgloss.AdaptiveColor{Light: "#EF4444", Dark: "#F87171"} // Red
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#6366F1", Dark: "#818CF8"} // Indigo

	ColorText   = lipgloss.AdaptiveColor{Light: "#1E293B", Dark: "#F1F5F9"}
	ColorSubtle = lipgloss.AdaptiveColor{Light: "#64748B", Dark: "#94A3B8"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#94A3B8", Dark: "#64748B"}
	ColorBorder = lipgloss.AdaptiveColor{Light: "#CBD5E1", Dark: "#334155"}
)

// Base styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	BodyStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	SuccessStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSuccess)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorInfo)

	// Thread entry styles
	UserLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary)

	AssistantLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorPrimary)

	FileBadgeStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Background(ColorSecondary).
			Foreground(lipgloss.Color("#FFFFFF"))

	ResultBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2).
			MarginTop(1).
			MarginBottom(1)

	RecordingBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorError).
				Padding(1, 2)
)

// NoteFlowHeader is the application banner.
var NoteFlowHeader = `
  _  _     _       ___ _
 | \| |___| |_ ___| __| |_____ __ __
 | .' / _ \  _/ -_) _|| / _ \ V  V /
 |_|\_\___/\__\___|_| |_\___/\_/\_/
`

// RenderHeader returns the styled application banner.
func RenderHeader() string {
	return lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		Render(NoteFlowHeader)
}

// SeverityStyle maps a notification severity to its style.
func SeverityStyle(severity string) lipgloss.Style {
	switch severity {
	case "success":
		return SuccessStyle
	case "warning":
		return WarningStyle
	case "error":
		return ErrorStyle
	}
	return InfoStyle
}

// KeyHelp renders keyboard shortcut help as "key description" pairs.
func KeyHelp(pairs [][2]string) string {
	keyStyle := lipgloss.NewStyle().
		Foreground(ColorSubtle).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(ColorMuted)

	var parts []string
	for _, p := range pairs {
		parts = append(parts, keyStyle.Render(p[0])+descStyle.Render(" "+p[1]))
	}

	sep := lipgloss.NewStyle().Foreground(ColorBorder).Render(" | ")
	return lipgloss.NewStyle().Foreground(ColorMuted).MarginTop(1).
		Render(strings.Join(parts, sep))
}

// Card renders titled content in a rounded box.
func Card(title, content string, width int) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		MarginBottom(1)

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(1, 2).
		Width(width)

	return cardStyle.Render(titleStyle.Render(title) + "\n" + BodyStyle.Render(content))
}
