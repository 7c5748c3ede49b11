// Package ui はターミナル表示（パネル・テーブル・確認プロンプト）を提供する。
package ui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	colorPrimary = lipgloss.Color("#00D7FF") // cyan  — plan / info
	colorSuccess = lipgloss.Color("#87FF5F") // green — succeeded
	colorWarning = lipgloss.Color("#FFD700") // yellow — skipped / dry-run
	colorDanger  = lipgloss.Color("#FF5555") // red — failed / blocked
	colorMuted   = lipgloss.Color("#555577") // dim gray — hints
	colorBorder  = lipgloss.Color("#333355") // default border
)

// Panels
var (
	planPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1)

	resultPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorder).
				Padding(0, 1)

	errorPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDanger).
			Padding(0, 1)
)

// Text styles
var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	headerStyle    = lipgloss.NewStyle().Bold(true)
	succeededStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	failedStyle    = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	skippedStyle   = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	previewedStyle = lipgloss.NewStyle().Foreground(colorWarning)
	hintStyle      = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)
)
