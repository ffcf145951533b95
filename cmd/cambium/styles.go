package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/farcloser/cambium"
	"github.com/farcloser/cambium/internal/types"
)

//nolint:gochecknoglobals // terminal styles
var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7DCFFF"))
	okStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#9ECE6A"))
	attentionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E0AF68"))
	criticalStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F7768E"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#565F89"))
)

func severityStyle(severity types.Severity) lipgloss.Style {
	switch severity {
	case types.SeverityCritical:
		return criticalStyle
	case types.SeverityAttention:
		return attentionStyle
	default:
		return okStyle
	}
}

// headline is the one-line verdict printed above console output.
func headline(result *cambium.Result) string {
	if result.Table == nil {
		return titleStyle.Render("no comparison") + " " + dimStyle.Render("(no targets)")
	}

	worst := types.SeverityOK

	switch {
	case result.Table.Counts.Critical > 0:
		worst = types.SeverityCritical
	case result.Table.Counts.Attention > 0:
		worst = types.SeverityAttention
	}

	genre := ""
	if result.Profile != nil {
		genre = dimStyle.Render(fmt.Sprintf(" %s/%s", result.Profile.Genre(), result.Profile.Mode()))
	}

	return fmt.Sprintf("%s %s%s",
		titleStyle.Render(fmt.Sprintf("score %.1f", result.Table.Score)),
		severityStyle(worst).Render(worst.String()),
		genre,
	)
}
