package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fretcoach/fretcoach/pkg/core/session"
	"github.com/fretcoach/fretcoach/pkg/core/types"
	"github.com/fretcoach/fretcoach/pkg/lesson"
)

var (
	bannerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	phaseStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	targetStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	correctStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	retryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

func renderBanner(plan lesson.Plan) string {
	var b strings.Builder
	b.WriteString(bannerStyle.Render("fretcoach: " + plan.Name))
	if plan.Description != "" {
		b.WriteString("\n" + dimStyle.Render(plan.Description))
	}
	if !plan.AutoRecord {
		b.WriteString("\n" + dimStyle.Render("press Enter to record each turn"))
	}
	return b.String()
}

func renderSnapshot(plan lesson.Plan, snap session.Snapshot, progress *types.ProgressSet) string {
	parts := []string{phaseStyle.Render(snap.Phase.String())}

	if !snap.Target.IsZero() && !snap.Target.Bootstrap {
		parts = append(parts, targetStyle.Render(snap.Target.String()))
	}
	if snap.TotalTargets > 0 {
		parts = append(parts, dimStyle.Render(fmt.Sprintf("%d/%d done", snap.CompletedCount, snap.TotalTargets)))
	}
	if snap.Phase == session.PhaseRecording {
		parts = append(parts, renderLevel(snap.Level))
	}
	if snap.Deviation != nil && snap.Phase == session.PhaseIdle {
		hint := snap.DeviationHint()
		if hint == "" {
			hint = "in tune"
		}
		parts = append(parts, dimStyle.Render(fmt.Sprintf("%+.0f cents (%s)", *snap.Deviation, hint)))
	}
	if snap.LastError != nil {
		parts = append(parts, errorStyle.Render(snap.LastError.Error()+" (Enter to retry)"))
	}

	line := strings.Join(parts, "  ")
	if marks := renderTargets(plan, progress); marks != "" {
		line += "\n" + marks
	}
	return line
}

// renderLevel draws a ten-segment input meter.
func renderLevel(level float64) string {
	filled := int(level * 10)
	if filled > 10 {
		filled = 10
	}
	return dimStyle.Render("[") +
		correctStyle.Render(strings.Repeat("#", filled)) +
		dimStyle.Render(strings.Repeat("-", 10-filled)+"]")
}

// renderTargets marks each of the plan's targets by status.
func renderTargets(plan lesson.Plan, progress *types.ProgressSet) string {
	if len(plan.Targets) == 0 || progress == nil {
		return ""
	}
	marks := make([]string, 0, len(plan.Targets))
	for _, name := range plan.Targets {
		switch progress.Status(name) {
		case types.StatusCorrect:
			marks = append(marks, correctStyle.Render(name+" ✓"))
		case types.StatusRetry:
			marks = append(marks, retryStyle.Render(name+" ~"))
		default:
			marks = append(marks, dimStyle.Render(name))
		}
	}
	return strings.Join(marks, "  ")
}

func renderFinal(snap session.Snapshot) string {
	if snap.TotalTargets > 0 {
		return bannerStyle.Render(fmt.Sprintf("session complete: %d/%d targets", snap.CompletedCount, snap.TotalTargets))
	}
	return bannerStyle.Render("session complete")
}
