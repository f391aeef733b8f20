// Package tasklist renders the mirrored task collection.
package tasklist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasksync/internal/model"
	"github.com/nhle/tasksync/internal/theme"
)

// maxTags is how many tags a line shows before eliding the rest.
const maxTags = 2

// RenderLine draws a single task line.
func RenderLine(t model.Task, selected bool) string {
	prefix := "○"
	if t.Status == model.StatusDone {
		prefix = "✓"
	}

	status := t.Status
	if status == "" {
		status = model.StatusTodo
	}
	statusBadge := theme.StatusStyle(status).Render(statusLabel(status))
	priBadge := theme.PriorityStyle(t.Priority).Render(priorityLabel(t.Priority))

	tagBadge := ""
	if len(t.Tags) > 0 {
		display := t.Tags
		if len(display) > maxTags {
			display = append(display[:maxTags:maxTags], "…")
		}
		tagBadge = lipgloss.NewStyle().
			Foreground(theme.ColorMagenta).
			Render(" #" + strings.Join(display, ","))
	}

	due := ""
	if d := dueLabel(t.DueDate); d != "" {
		due = lipgloss.NewStyle().Foreground(theme.ColorGray).Render(" " + d)
	}

	line := fmt.Sprintf("%s %s %s %s%s%s", prefix, statusBadge, priBadge, t.Title, tagBadge, due)

	if t.Status == model.StatusDone {
		line = theme.DimmedStyle.Render(line)
	}
	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

func statusLabel(s string) string {
	switch s {
	case model.StatusInProgress:
		return "doing"
	default:
		return s
	}
}

// priorityLabel returns a short label for the given priority.
func priorityLabel(p string) string {
	switch p {
	case model.PriorityUrgent:
		return "P1"
	case model.PriorityHigh:
		return "P2"
	case model.PriorityMedium:
		return "P3"
	case model.PriorityLow:
		return "P4"
	default:
		return "P?"
	}
}

// dueLabel keeps the date part of an ISO timestamp.
func dueLabel(s string) string {
	if i := strings.IndexByte(s, 'T'); i > 0 {
		return s[:i]
	}
	return s
}
