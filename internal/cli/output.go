package cli

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nhle/tasksync/internal/gateway"
	"github.com/nhle/tasksync/internal/model"
	"github.com/nhle/tasksync/internal/theme"
)

// writeOut prints v as JSON when --json is set, otherwise runs text.
func writeOut(cmd *cobra.Command, app *App, v any, text func() error) error {
	if !app.JSON {
		return text()
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// record appends a message to the activity log. The log is best-effort.
func (e *env) record(ctx context.Context, message string, severity model.Severity, userID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	err := e.activity.RecordNotification(ctx, model.Notification{
		Message:   message,
		Severity:  severity,
		UserID:    userID,
		CreatedAt: time.Now(),
	})
	if err != nil {
		e.logger.Warn("recording activity", "error", err)
	}
}

// fail records a failed remote call and returns the error to show. The
// server's message wins over fallback in both places.
func (e *env) fail(ctx context.Context, err error, fallback, userID string) error {
	switch {
	case gateway.IsAuthError(err):
		e.record(ctx, "Session expired, please log in again", model.SeverityInfo, userID)
	default:
		text := gateway.Message(err)
		if text == "" {
			text = fallback
		}
		e.record(ctx, text, model.SeverityError, userID)
	}
	return e.remoteErr(err)
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func taskTable(tasks []model.Task) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorBorder)).
		Headers("ID", "STATUS", "PRIORITY", "TITLE", "DUE", "TAGS").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, task := range tasks {
		t.Row(task.ID, task.Status, task.Priority, task.Title, dueDate(task.DueDate), strings.Join(task.Tags, ","))
	}
	return t.Render()
}

func taskDetail(task model.Task) string {
	var b strings.Builder
	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(headerStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	b.WriteString(theme.HeaderStyle.Render(task.Title))
	b.WriteString("\n\n")
	field("id", task.ID)
	field("status", task.Status)
	field("priority", task.Priority)
	field("due", dueDate(task.DueDate))
	field("assignee", task.AssigneeID)
	field("created by", task.CreatedBy)
	field("tags", strings.Join(task.Tags, ", "))
	field("created", task.CreatedAt)
	field("updated", task.UpdatedAt)
	if task.Description != "" {
		b.WriteByte('\n')
		b.WriteString(task.Description)
		b.WriteByte('\n')
	}
	return b.String()
}

func activityTable(entries []model.Notification) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorBorder)).
		Headers("WHEN", "SEVERITY", "MESSAGE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, n := range entries {
		t.Row(n.CreatedAt.Local().Format("2006-01-02 15:04:05"), string(n.Severity), n.Message)
	}
	return t.Render()
}

func dueDate(s string) string {
	if i := strings.IndexByte(s, 'T'); i > 0 {
		return s[:i]
	}
	return s
}
