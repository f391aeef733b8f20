package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/tasksync/internal/model"
)

// Gateway calls run as tea.Cmds off the event loop. They never touch the
// model; their results come back as messages stamped with the epoch they
// were issued under.

func (m *Model) listCmd(epoch uint64) tea.Cmd {
	gw, timeout := m.gateway, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		tasks, err := gw.List(ctx)
		return listResultMsg{epoch: epoch, tasks: tasks, err: err}
	}
}

func (m *Model) createCmd(epoch uint64, input model.TaskInput) tea.Cmd {
	gw, timeout := m.gateway, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		task, err := gw.Create(ctx, input)
		return createResultMsg{epoch: epoch, task: task, err: err}
	}
}

func (m *Model) updateCmd(epoch uint64, id string, patch model.TaskPatch) tea.Cmd {
	gw, timeout := m.gateway, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		task, err := gw.Update(ctx, id, patch)
		return updateResultMsg{epoch: epoch, task: task, err: err}
	}
}

func (m *Model) deleteCmd(epoch uint64, id string) tea.Cmd {
	gw, timeout := m.gateway, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		err := gw.Delete(ctx, id)
		return deleteResultMsg{epoch: epoch, id: id, err: err}
	}
}

func (m *Model) authCmd(email, password string) tea.Cmd {
	auth, timeout := m.auth, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		identity, token, err := auth.Authenticate(ctx, email, password)
		return authResultMsg{identity: identity, token: token, err: err}
	}
}

// waitForPush returns a tea.Cmd that waits for the next push event. It is
// re-armed after every pushMsg so there is exactly one reader.
func (m *Model) waitForPush() tea.Cmd {
	events := m.push.Events()
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return pushMsg{event: ev}
	}
}

// expireCmd schedules the end of a notification's display interval.
func (m *Model) expireCmd(id string) tea.Cmd {
	return m.tick(m.notes.TTL(), func(time.Time) tea.Msg {
		return notificationExpiredMsg{id: id}
	})
}

// recordCmd appends a notification to the activity log. Failures are
// logged; the log is best-effort.
func (m *Model) recordCmd(n model.Notification) tea.Cmd {
	if m.activity == nil {
		return nil
	}
	activity, logger := m.activity, m.logger
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := activity.RecordNotification(ctx, n); err != nil {
			logger.Warn("recording activity", "error", err)
		}
		return nil
	}
}
