package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/tasksync/internal/gateway"
	"github.com/nhle/tasksync/internal/model"
	"github.com/nhle/tasksync/internal/push"
)

const (
	msgLoggedOut      = "Logged out successfully"
	msgSessionExpired = "Session expired, please log in again"
	msgNotLoggedIn    = "You must be logged in"
	msgLoginFailed    = "Login failed"

	msgCreated       = "Task created successfully"
	msgUpdated       = "Task updated successfully"
	msgDeleted       = "Task deleted successfully"
	msgCreateFailed  = "Failed to create task"
	msgUpdateFailed  = "Failed to update task"
	msgDeleteFailed  = "Failed to delete task"
	msgLoadFailed    = "Failed to load tasks"
	msgRemoteCreated = "New task created"
	msgRemoteUpdated = "Task updated"
	msgRemoteDeleted = "Task deleted"
)

// handleRestored starts the persisted session, or asks for credentials
// when there is none.
func (m Model) handleRestored(msg sessionRestoredMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Warn("restoring session", "error", msg.err)
	}
	if msg.sess == nil {
		cmd := m.showLogin("")
		return m, cmd
	}
	m.logger.Info("session restored", "user", msg.sess.Identity.Email)
	cmd := m.startSession(msg.sess.Token)
	return m, cmd
}

func (m Model) handleAuthResult(msg authResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Warn("login failed", "error", msg.err)
		text := gateway.Message(msg.err)
		if text == "" {
			text = msgLoginFailed
		}
		cmd := tea.Batch(m.post(text, model.SeverityError), m.showLogin(""))
		return m, cmd
	}
	cmd := m.login(msg.identity, msg.token)
	return m, cmd
}

// showLogin puts the login form on screen when an authenticator is wired.
func (m *Model) showLogin(email string) tea.Cmd {
	if m.auth == nil {
		m.currentView = ViewList
		return nil
	}
	m.currentView = ViewLogin
	return m.loginForm.Start(email)
}

// login persists the session and starts syncing under it.
func (m *Model) login(identity model.Identity, token string) tea.Cmd {
	if _, err := m.sessions.Login(identity, token); err != nil {
		m.logger.Error("saving session", "error", err)
		return m.post("Failed to save session", model.SeverityError)
	}
	m.logger.Info("logged in", "user", identity.Email)

	return tea.Batch(
		m.startSession(token),
		m.post("Welcome, "+identity.DisplayName()+"!", model.SeveritySuccess),
	)
}

// startSession opens the push channel and issues the initial full fetch.
func (m *Model) startSession(token string) tea.Cmd {
	m.epoch++
	m.tasks.Clear()
	m.list.Reset()
	m.loading = true
	m.currentView = ViewList
	m.push.Open(token)
	return tea.Batch(m.syncList(), m.listCmd(m.epoch))
}

func (m *Model) logout() tea.Cmd {
	if !m.sessions.Valid() {
		return nil
	}
	return m.endSession(msgLoggedOut)
}

// endSession tears everything down: push channel closed, collection
// cleared, session removed from memory and storage. Any gateway call still
// in flight belongs to the old epoch and is dropped when it resolves.
func (m *Model) endSession(message string) tea.Cmd {
	email := ""
	if cur := m.sessions.Current(); cur != nil {
		email = cur.Identity.Email
	}

	m.epoch++
	m.push.Close()
	m.tasks.Clear()
	m.list.Reset()
	m.loading = false
	if err := m.sessions.Logout(); err != nil {
		m.logger.Warn("clearing session", "error", err)
	}
	m.logger.Info("session ended", "reason", message)

	return tea.Batch(m.syncList(), m.post(message, model.SeverityInfo), m.showLogin(email))
}

func (m *Model) refresh() tea.Cmd {
	if !m.sessions.Valid() {
		return m.post(msgNotLoggedIn, model.SeverityError)
	}
	m.loading = true
	return m.listCmd(m.epoch)
}

func (m *Model) createTask(input model.TaskInput) tea.Cmd {
	if !m.sessions.Valid() {
		return m.post(msgNotLoggedIn, model.SeverityError)
	}
	return m.createCmd(m.epoch, input)
}

func (m *Model) updateTask(id string, patch model.TaskPatch) tea.Cmd {
	if !m.sessions.Valid() {
		return m.post(msgNotLoggedIn, model.SeverityError)
	}
	return m.updateCmd(m.epoch, id, patch)
}

func (m *Model) deleteTask(id string) tea.Cmd {
	if !m.sessions.Valid() {
		return m.post(msgNotLoggedIn, model.SeverityError)
	}
	return m.deleteCmd(m.epoch, id)
}

// stale reports whether a result issued under epoch should be dropped.
func (m *Model) stale(epoch uint64) bool {
	return epoch != m.epoch || !m.sessions.Valid()
}

// failed converts a gateway error into a notification. An AuthError ends
// the session.
func (m *Model) failed(err error, fallback string) tea.Cmd {
	if gateway.IsAuthError(err) {
		m.logger.Warn("credential rejected", "error", err)
		return m.endSession(msgSessionExpired)
	}
	m.logger.Warn(fallback, "error", err)

	text := gateway.Message(err)
	if text == "" {
		text = fallback
	}
	return m.post(text, model.SeverityError)
}

func (m *Model) handleList(msg listResultMsg) tea.Cmd {
	if m.stale(msg.epoch) {
		return nil
	}
	m.loading = false
	if msg.err != nil {
		return m.failed(msg.err, msgLoadFailed)
	}
	m.tasks.Seed(msg.tasks)
	m.logger.Debug("tasks loaded", "count", m.tasks.Len())
	return m.syncList()
}

func (m *Model) handleCreate(msg createResultMsg) tea.Cmd {
	if m.stale(msg.epoch) {
		return nil
	}
	if msg.err != nil {
		return m.failed(msg.err, msgCreateFailed)
	}
	m.tasks.Upsert(msg.task)
	return tea.Batch(m.syncList(), m.post(msgCreated, model.SeveritySuccess))
}

func (m *Model) handleUpdate(msg updateResultMsg) tea.Cmd {
	if m.stale(msg.epoch) {
		return nil
	}
	if msg.err != nil {
		return m.failed(msg.err, msgUpdateFailed)
	}
	m.tasks.Upsert(msg.task)
	return tea.Batch(m.syncList(), m.post(msgUpdated, model.SeveritySuccess))
}

func (m *Model) handleDelete(msg deleteResultMsg) tea.Cmd {
	if m.stale(msg.epoch) {
		return nil
	}
	if msg.err != nil {
		return m.failed(msg.err, msgDeleteFailed)
	}
	m.tasks.Remove(msg.id)
	return tea.Batch(m.syncList(), m.post(msgDeleted, model.SeveritySuccess))
}

// handlePush applies one push event. Events from a closed connection, or
// arriving with no session, are dropped.
func (m *Model) handlePush(ev push.Event) tea.Cmd {
	if ev.Generation != m.push.Generation() || !m.sessions.Valid() {
		m.logger.Debug("dropping stale push event", "kind", ev.Kind, "generation", ev.Generation)
		return nil
	}

	switch ev.Kind {
	case push.EventAuthRejected:
		return m.endSession(msgSessionExpired)
	case push.EventCreated:
		m.tasks.Upsert(ev.Task)
		return tea.Batch(m.syncList(), m.post(msgRemoteCreated, model.SeveritySuccess))
	case push.EventUpdated:
		m.tasks.Upsert(ev.Task)
		return tea.Batch(m.syncList(), m.post(msgRemoteUpdated, model.SeverityInfo))
	case push.EventDeleted:
		m.tasks.Remove(ev.TaskID)
		return tea.Batch(m.syncList(), m.post(msgRemoteDeleted, model.SeverityInfo))
	}
	return nil
}

// post shows a notification, schedules its expiry and records it.
func (m *Model) post(message string, severity model.Severity) tea.Cmd {
	n := m.notes.Post(message, severity)
	if cur := m.sessions.Current(); cur != nil {
		n.UserID = cur.Identity.ID
	}
	return tea.Batch(m.expireCmd(n.ID), m.recordCmd(n))
}

// syncList shows the current collection in the list view.
func (m *Model) syncList() tea.Cmd {
	return m.list.SetTasks(m.tasks.All())
}
