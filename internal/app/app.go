// Package app is the synchronization orchestrator. Its Bubble Tea model is
// the single event loop that applies every session transition, gateway
// result and push event, one message at a time.
package app

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/tasksync/internal/collection"
	"github.com/nhle/tasksync/internal/gateway"
	"github.com/nhle/tasksync/internal/keys"
	"github.com/nhle/tasksync/internal/model"
	"github.com/nhle/tasksync/internal/notify"
	"github.com/nhle/tasksync/internal/push"
	"github.com/nhle/tasksync/internal/session"
	"github.com/nhle/tasksync/internal/store"
	"github.com/nhle/tasksync/internal/ui"
	"github.com/nhle/tasksync/internal/ui/loginform"
	"github.com/nhle/tasksync/internal/ui/taskform"
	"github.com/nhle/tasksync/internal/ui/tasklist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewLogin
	ViewTaskForm
)

// PushChannel is the part of push.Manager the orchestrator drives.
type PushChannel interface {
	Open(token string)
	Close()
	Events() <-chan push.Event
	Generation() uint64
	State() push.State
}

// TickFunc schedules a message after d. It matches tea.Tick.
type TickFunc func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd

// Deps are the components the orchestrator wires together.
type Deps struct {
	Sessions *session.Store
	Gateway  gateway.Gateway

	// Auth enables the in-app login form. Nil hides it.
	Auth gateway.Authenticator

	Push          PushChannel
	Notifications *notify.Queue

	// Activity, when set, receives every posted notification.
	Activity store.Store

	// RequestTimeout bounds each gateway call. Zero means 30s.
	RequestTimeout time.Duration

	// Tick defaults to tea.Tick.
	Tick TickFunc

	Logger *slog.Logger
}

// Model is the root Bubble Tea model. It owns the task collection and is
// the only writer of it and of the session store.
type Model struct {
	sessions *session.Store
	gateway  gateway.Gateway
	auth     gateway.Authenticator
	push     PushChannel
	notes    *notify.Queue
	activity store.Store
	tasks    *collection.Collection
	timeout  time.Duration
	tick     TickFunc
	logger   *slog.Logger
	keys     *keys.KeyMap

	// epoch increments on every session transition. Gateway results
	// carrying an older epoch are stale.
	epoch uint64

	loading     bool
	currentView ViewState
	layout      ui.Layout
	list        tasklist.Model
	help        help.Model
	loginForm   loginform.Model
	taskForm    taskform.Model
	quitting    bool
}

// New creates the orchestrator. Nothing happens until Init runs.
func New(d Deps) Model {
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	tick := d.Tick
	if tick == nil {
		tick = tea.Tick
	}
	notes := d.Notifications
	if notes == nil {
		notes = notify.New(notify.DefaultTTL, nil)
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	k := keys.DefaultKeyMap()
	layout := ui.NewLayout(80, 24)

	return Model{
		sessions:    d.Sessions,
		gateway:     d.Gateway,
		auth:        d.Auth,
		push:        d.Push,
		notes:       notes,
		activity:    d.Activity,
		tasks:       collection.New(),
		timeout:     timeout,
		tick:        tick,
		logger:      logger.With("component", "app"),
		keys:        k,
		currentView: ViewList,
		layout:      layout,
		list:        tasklist.New(k, layout.ContentWidth(), layout.ContentHeight()),
		help:        help.New(),
		loginForm:   loginform.New(80),
		taskForm:    taskform.New(80, 24),
	}
}

// Init restores the persisted session and starts listening for push
// events.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return restoreMsg{} },
		m.waitForPush(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.loginForm.SetSize(msg.Width)
		m.taskForm.SetSize(m.layout.ContentWidth(), m.layout.ContentHeight())
		m.list.SetSize(m.layout.ContentWidth(), m.layout.ContentHeight())
		m.help.Width = msg.Width
		return m.updateActiveView(msg)

	case restoreMsg:
		sess, err := m.sessions.Restore()
		return m.handleRestored(sessionRestoredMsg{sess: sess, err: err})

	case LoginMsg:
		cmd := m.login(msg.Identity, msg.Token)
		return m, cmd

	case LogoutMsg:
		cmd := m.logout()
		return m, cmd

	case RefreshMsg:
		cmd := m.refresh()
		return m, cmd

	case CreateTaskMsg:
		cmd := m.createTask(msg.Input)
		return m, cmd

	case UpdateTaskMsg:
		cmd := m.updateTask(msg.ID, msg.Patch)
		return m, cmd

	case DeleteTaskMsg:
		cmd := m.deleteTask(msg.ID)
		return m, cmd

	case authResultMsg:
		return m.handleAuthResult(msg)

	case listResultMsg:
		cmd := m.handleList(msg)
		return m, cmd

	case createResultMsg:
		cmd := m.handleCreate(msg)
		return m, cmd

	case updateResultMsg:
		cmd := m.handleUpdate(msg)
		return m, cmd

	case deleteResultMsg:
		cmd := m.handleDelete(msg)
		return m, cmd

	case pushMsg:
		cmd := m.handlePush(msg.event)
		return m, tea.Batch(cmd, m.waitForPush())

	case notificationExpiredMsg:
		m.notes.Expire(msg.id)
		return m, nil

	case loginform.SubmittedMsg:
		return m, m.authCmd(msg.Email, msg.Password)

	case loginform.CancelMsg:
		return m.quit()

	case taskform.SubmittedMsg:
		m.currentView = ViewList
		cmd := m.createTask(msg.Input)
		return m, cmd

	case taskform.CancelMsg:
		m.currentView = ViewList
		return m, nil

	case tea.KeyMsg:
		if m.currentView == ViewList {
			return m.handleListKeys(msg)
		}
	}

	return m.updateActiveView(msg)
}

// updateActiveView forwards a message to the view that owns the screen.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentView {
	case ViewList:
		m.list, cmd = m.list.Update(msg)
	case ViewLogin:
		m.loginForm, cmd = m.loginForm.Update(msg)
	case ViewTaskForm:
		m.taskForm, cmd = m.taskForm.Update(msg)
	}
	return m, cmd
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list.SettingFilter() {
		if msg.Type == tea.KeyCtrlC {
			return m.quit()
		}
		return m.updateActiveView(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Refresh):
		cmd := m.refresh()
		return m, cmd

	case key.Matches(msg, m.keys.Logout):
		cmd := m.logout()
		return m, cmd
	}

	if !m.sessions.Valid() {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.New):
		m.currentView = ViewTaskForm
		cmd := m.taskForm.Start()
		return m, cmd

	case key.Matches(msg, m.keys.Advance):
		t, ok := m.list.Selected()
		if !ok {
			return m, nil
		}
		next := model.NextStatus(t.Status)
		cmd := m.updateTask(t.ID, model.TaskPatch{Status: &next})
		return m, cmd

	case key.Matches(msg, m.keys.Delete):
		t, ok := m.list.Selected()
		if !ok {
			return m, nil
		}
		cmd := m.deleteTask(t.ID)
		return m, cmd
	}

	return m.updateActiveView(msg)
}

// quit closes the push channel and stops the program.
func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.push.Close()
	return m, tea.Quit
}

// Tasks returns the mirrored tasks in display order.
func (m Model) Tasks() []model.Task {
	return m.tasks.All()
}

// Notification returns the visible notification, if any.
func (m Model) Notification() (model.Notification, bool) {
	return m.notes.Current()
}

// Loading reports whether a full fetch is outstanding.
func (m Model) Loading() bool {
	return m.loading
}

// Authenticated reports whether a session is active.
func (m Model) Authenticated() bool {
	return m.sessions.Valid()
}

// View returns the active view.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.render()
}
