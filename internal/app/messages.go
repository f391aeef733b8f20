package app

import (
	"github.com/nhle/tasksync/internal/model"
	"github.com/nhle/tasksync/internal/push"
	"github.com/nhle/tasksync/internal/session"
)

// LoginMsg makes identity and token the current session.
type LoginMsg struct {
	Identity model.Identity
	Token    string
}

// LogoutMsg ends the current session.
type LogoutMsg struct{}

// CreateTaskMsg asks the server to create a task.
type CreateTaskMsg struct {
	Input model.TaskInput
}

// UpdateTaskMsg asks the server to apply a patch to a task.
type UpdateTaskMsg struct {
	ID    string
	Patch model.TaskPatch
}

// DeleteTaskMsg asks the server to delete a task.
type DeleteTaskMsg struct {
	ID string
}

// RefreshMsg re-fetches the full task list.
type RefreshMsg struct{}

// restoreMsg triggers loading the persisted session.
type restoreMsg struct{}

// sessionRestoredMsg carries the outcome of restoring the persisted
// session.
type sessionRestoredMsg struct {
	sess *session.Session
	err  error
}

// authResultMsg carries the outcome of an email/password login.
type authResultMsg struct {
	identity model.Identity
	token    string
	err      error
}

// Results of gateway calls. epoch is the session epoch the call was issued
// under; a result from an older epoch is discarded.
type (
	listResultMsg struct {
		epoch uint64
		tasks []model.Task
		err   error
	}

	createResultMsg struct {
		epoch uint64
		task  model.Task
		err   error
	}

	updateResultMsg struct {
		epoch uint64
		task  model.Task
		err   error
	}

	deleteResultMsg struct {
		epoch uint64
		id    string
		err   error
	}
)

// pushMsg wraps one event from the push channel.
type pushMsg struct {
	event push.Event
}

// notificationExpiredMsg fires when a notification's countdown ends.
type notificationExpiredMsg struct {
	id string
}
