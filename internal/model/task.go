package model

// Status values accepted by the task API.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusReview     = "review"
	StatusDone       = "done"
)

// Priority values accepted by the task API.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Task is a task record mirrored from the remote API. Apart from ID the
// fields are opaque to the sync engine; they are carried as the server
// sent them.
type Task struct {
	// ID is the server-assigned identifier. It never changes.
	ID string `json:"_id"`

	// Title is the short human-readable summary.
	Title string `json:"title"`

	// Description is the free-form body text.
	Description string `json:"description,omitempty"`

	// Priority is one of the Priority* constants.
	Priority string `json:"priority,omitempty"`

	// Status is one of the Status* constants.
	Status string `json:"status,omitempty"`

	// DueDate is the due date as sent by the server.
	DueDate string `json:"due_date,omitempty"`

	// AssigneeID identifies the assigned user, if any.
	AssigneeID string `json:"assignee_id,omitempty"`

	// CreatedBy identifies the user that created the task.
	CreatedBy string `json:"created_by,omitempty"`

	// Tags holds free-form labels.
	Tags []string `json:"tags,omitempty"`

	// CreatedAt and UpdatedAt are server timestamps kept verbatim.
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// TaskInput is the payload for creating a task.
type TaskInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Status      string   `json:"status,omitempty"`
	DueDate     string   `json:"due_date,omitempty"`
	AssigneeID  string   `json:"assignee_id,omitempty"`
	Tags        []string `json:"tags"`
}

// TaskPatch is a partial update. Nil fields are left unchanged by the server;
// a non-nil Tags pointing at an empty slice clears the tags.
type TaskPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Priority    *string   `json:"priority,omitempty"`
	Status      *string   `json:"status,omitempty"`
	DueDate     *string   `json:"due_date,omitempty"`
	AssigneeID  *string   `json:"assignee_id,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

// NextStatus returns the status that follows s in the todo → in_progress →
// review → done cycle. Unknown and done statuses wrap to todo.
func NextStatus(s string) string {
	switch s {
	case StatusTodo:
		return StatusInProgress
	case StatusInProgress:
		return StatusReview
	case StatusReview:
		return StatusDone
	default:
		return StatusTodo
	}
}
