package model

import "time"

// Severity classifies a notification for presentation.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityError   Severity = "error"
)

// Notification is a transient message surfaced to the user about the
// outcome of an operation or a remote change.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id"`

	// Message is the human-readable notification text.
	Message string `json:"message"`

	// Severity is the presentation category.
	Severity Severity `json:"severity"`

	// UserID is the identity that was signed in when the notification
	// was posted, empty when none was.
	UserID string `json:"user_id,omitempty"`

	// CreatedAt is when this notification was posted.
	CreatedAt time.Time `json:"created_at"`
}
