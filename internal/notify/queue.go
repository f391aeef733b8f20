// Package notify holds the single transient notification shown to the user.
package notify

import (
	"time"

	"github.com/google/uuid"

	"github.com/nhle/tasksync/internal/model"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 3 * time.Second

// Queue holds at most one visible notification. Posting replaces the
// current one; nothing is retained. Despite the name there is no backlog.
//
// A Queue is not safe for concurrent use.
type Queue struct {
	ttl time.Duration
	now func() time.Time

	current   *model.Notification
	expiresAt time.Time
}

// New creates a Queue. A zero ttl uses DefaultTTL; a nil now uses time.Now.
func New(ttl time.Duration, now func() time.Time) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Queue{ttl: ttl, now: now}
}

// TTL returns the display interval.
func (q *Queue) TTL() time.Duration {
	return q.ttl
}

// Post replaces the visible notification and starts its countdown.
func (q *Queue) Post(message string, severity model.Severity) model.Notification {
	n := model.Notification{
		ID:        uuid.New().String(),
		Message:   message,
		Severity:  severity,
		CreatedAt: q.now(),
	}
	q.current = &n
	q.expiresAt = n.CreatedAt.Add(q.ttl)
	return n
}

// Current returns the visible notification. A notification posted at t is
// not visible at t+TTL or later, even if Expire has not run yet.
func (q *Queue) Current() (model.Notification, bool) {
	if q.current == nil {
		return model.Notification{}, false
	}
	if !q.now().Before(q.expiresAt) {
		return model.Notification{}, false
	}
	return *q.current, true
}

// Expire clears the notification with the given ID if it is still the
// visible one. A countdown for a superseded notification is ignored.
func (q *Queue) Expire(id string) bool {
	if q.current == nil || q.current.ID != id {
		return false
	}
	q.Clear()
	return true
}

// Clear removes the visible notification.
func (q *Queue) Clear() {
	q.current = nil
	q.expiresAt = time.Time{}
}
