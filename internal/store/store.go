package store

import (
	"context"
	"time"

	"github.com/nhle/tasksync/internal/model"
)

// ActivityFilter controls which activity entries are returned.
type ActivityFilter struct {
	UserID   *string
	Severity *model.Severity
	Since    *time.Time
	Limit    int
}

// Store defines the persistence interface for the local activity log: a
// record of every notification posted to the user.
type Store interface {
	RecordNotification(ctx context.Context, n model.Notification) error
	GetNotifications(ctx context.Context, filter ActivityFilter) ([]model.Notification, error)
	PruneNotifications(ctx context.Context, before time.Time) (int64, error)
}
