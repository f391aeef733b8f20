package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tasksync/internal/model"
	"github.com/nhle/tasksync/internal/store"
	"github.com/nhle/tasksync/internal/testutil"
)

func TestRecordAndListNewestFirst(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.RecordNotification(ctx, model.Notification{
		ID: "n1", Message: "Task created successfully", Severity: model.SeveritySuccess,
		UserID: "u1", CreatedAt: base,
	}))
	require.NoError(t, s.RecordNotification(ctx, model.Notification{
		ID: "n2", Message: "Task updated", Severity: model.SeverityInfo,
		UserID: "u1", CreatedAt: base.Add(time.Minute),
	}))
	require.NoError(t, s.RecordNotification(ctx, model.Notification{
		ID: "n3", Message: "Failed to load tasks", Severity: model.SeverityError,
		UserID: "u2", CreatedAt: base.Add(2 * time.Minute),
	}))

	all, err := s.GetNotifications(ctx, store.ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"n3", "n2", "n1"}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, model.SeverityError, all[0].Severity)
	assert.True(t, all[2].CreatedAt.Equal(base))

	user := "u1"
	mine, err := s.GetNotifications(ctx, store.ActivityFilter{UserID: &user, Limit: 1})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "n2", mine[0].ID)

	sev := model.SeveritySuccess
	ok, err := s.GetNotifications(ctx, store.ActivityFilter{Severity: &sev})
	require.NoError(t, err)
	require.Len(t, ok, 1)
	assert.Equal(t, "n1", ok[0].ID)
}

func TestRecordAssignsIDAndTime(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordNotification(ctx, model.Notification{
		Message: "Logged out successfully", Severity: model.SeverityInfo,
	}))

	all, err := s.GetNotifications(ctx, store.ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.NotEmpty(t, all[0].ID)
	assert.WithinDuration(t, time.Now(), all[0].CreatedAt, time.Minute)
}

func TestRejectsUnknownSeverity(t *testing.T) {
	s := testutil.NewTestStore(t)
	err := s.RecordNotification(context.Background(), model.Notification{
		Message: "x", Severity: model.Severity("shout"),
	})
	assert.Error(t, err)
}

func TestPrune(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, d := range []time.Duration{0, time.Hour, 2 * time.Hour} {
		require.NoError(t, s.RecordNotification(ctx, model.Notification{
			ID: string(rune('a' + i)), Message: "m", Severity: model.SeverityInfo,
			CreatedAt: base.Add(d),
		}))
	}

	n, err := s.PruneNotifications(ctx, base.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rest, err := s.GetNotifications(ctx, store.ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "c", rest[0].ID)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "activity.db")
	ctx := context.Background()

	s, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.RecordNotification(ctx, model.Notification{
		ID: "keep", Message: "m", Severity: model.SeverityInfo,
	}))
	require.NoError(t, s.Close())

	s, err = store.NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	all, err := s.GetNotifications(ctx, store.ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "keep", all[0].ID)
}
