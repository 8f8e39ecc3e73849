package cleanup

import (
	"context"
	"testing"
	"time"
)

func TestRunDeletesReadNotificationsPastRetention(t *testing.T) {
	now := time.Date(2026, time.August, 20, 12, 0, 0, 0, time.UTC)

	cleaner := &fakeNotificationCleaner{
		notifications: []storedNotification{
			{Read: true, CreatedAt: now.Add(-31 * 24 * time.Hour)},
			{Read: true, CreatedAt: now.Add(-29 * 24 * time.Hour)},
			{Read: false, CreatedAt: now.Add(-60 * 24 * time.Hour)},
		},
	}

	job := New(cleaner, 30*24*time.Hour, nil)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run cleanup job: %v", err)
	}

	if len(cleaner.notifications) != 2 {
		t.Fatalf("expected 2 notifications to remain, got %d", len(cleaner.notifications))
	}
	for _, n := range cleaner.notifications {
		if n.Read && n.CreatedAt.Before(now.Add(-30*24*time.Hour)) {
			t.Fatalf("stale read notification survived cleanup")
		}
	}
}

func TestRunWithoutCleanerIsNoop(t *testing.T) {
	job := New(nil, time.Hour, nil)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run without cleaner: %v", err)
	}
}

type storedNotification struct {
	Read      bool
	CreatedAt time.Time
}

type fakeNotificationCleaner struct {
	notifications []storedNotification
}

func (f *fakeNotificationCleaner) DeleteReadOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	var kept []storedNotification
	var deleted int64
	for _, n := range f.notifications {
		if n.Read && n.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	f.notifications = kept
	return deleted, nil
}
