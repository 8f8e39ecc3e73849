package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/ThisIsMahim/Upp-campus/internal/domain/model"
)

func TestNotifyDropsSelfNotification(t *testing.T) {
	store := newFakeNotificationStore()
	svc := NewService(store)

	if err := svc.Notify(context.Background(), "u1", "u1", model.NotificationLike, "p1"); err != nil {
		t.Fatalf("self notify: %v", err)
	}
	if len(store.items) != 0 {
		t.Fatalf("self notification must not be stored")
	}

	if err := svc.Notify(context.Background(), "u1", "u2", model.NotificationLike, "p1"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(store.items) != 1 {
		t.Fatalf("expected 1 stored notification, got %d", len(store.items))
	}
}

func TestMarkReadAllWhenNoIDs(t *testing.T) {
	store := newFakeNotificationStore()
	svc := NewService(store)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := svc.Notify(ctx, "u1", "u2", model.NotificationComment, "p1"); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}

	changed, err := svc.MarkRead(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if changed != 3 {
		t.Fatalf("marked %d notifications, want 3", changed)
	}

	unread, err := svc.UnreadCount(ctx, "u1")
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if unread != 0 {
		t.Fatalf("unread = %d, want 0", unread)
	}
}

func TestListLimitClamped(t *testing.T) {
	store := newFakeNotificationStore()
	svc := NewService(store)

	if _, err := svc.List(context.Background(), "u1", 1000); err != nil {
		t.Fatalf("list: %v", err)
	}
	if store.lastLimit != defaultListLimit {
		t.Fatalf("list limit = %d, want %d", store.lastLimit, defaultListLimit)
	}
}

type fakeNotificationStore struct {
	items     []model.Notification
	lastLimit int
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{}
}

func (f *fakeNotificationStore) Create(_ context.Context, n model.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	f.items = append(f.items, n)
	return nil
}

func (f *fakeNotificationStore) List(_ context.Context, userID string, limit int) ([]model.Notification, error) {
	f.lastLimit = limit

	var out []model.Notification
	for _, n := range f.items {
		if n.UserID == userID {
			out = append(out, n)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) UnreadCount(_ context.Context, userID string) (int, error) {
	count := 0
	for _, n := range f.items {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationStore) MarkRead(_ context.Context, userID string, ids []string) (int64, error) {
	wanted := map[string]struct{}{}
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	var changed int64
	for i := range f.items {
		n := &f.items[i]
		if n.UserID != userID || n.Read {
			continue
		}
		if len(ids) > 0 {
			if _, ok := wanted[n.ID]; !ok {
				continue
			}
		}
		n.Read = true
		changed++
	}
	return changed, nil
}
