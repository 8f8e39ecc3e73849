package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ThisIsMahim/Upp-campus/internal/domain/model"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrDependenciesNil = errors.New("notifications dependencies are not configured")
)

const defaultListLimit = 50

type NotificationStore interface {
	Create(ctx context.Context, n model.Notification) error
	List(ctx context.Context, userID string, limit int) ([]model.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID string, ids []string) (int64, error)
}

type Service struct {
	store NotificationStore
	now   func() time.Time
}

func NewService(store NotificationStore) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

func (s *Service) List(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrValidation
	}
	if s.store == nil {
		return nil, ErrDependenciesNil
	}
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	list, err := s.store.List(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return list, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, ErrValidation
	}
	if s.store == nil {
		return 0, ErrDependenciesNil
	}

	count, err := s.store.UnreadCount(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks the given notifications as read, or every unread one when
// ids is empty. It returns how many rows changed.
func (s *Service) MarkRead(ctx context.Context, userID string, ids []string) (int64, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, ErrValidation
	}
	if s.store == nil {
		return 0, ErrDependenciesNil
	}

	changed, err := s.store.MarkRead(ctx, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return changed, nil
}

// Notify writes one notification. Self-notifications are dropped so liking
// or commenting on your own post stays silent.
func (s *Service) Notify(ctx context.Context, userID, actorID string, kind model.NotificationKind, postID string) error {
	if s.store == nil {
		return ErrDependenciesNil
	}
	if userID == "" || actorID == "" || userID == actorID {
		return nil
	}

	n := model.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		ActorID:   actorID,
		Kind:      kind,
		PostID:    postID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}
