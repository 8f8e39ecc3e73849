package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ThisIsMahim/Upp-campus/internal/domain/model"
)

type NotificationRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationRepo(pool *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

func (r *NotificationRepo) Create(ctx context.Context, n model.Notification) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	const query = `
INSERT INTO notifications (id, user_id, actor_id, kind, post_id, read, created_at)
VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, false, $6)
`

	if _, err := r.pool.Exec(ctx, query,
		n.ID,
		n.UserID,
		n.ActorID,
		string(n.Kind),
		n.PostID,
		n.CreatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	return nil
}

func (r *NotificationRepo) List(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, actor_id, kind, COALESCE(post_id::text, ''), read, created_at
FROM notifications
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		var kind string
		if err := rows.Scan(&n.ID, &n.UserID, &n.ActorID, &kind, &n.PostID, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification row: %w", err)
		}
		n.Kind = model.NotificationKind(kind)
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notification rows: %w", err)
	}

	return notifications, nil
}

func (r *NotificationRepo) UnreadCount(ctx context.Context, userID string) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var count int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT read
`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}

	return count, nil
}

// MarkRead marks the given notifications of the user as read, or all of them
// when ids is empty.
func (r *NotificationRepo) MarkRead(ctx context.Context, userID string, ids []string) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	if len(ids) == 0 {
		tag, err := r.pool.Exec(ctx, `UPDATE notifications SET read = true WHERE user_id = $1 AND NOT read`, userID)
		if err != nil {
			return 0, fmt.Errorf("mark all notifications read: %w", err)
		}
		return tag.RowsAffected(), nil
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE notifications SET read = true
WHERE user_id = $1 AND id = ANY($2) AND NOT read
`, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *NotificationRepo) DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE read AND created_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete read notifications: %w", err)
	}

	return tag.RowsAffected(), nil
}
