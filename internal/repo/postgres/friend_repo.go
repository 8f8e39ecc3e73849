package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ThisIsMahim/Upp-campus/internal/domain/model"
)

var (
	ErrRequestNotFound  = errors.New("friend request not found")
	ErrDuplicateRequest = errors.New("friend request already exists")
)

type FriendRepo struct {
	pool *pgxpool.Pool
}

func NewFriendRepo(pool *pgxpool.Pool) *FriendRepo {
	return &FriendRepo{pool: pool}
}

func (r *FriendRepo) CreateRequest(ctx context.Context, req model.FriendRequest) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	const query = `
INSERT INTO friend_requests (id, sender_id, receiver_id, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW())
`

	if _, err := r.pool.Exec(ctx, query, req.ID, req.SenderID, req.ReceiverID, string(req.Status)); err != nil {
		if isUniqueViolation(err, "") {
			return ErrDuplicateRequest
		}
		return fmt.Errorf("insert friend request: %w", err)
	}

	return nil
}

func (r *FriendRepo) GetRequest(ctx context.Context, id string) (model.FriendRequest, error) {
	if r.pool == nil {
		return model.FriendRequest{}, fmt.Errorf("postgres pool is nil")
	}

	var req model.FriendRequest
	var status string
	err := r.pool.QueryRow(ctx, `
SELECT id, sender_id, receiver_id, status, created_at, updated_at
FROM friend_requests
WHERE id = $1
LIMIT 1
`, id).Scan(&req.ID, &req.SenderID, &req.ReceiverID, &status, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.FriendRequest{}, ErrRequestNotFound
		}
		return model.FriendRequest{}, fmt.Errorf("get friend request: %w", err)
	}
	req.Status = model.FriendRequestStatus(status)

	return req, nil
}

// PendingBetween finds a pending request in either direction between two
// users, used both for duplicate detection and the auto-accept path.
func (r *FriendRepo) PendingBetween(ctx context.Context, a, b string) (model.FriendRequest, error) {
	if r.pool == nil {
		return model.FriendRequest{}, fmt.Errorf("postgres pool is nil")
	}

	var req model.FriendRequest
	var status string
	err := r.pool.QueryRow(ctx, `
SELECT id, sender_id, receiver_id, status, created_at, updated_at
FROM friend_requests
WHERE status = 'pending'
  AND ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
LIMIT 1
`, a, b).Scan(&req.ID, &req.SenderID, &req.ReceiverID, &status, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.FriendRequest{}, ErrRequestNotFound
		}
		return model.FriendRequest{}, fmt.Errorf("get pending request between users: %w", err)
	}
	req.Status = model.FriendRequestStatus(status)

	return req, nil
}

func (r *FriendRepo) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id string, status model.FriendRequestStatus) error {
	tag, err := tx.Exec(ctx, `
UPDATE friend_requests SET status = $2, updated_at = NOW()
WHERE id = $1 AND status = 'pending'
`, id, string(status))
	if err != nil {
		return fmt.Errorf("update friend request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRequestNotFound
	}

	return nil
}

// CreateFriendshipTx stores the friendship as a single row with the pair
// ordered, so (a,b) and (b,a) cannot coexist.
func (r *FriendRepo) CreateFriendshipTx(ctx context.Context, tx pgx.Tx, a, b string) error {
	const query = `
INSERT INTO friendships (user_low, user_high, created_at)
VALUES (LEAST($1::uuid, $2::uuid), GREATEST($1::uuid, $2::uuid), NOW())
ON CONFLICT (user_low, user_high) DO NOTHING
`

	if _, err := tx.Exec(ctx, query, a, b); err != nil {
		return fmt.Errorf("insert friendship: %w", err)
	}

	return nil
}

func (r *FriendRepo) AreFriends(ctx context.Context, a, b string) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1 FROM friendships
	WHERE user_low = LEAST($1::uuid, $2::uuid) AND user_high = GREATEST($1::uuid, $2::uuid)
)
`, a, b).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check friendship: %w", err)
	}

	return exists, nil
}

func (r *FriendRepo) ListFriends(ctx context.Context, userID string) ([]model.Friend, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	const query = `
SELECT pr.user_id, pr.username, COALESCE(pr.avatar_url, ''), COALESCE(pr.campus_id::text, ''), f.created_at
FROM friendships f
JOIN profiles pr ON pr.user_id = CASE WHEN f.user_low = $1 THEN f.user_high ELSE f.user_low END
WHERE f.user_low = $1 OR f.user_high = $1
ORDER BY pr.username
`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	defer rows.Close()

	var friends []model.Friend
	for rows.Next() {
		var f model.Friend
		if err := rows.Scan(&f.UserID, &f.Username, &f.AvatarURL, &f.CampusID, &f.Since); err != nil {
			return nil, fmt.Errorf("scan friend row: %w", err)
		}
		friends = append(friends, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate friend rows: %w", err)
	}

	return friends, nil
}

func (r *FriendRepo) ListPending(ctx context.Context, userID string, incoming bool) ([]model.FriendRequest, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	column := "sender_id"
	if incoming {
		column = "receiver_id"
	}
	query := `
SELECT id, sender_id, receiver_id, status, created_at, updated_at
FROM friend_requests
WHERE status = 'pending' AND ` + column + ` = $1
ORDER BY created_at DESC
`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	defer rows.Close()

	var requests []model.FriendRequest
	for rows.Next() {
		var req model.FriendRequest
		var status string
		if err := rows.Scan(&req.ID, &req.SenderID, &req.ReceiverID, &status, &req.CreatedAt, &req.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan request row: %w", err)
		}
		req.Status = model.FriendRequestStatus(status)
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate request rows: %w", err)
	}

	return requests, nil
}

func (r *FriendRepo) DeleteFriendship(ctx context.Context, a, b string) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM friendships
WHERE user_low = LEAST($1::uuid, $2::uuid) AND user_high = GREATEST($1::uuid, $2::uuid)
`, a, b)
	if err != nil {
		return false, fmt.Errorf("delete friendship: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
