package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type LikeRepo struct {
	pool *pgxpool.Pool
}

func NewLikeRepo(pool *pgxpool.Pool) *LikeRepo {
	return &LikeRepo{pool: pool}
}

// Like records a like and reports whether a new row was written. Liking an
// already-liked post is a no-op.
func (r *LikeRepo) Like(ctx context.Context, postID, userID string) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
INSERT INTO post_likes (post_id, user_id, created_at)
VALUES ($1, $2, NOW())
ON CONFLICT (post_id, user_id) DO NOTHING
`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("insert like: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *LikeRepo) Unlike(ctx context.Context, postID, userID string) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *LikeRepo) Count(ctx context.Context, postID string) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}

	return count, nil
}
