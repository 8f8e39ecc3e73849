package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ThisIsMahim/Upp-campus/internal/domain/model"
)

var ErrPostNotFound = errors.New("post not found")

type PostRepo struct {
	pool *pgxpool.Pool
}

func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

func (r *PostRepo) Create(ctx context.Context, post model.Post) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	const query = `
INSERT INTO posts (id, user_id, campus_id, content, image_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $6)
`

	if _, err := r.pool.Exec(ctx, query,
		post.ID,
		post.UserID,
		post.CampusID,
		post.Content,
		post.ImageURL,
		post.CreatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}

	return nil
}

func (r *PostRepo) Get(ctx context.Context, id string) (model.Post, error) {
	if r.pool == nil {
		return model.Post{}, fmt.Errorf("postgres pool is nil")
	}

	var p model.Post
	err := r.pool.QueryRow(ctx, `
SELECT id, user_id, campus_id, content, COALESCE(image_url, ''), created_at, updated_at
FROM posts
WHERE id = $1
LIMIT 1
`, id).Scan(&p.ID, &p.UserID, &p.CampusID, &p.Content, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Post{}, ErrPostNotFound
		}
		return model.Post{}, fmt.Errorf("get post: %w", err)
	}

	return p, nil
}

// ListCampusFeed returns the newest posts of one campus together with the
// author and the counters the feed renders. Likes and comments are counted
// in the same query so a page of the feed costs a single round trip.
func (r *PostRepo) ListCampusFeed(ctx context.Context, campusID, viewerID string, limit, offset int) ([]model.FeedPost, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	const query = `
SELECT
	p.id,
	p.user_id,
	p.campus_id,
	p.content,
	COALESCE(p.image_url, ''),
	p.created_at,
	p.updated_at,
	pr.username,
	COALESCE(pr.avatar_url, ''),
	(SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id),
	(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id),
	EXISTS (SELECT 1 FROM post_likes l WHERE l.post_id = p.id AND l.user_id = $2)
FROM posts p
JOIN profiles pr ON pr.user_id = p.user_id
WHERE p.campus_id = $1
ORDER BY p.created_at DESC
LIMIT $3 OFFSET $4
`

	rows, err := r.pool.Query(ctx, query, campusID, viewerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list campus feed: %w", err)
	}
	defer rows.Close()

	var posts []model.FeedPost
	for rows.Next() {
		var p model.FeedPost
		if err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.CampusID,
			&p.Content,
			&p.ImageURL,
			&p.CreatedAt,
			&p.UpdatedAt,
			&p.AuthorUsername,
			&p.AuthorAvatarURL,
			&p.LikeCount,
			&p.CommentCount,
			&p.LikedByViewer,
		); err != nil {
			return nil, fmt.Errorf("scan feed row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feed rows: %w", err)
	}

	return posts, nil
}

func (r *PostRepo) DeleteOwn(ctx context.Context, postID, userID string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	return nil
}
