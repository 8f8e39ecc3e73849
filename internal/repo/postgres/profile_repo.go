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
	ErrProfileNotFound = errors.New("profile not found")
	ErrUsernameTaken   = errors.New("username already taken")
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) CreateTx(ctx context.Context, tx pgx.Tx, profile model.Profile) error {
	const query = `
INSERT INTO profiles (user_id, username, email, bio, avatar_url, campus_id, created_at, updated_at)
VALUES ($1, $2, LOWER($3), $4, $5, NULLIF($6, ''), NOW(), NOW())
`

	if _, err := tx.Exec(ctx, query,
		profile.UserID,
		profile.Username,
		profile.Email,
		profile.Bio,
		profile.AvatarURL,
		profile.CampusID,
	); err != nil {
		if isUniqueViolation(err, "profiles_username_key") {
			return ErrUsernameTaken
		}
		return fmt.Errorf("insert profile: %w", err)
	}

	return nil
}

// Ensure inserts a minimal profile row for the user if one does not exist
// yet. Concurrent callers may race; the conflict is treated as success.
func (r *ProfileRepo) Ensure(ctx context.Context, profile model.Profile) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	const query = `
INSERT INTO profiles (user_id, username, email, bio, avatar_url, campus_id, created_at, updated_at)
VALUES ($1, $2, LOWER($3), $4, $5, NULLIF($6, ''), NOW(), NOW())
ON CONFLICT (user_id) DO NOTHING
`

	if _, err := r.pool.Exec(ctx, query,
		profile.UserID,
		profile.Username,
		profile.Email,
		profile.Bio,
		profile.AvatarURL,
		profile.CampusID,
	); err != nil {
		if isUniqueViolation(err, "profiles_username_key") {
			return ErrUsernameTaken
		}
		return fmt.Errorf("ensure profile: %w", err)
	}

	return nil
}

func (r *ProfileRepo) Get(ctx context.Context, userID string) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}

	return r.getBy(ctx, "user_id = $1", userID)
}

func (r *ProfileRepo) GetByUsername(ctx context.Context, username string) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}

	return r.getBy(ctx, "username = $1", username)
}

func (r *ProfileRepo) getBy(ctx context.Context, where string, arg any) (model.Profile, error) {
	query := `
SELECT user_id, username, email, COALESCE(bio, ''), COALESCE(avatar_url, ''), COALESCE(campus_id::text, ''), created_at, updated_at
FROM profiles
WHERE ` + where + `
LIMIT 1
`

	var p model.Profile
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&p.UserID,
		&p.Username,
		&p.Email,
		&p.Bio,
		&p.AvatarURL,
		&p.CampusID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	return p, nil
}

type ProfileUpdate struct {
	Bio       *string
	AvatarURL *string
	CampusID  *string
}

func (r *ProfileRepo) Update(ctx context.Context, userID string, update ProfileUpdate) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}

	const query = `
UPDATE profiles SET
	bio = COALESCE($2, bio),
	avatar_url = COALESCE($3, avatar_url),
	campus_id = COALESCE(NULLIF($4, '')::uuid, campus_id),
	updated_at = NOW()
WHERE user_id = $1
RETURNING user_id, username, email, COALESCE(bio, ''), COALESCE(avatar_url, ''), COALESCE(campus_id::text, ''), created_at, updated_at
`

	var p model.Profile
	err := r.pool.QueryRow(ctx, query, userID, update.Bio, update.AvatarURL, update.CampusID).Scan(
		&p.UserID,
		&p.Username,
		&p.Email,
		&p.Bio,
		&p.AvatarURL,
		&p.CampusID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("update profile: %w", err)
	}

	return p, nil
}

func (r *ProfileRepo) SetAvatar(ctx context.Context, userID, avatarURL string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE profiles SET avatar_url = $2, updated_at = NOW()
WHERE user_id = $1
`, userID, avatarURL)
	if err != nil {
		return fmt.Errorf("set profile avatar: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}

	return nil
}
