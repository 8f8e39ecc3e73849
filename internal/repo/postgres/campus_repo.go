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
	ErrCampusNotFound  = errors.New("campus not found")
	ErrCampusNameTaken = errors.New("campus name already exists")
)

type CampusRepo struct {
	pool *pgxpool.Pool
}

func NewCampusRepo(pool *pgxpool.Pool) *CampusRepo {
	return &CampusRepo{pool: pool}
}

func (r *CampusRepo) Create(ctx context.Context, campus model.Campus) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	const query = `
INSERT INTO campuses (id, name, short_name, description, created_by, created_at)
VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6)
`

	if _, err := r.pool.Exec(ctx, query,
		campus.ID,
		campus.Name,
		campus.ShortName,
		campus.Description,
		campus.CreatedBy,
		campus.CreatedAt.UTC(),
	); err != nil {
		if isUniqueViolation(err, "campuses_name_key") {
			return ErrCampusNameTaken
		}
		return fmt.Errorf("insert campus: %w", err)
	}

	return nil
}

func (r *CampusRepo) Get(ctx context.Context, id string) (model.Campus, error) {
	if r.pool == nil {
		return model.Campus{}, fmt.Errorf("postgres pool is nil")
	}

	var c model.Campus
	err := r.pool.QueryRow(ctx, `
SELECT id, name, COALESCE(short_name, ''), COALESCE(description, ''), COALESCE(created_by::text, ''), created_at
FROM campuses
WHERE id = $1
LIMIT 1
`, id).Scan(&c.ID, &c.Name, &c.ShortName, &c.Description, &c.CreatedBy, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Campus{}, ErrCampusNotFound
		}
		return model.Campus{}, fmt.Errorf("get campus: %w", err)
	}

	return c, nil
}

func (r *CampusRepo) List(ctx context.Context) ([]model.Campus, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, name, COALESCE(short_name, ''), COALESCE(description, ''), COALESCE(created_by::text, ''), created_at
FROM campuses
ORDER BY name
`)
	if err != nil {
		return nil, fmt.Errorf("list campuses: %w", err)
	}
	defer rows.Close()

	var campuses []model.Campus
	for rows.Next() {
		var c model.Campus
		if err := rows.Scan(&c.ID, &c.Name, &c.ShortName, &c.Description, &c.CreatedBy, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan campus row: %w", err)
		}
		campuses = append(campuses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campus rows: %w", err)
	}

	return campuses, nil
}
