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
	ErrAccountNotFound = errors.New("account not found")
	ErrEmailTaken      = errors.New("email already registered")
)

type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

func (r *AccountRepo) CreateTx(ctx context.Context, tx pgx.Tx, account model.Account) error {
	const query = `
INSERT INTO accounts (id, email, password_hash, created_at)
VALUES ($1, LOWER($2), $3, $4)
`

	if _, err := tx.Exec(ctx, query, account.ID, account.Email, account.PasswordHash, account.CreatedAt.UTC()); err != nil {
		if isUniqueViolation(err, "accounts_email_key") {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	if r.pool == nil {
		return model.Account{}, fmt.Errorf("postgres pool is nil")
	}

	var account model.Account
	err := r.pool.QueryRow(ctx, `
SELECT id, email, password_hash, created_at
FROM accounts
WHERE email = LOWER($1)
LIMIT 1
`, email).Scan(&account.ID, &account.Email, &account.PasswordHash, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Account{}, ErrAccountNotFound
		}
		return model.Account{}, fmt.Errorf("get account by email: %w", err)
	}

	return account, nil
}

func (r *AccountRepo) GetByID(ctx context.Context, id string) (model.Account, error) {
	if r.pool == nil {
		return model.Account{}, fmt.Errorf("postgres pool is nil")
	}

	var account model.Account
	err := r.pool.QueryRow(ctx, `
SELECT id, email, password_hash, created_at
FROM accounts
WHERE id = $1
LIMIT 1
`, id).Scan(&account.ID, &account.Email, &account.PasswordHash, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Account{}, ErrAccountNotFound
		}
		return model.Account{}, fmt.Errorf("get account by id: %w", err)
	}

	return account, nil
}
