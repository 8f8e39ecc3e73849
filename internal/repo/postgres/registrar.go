package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ThisIsMahim/Upp-campus/internal/domain/model"
)

// Registrar writes an account together with its profile in one transaction.
type Registrar struct {
	pool     *pgxpool.Pool
	accounts *AccountRepo
	profiles *ProfileRepo
}

func NewRegistrar(pool *pgxpool.Pool, accounts *AccountRepo, profiles *ProfileRepo) *Registrar {
	return &Registrar{
		pool:     pool,
		accounts: accounts,
		profiles: profiles,
	}
}

func (r *Registrar) CreateAccountAndProfile(ctx context.Context, account model.Account, profile model.Profile) error {
	return WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if err := r.accounts.CreateTx(ctx, tx, account); err != nil {
			return err
		}
		return r.profiles.CreateTx(ctx, tx, profile)
	})
}
