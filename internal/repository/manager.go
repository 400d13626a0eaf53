package repository

import (
	"context"
	"database/sql"

	"finanzas-be/internal/database"
)

// Repositories bundles every repository bound to the same handle, either
// the pool or one transaction.
type Repositories struct {
	Users      UserRepository
	Categories CategoryRepository
	Movements  MovementRepository
}

// New binds all repositories to db.
func New(db database.DBTX) *Repositories {
	return &Repositories{
		Users:      NewUserRepository(db),
		Categories: NewCategoryRepository(db),
		Movements:  NewMovementRepository(db),
	}
}

// TxRunner runs fn with repositories bound to a single transaction.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos *Repositories) error) error
}

type sqlTxRunner struct {
	db *sql.DB
}

// NewTxRunner creates a TxRunner over db.
func NewTxRunner(db *sql.DB) TxRunner {
	return &sqlTxRunner{db: db}
}

func (r *sqlTxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context, repos *Repositories) error) error {
	return database.WithTx(ctx, r.db, func(ctx context.Context, tx database.DBTX) error {
		return fn(ctx, New(tx))
	})
}
