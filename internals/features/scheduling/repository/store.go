// Package repository is the GORM/postgres implementation of every store the
// scheduling services depend on.
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	calsvc "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/calendar/service"
	classsvc "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/classes/service"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/schederr"
)

var (
	_ classsvc.Store     = (*Store)(nil)
	_ classsvc.Directory = (*Store)(nil)
	_ calsvc.Directory   = (*Store)(nil)
)

type txKey struct{}

// Store wraps the shared handle. Calls made with a context returned by
// Transaction run on that transaction.
type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) db(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return s.DB.WithContext(ctx)
}

// Transaction runs fn in a database transaction, committing when fn returns
// nil. Nested calls join the outer transaction.
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

/* =========================
   Error mapping
========================= */

const pgUniqueViolation = "23505"

// mapErr translates driver errors into schederr types. entity/id describe
// what was looked up, for NotFoundError.
func mapErr(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return schederr.NotFound(entity, id)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return &schederr.ConcurrentBookingError{Constraint: pgErr.ConstraintName, Err: err}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &schederr.ConcurrentBookingError{Err: err}
	}
	return err
}
