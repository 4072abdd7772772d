package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"missionhub/pkg/models"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func newID() string {
	return uuid.NewString()
}

func withTransaction(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return mapDBError(err, "begin_transaction", nil)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return mapDBError(err, "commit_transaction", nil)
	}
	return nil
}

// mapDBError translates pgx errors into domain sentinels. notFound replaces
// models.ErrNotFound when the caller has a more specific one.
func mapDBError(err error, operation string, notFound error) error {
	if notFound == nil {
		notFound = models.ErrNotFound
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", operation, notFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w: %s", operation, models.ErrConflict, pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: %w: invalid reference", operation, models.ErrInvalidInput)
		case "23514": // check_violation
			return fmt.Errorf("%s: %w: %s", operation, models.ErrInvalidInput, pgErr.ConstraintName)
		case "22P02": // invalid_text_representation, e.g. a malformed uuid
			return fmt.Errorf("%s: %w", operation, notFound)
		}
	}

	return fmt.Errorf("database error during %s: %w", operation, err)
}

// nullableJSON keeps empty raw JSON out of JSONB columns
func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func clampPage(limit, offset int) (int, int) {
	limit = models.ClampLimit(limit, 50, 100)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
