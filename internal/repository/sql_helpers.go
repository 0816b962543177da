package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	memora_errors "memora/pkg/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return errors.Is(err, gorm.ErrForeignKeyViolated)
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03", "57014":
			return true
		}
		return strings.HasPrefix(pgErr.Code, "08")
	}
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}

// ClassifyError maps driver and gorm errors onto the memora sentinels. Errors
// that already carry a sentinel are returned unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{
		memora_errors.ErrNotFound,
		memora_errors.ErrInvalidOperation,
		memora_errors.ErrDepthExceeded,
		memora_errors.ErrTransient,
		memora_errors.ErrConflict,
		memora_errors.ErrInvalidInput,
		memora_errors.ErrForbidden,
		memora_errors.ErrUnauthorized,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return memora_errors.ErrNotFound
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %w", memora_errors.ErrConflict, err)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: %w", memora_errors.ErrNotFound, err)
	case isTransient(err):
		return fmt.Errorf("%w: %w", memora_errors.ErrTransient, err)
	}
	return fmt.Errorf("%w: %w", memora_errors.ErrTransient, err)
}

// WithTx runs fn inside one database transaction and classifies the result.
// Any error returned by fn rolls the transaction back.
func WithTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return errors.New("database not initialized")
	}
	return ClassifyError(db.WithContext(ctx).Transaction(fn))
}

func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
}

func forShare(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: clause.LockingStrengthShare})
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
