package store

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/HuNTer8272/surplus2share-project/internal/apperror"
)

const pgUniqueViolation = "23505"

// isUniqueViolation recognises duplicate-key failures from every driver the
// service runs against: translated GORM errors, pgx, lib/pq and SQLite.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Name() == "unique_violation"
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

// translate turns driver errors into apperror kinds. notFound is used as the
// message when the row is missing.
func translate(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.NotFound(notFound)
	case isUniqueViolation(err):
		return &apperror.Error{Kind: apperror.KindConflict, Message: "record already exists", Err: err}
	default:
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return err
		}
		return apperror.Internal("database error", err)
	}
}
