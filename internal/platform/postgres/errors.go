package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/taskdesk/internal/store"
)

// SQLSTATE codes the stores translate.
const (
	notNullViolationCode    = "23502"
	foreignKeyViolationCode = "23503"
	uniqueViolationCode     = "23505"
	checkViolationCode      = "23514"
)

// constraintErrors maps integrity-violation SQLSTATEs to store sentinels.
var constraintErrors = map[string]error{
	notNullViolationCode:    store.ErrInvalidEntity,
	foreignKeyViolationCode: store.ErrInvalidEntity,
	uniqueViolationCode:     store.ErrDuplicate,
	checkViolationCode:      store.ErrInvalidEntity,
}

// MapError translates a driver error into a store sentinel, keeping the
// original error text in the chain for logging.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	sentinel, ok := constraintErrors[pgErr.Code]
	if !ok {
		return err
	}
	if target := constraintTarget(pgErr); target != "" {
		return fmt.Errorf("%w: %s: %v", sentinel, target, err)
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}

// constraintTarget names the constraint or column a violation reports.
func constraintTarget(pgErr *pgconn.PgError) string {
	if pgErr.ConstraintName != "" {
		return pgErr.ConstraintName
	}
	return pgErr.ColumnName
}

// storeError wraps a failed write on entity with the operation that failed.
func storeError(entity, op string, err error) error {
	return store.NewStoreError(entity, op, "statement failed", MapError(err))
}

// IsForeignKeyViolation reports whether err is a PostgreSQL foreign key failure.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode
}

// CheckRowsAffected returns notFound when result touched no rows.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return fmt.Errorf("nil result provided to CheckRowsAffected")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
