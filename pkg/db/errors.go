package db

import (
	"errors"
	"strings"

	pgconnv1 "github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	sqlStateUniqueViolation = "23505"
	sqliteUniqueFailed      = "UNIQUE constraint failed:"
)

// sqliteIndexColumns maps a unique index name to the column list sqlite
// prints in its violation message.
var sqliteIndexColumns = map[string]string{}

// RegisterUniqueIndex records the "table.column" list sqlite reports for
// the named unique index. Call it from package init.
func RegisterUniqueIndex(name, columns string) {
	sqliteIndexColumns[name] = columns
}

// IsUniqueViolation reports whether err is a unique constraint violation.
// A non-empty constraintName narrows the match to that index.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == sqlStateUniqueViolation && constraintMatches(pgxErr.ConstraintName, constraintName)
	}
	var legacyErr *pgconnv1.PgError
	if errors.As(err, &legacyErr) {
		return legacyErr.Code == sqlStateUniqueViolation && constraintMatches(legacyErr.ConstraintName, constraintName)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == sqlStateUniqueViolation && constraintMatches(pqErr.Constraint, constraintName)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// sqlite reports the column list rather than the index name.
	msg := err.Error()
	if _, failed, ok := strings.Cut(msg, sqliteUniqueFailed); ok {
		if constraintName == "" {
			return true
		}
		columns, known := sqliteIndexColumns[constraintName]
		failed, _, _ = strings.Cut(strings.TrimSpace(failed), " (")
		return known && failed == columns
	}
	if !strings.Contains(msg, "duplicate key value") {
		return false
	}
	return constraintName == "" || strings.Contains(msg, constraintName)
}

func constraintMatches(got, want string) bool {
	return want == "" || got == want
}
