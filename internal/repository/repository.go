package repository

import (
	"context"
	"database/sql"
	"strings"
)

// DBTX is an interface abstracting *sqlx.DB and *sqlx.Tx for repository use.
type DBTX interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func boolToNumber(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation reports ORA-00001. Two concurrent MERGE statements can
// both take the insert branch for a missing row; the loser sees this error.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "ORA-00001")
}
