package database

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/martijn/homedash/internal/core/domain"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	pgUniqueViolation     = "23505"
	mysqlDuplicateEntry   = 1062
	sqlitePrimaryCodeMask = 0xff
)

// uniqueViolation maps a driver-level unique index violation on users to the
// matching conflict. It returns nil for every other error.
func uniqueViolation(err error) *domain.ConflictError {
	var (
		sqliteErr *sqlite.Error
		pgErr     *pgconn.PgError
		mysqlErr  *mysql.MySQLError
		target    string
	)

	switch {
	case errors.As(err, &sqliteErr):
		if sqliteErr.Code()&sqlitePrimaryCodeMask != sqlite3.SQLITE_CONSTRAINT || !strings.Contains(sqliteErr.Error(), "UNIQUE") {
			return nil
		}
		// "UNIQUE constraint failed: users.username"
		target = sqliteErr.Error()
	case errors.As(err, &pgErr):
		if pgErr.Code != pgUniqueViolation {
			return nil
		}
		target = pgErr.ConstraintName
	case errors.As(err, &mysqlErr):
		if mysqlErr.Number != mysqlDuplicateEntry {
			return nil
		}
		// "Duplicate entry 'x' for key 'users.ix_users_email'"; only the key
		// part is trusted, the entry is user input.
		if i := strings.LastIndex(mysqlErr.Message, "for key"); i >= 0 {
			target = mysqlErr.Message[i:]
		}
	default:
		return nil
	}

	switch {
	case strings.Contains(target, "username"):
		return domain.ErrUsernameTaken
	case strings.Contains(target, "email"):
		return domain.ErrEmailTaken
	}
	return nil
}
