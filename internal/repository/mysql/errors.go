package mysql

import (
	"errors"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	mysqlDuplicateEntry     = 1062
	mysqlDeadlock           = 1213
	postgresUniqueViolation = "23505"
	postgresDeadlock        = "40P01"
	postgresSerialization   = "40001"
)

// isDuplicateKey recognises a unique-key violation from any supported dialect.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == postgresUniqueViolation {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isLockConflict recognises a deadlock between two concurrent first votes
// of the same user, which MySQL reports instead of a duplicate key when
// both transactions hold the gap lock of the missing row.
func isLockConflict(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDeadlock {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == postgresDeadlock || pgErr.Code == postgresSerialization) {
		return true
	}
	return false
}
