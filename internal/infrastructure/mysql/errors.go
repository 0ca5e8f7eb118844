package mysql

import (
	"errors"

	driver "github.com/go-sql-driver/mysql"
)

const (
	errLockWaitTimeout = 1205
	errDeadlock        = 1213
)

// IsLockConflict reports whether err is a MySQL deadlock or lock wait
// timeout, the two ways a transaction loses a row-lock race.
func IsLockConflict(err error) bool {
	var mysqlErr *driver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == errDeadlock || mysqlErr.Number == errLockWaitTimeout
	}
	return false
}
