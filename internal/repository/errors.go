// Package repository holds the MySQL-backed stores and the sentinel
// errors shared by every store implementation, including the in-memory
// ones under repository/memory.  Higher layers compare against these
// values with errors.Is to choose an HTTP status or a retry.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate it into a 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write lost to concurrent state: an
// overlapping table allocation, or a reservation whose status moved
// since it was read.  Handlers translate it into a 409.
var ErrConflict = errors.New("conflict")

// ErrAlreadyRecorded is returned by event stores for a record whose
// idempotency key is already stored.  The stored copy is left as is.
var ErrAlreadyRecorded = errors.New("event already recorded")

// ErrEmailExists is returned by profile creation for a taken email.
var ErrEmailExists = errors.New("email already exists")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
