// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers to tell failure
// scenarios apart without inspecting driver errors.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a row does not exist or is owned by another
// user. Ownership-scoped queries never reveal which of the two happened.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique key.
var ErrDuplicate = errors.New("duplicate")

// ErrStaleSession is returned when a rotation did not match the stored
// refresh hash, either because the presented token was superseded or
// because a concurrent refresh won.
var ErrStaleSession = errors.New("stale session")

// mysqlDuplicateEntry is the server error number for ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// likePattern escapes LIKE wildcards in user input and wraps it for a
// substring match.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
