package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kookie-shop/storefront/internal/domain"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return isSQLiteConstraint(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	return isSQLiteConstraint(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, "FOREIGN KEY constraint failed")
}

// isSQLiteConstraint matches the extended result code, falling back to the
// primary code plus message when extended codes are off.
func isSQLiteConstraint(err error, extended int, marker string) bool {
	var liteErr *sqlite.Error
	if !errors.As(err, &liteErr) {
		return false
	}
	if liteErr.Code() == extended {
		return true
	}
	return liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), marker)
}

// ownerPredicate returns the WHERE fragment selecting rows owned by owner,
// bound to placeholder $pos.
func ownerPredicate(owner domain.Identity, pos int) (string, any, error) {
	if err := owner.Validate(); err != nil {
		return "", nil, err
	}
	if owner.IsAuthenticated() {
		return fmt.Sprintf("user_id = $%d", pos), owner.UserID, nil
	}
	return fmt.Sprintf("session_id = $%d", pos), owner.SessionToken, nil
}

func ownerConflictTarget(owner domain.Identity) string {
	if owner.IsAuthenticated() {
		return "(user_id, product_id)"
	}
	return "(session_id, product_id)"
}

type ownerColumns struct {
	userID    any
	sessionID any
}

func columnsFor(owner domain.Identity) ownerColumns {
	if owner.IsAuthenticated() {
		return ownerColumns{userID: owner.UserID, sessionID: nil}
	}
	return ownerColumns{userID: nil, sessionID: owner.SessionToken}
}
