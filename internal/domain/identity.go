package domain

import (
	"fmt"
	"strings"
)

type IdentityKind int

const (
	IdentityAnonymous IdentityKind = iota + 1
	IdentityAuthenticated
)

// Identity is the owner of a cart or an order: either a logged in user or an
// anonymous browser session, never both.
type Identity struct {
	Kind         IdentityKind
	UserID       int64
	SessionToken string
}

func Anonymous(token string) Identity {
	return Identity{Kind: IdentityAnonymous, SessionToken: token}
}

func Authenticated(userID int64) Identity {
	return Identity{Kind: IdentityAuthenticated, UserID: userID}
}

func (i Identity) IsAuthenticated() bool {
	return i.Kind == IdentityAuthenticated
}

func (i Identity) Validate() error {
	switch i.Kind {
	case IdentityAuthenticated:
		if i.UserID <= 0 || i.SessionToken != "" {
			return fmt.Errorf("%w: authenticated identity needs a positive user id only", ErrInvalidInput)
		}
	case IdentityAnonymous:
		if strings.TrimSpace(i.SessionToken) == "" || i.UserID != 0 {
			return fmt.Errorf("%w: anonymous identity needs a session token only", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown identity kind %d", ErrInvalidInput, i.Kind)
	}
	return nil
}

// String representation (for logging). Session tokens are never printed.
func (i Identity) String() string {
	if i.IsAuthenticated() {
		return fmt.Sprintf("user:%d", i.UserID)
	}
	return "guest"
}
