package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kookie-shop/storefront/internal/domain"
)

// Resolver maps a session cookie value to the acting identity.
type Resolver struct {
	store    Store
	newToken func() string
	now      func() time.Time
}

func NewResolver(store Store) *Resolver {
	return &Resolver{
		store:    store,
		newToken: uuid.NewString,
		now:      time.Now,
	}
}

// Resolve returns the identity behind token together with the token the
// client should hold from now on. An empty, unknown or expired token gets a
// fresh anonymous session; the caller must send the new token back.
func (r *Resolver) Resolve(ctx context.Context, token string) (domain.Identity, string, error) {
	if token != "" {
		s, err := r.store.Get(ctx, token)
		switch {
		case err == nil:
			if s.UserID > 0 {
				return domain.Authenticated(s.UserID), token, nil
			}
			return domain.Anonymous(token), token, nil
		case !errors.Is(err, ErrSessionNotFound):
			return domain.Identity{}, "", fmt.Errorf("resolve session: %w", err)
		}
	}

	fresh, err := r.issue(ctx, 0)
	if err != nil {
		return domain.Identity{}, "", err
	}
	return domain.Anonymous(fresh), fresh, nil
}

// Bind replaces the session behind oldToken with a new session owned by
// userID and returns the new token. The old token stops resolving.
func (r *Resolver) Bind(ctx context.Context, oldToken string, userID int64) (string, error) {
	if userID <= 0 {
		return "", fmt.Errorf("%w: user id must be positive", domain.ErrInvalidInput)
	}

	fresh, err := r.issue(ctx, userID)
	if err != nil {
		return "", err
	}
	if oldToken != "" {
		if err := r.store.Delete(ctx, oldToken); err != nil {
			return "", fmt.Errorf("drop old session: %w", err)
		}
	}
	return fresh, nil
}

func (r *Resolver) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := r.store.Delete(ctx, token); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

func (r *Resolver) issue(ctx context.Context, userID int64) (string, error) {
	token := r.newToken()
	if err := r.store.Set(ctx, token, &Session{UserID: userID, CreatedAt: r.now().UTC()}); err != nil {
		return "", fmt.Errorf("issue session: %w", err)
	}
	return token, nil
}
