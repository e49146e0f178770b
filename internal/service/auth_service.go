package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/kookie-shop/storefront/internal/domain"
	"github.com/kookie-shop/storefront/internal/logger"
	"github.com/kookie-shop/storefront/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type CartMerger interface {
	Merge(ctx context.Context, sessionToken string, userID int64) (int, error)
}

type SessionBinder interface {
	Bind(ctx context.Context, oldToken string, userID int64) (string, error)
	Destroy(ctx context.Context, token string) error
}

type AuthService struct {
	users      repository.UserRepository
	merger     CartMerger
	sessions   SessionBinder
	log        *logger.Logger
	bcryptCost int
}

func NewAuthService(users repository.UserRepository, merger CartMerger, sessions SessionBinder, log *logger.Logger) *AuthService {
	return &AuthService{
		users:      users,
		merger:     merger,
		sessions:   sessions,
		log:        log,
		bcryptCost: bcrypt.DefaultCost,
	}
}

type LoginResult struct {
	User        *domain.User
	Token       string
	MergedLines int
}

func (s *AuthService) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	reg, err := reg.Normalize()
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, reg.Name, reg.Email, string(hash))
	if err != nil {
		return nil, err
	}
	s.log.FromContext(ctx).Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies the credentials, folds the current anonymous cart into the
// user's cart and only then binds a fresh session to the user. If the merge
// fails the login fails and the caller stays anonymous.
func (s *AuthService) Login(ctx context.Context, current domain.Identity, token, email, password string) (*LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	result := &LoginResult{User: user}
	if !current.IsAuthenticated() && current.SessionToken != "" {
		merged, err := s.merger.Merge(ctx, current.SessionToken, user.ID)
		if err != nil {
			return nil, err
		}
		result.MergedLines = merged
	}

	newToken, err := s.sessions.Bind(ctx, token, user.ID)
	if err != nil {
		return nil, err
	}
	result.Token = newToken

	s.log.FromContext(ctx).Info("user logged in", "user_id", user.ID, "merged_lines", result.MergedLines)
	return result, nil
}

// CurrentUser loads the user bound to the session. A session whose user no
// longer exists is treated as logged out.
func (s *AuthService) CurrentUser(ctx context.Context, current domain.Identity) (*domain.User, error) {
	if !current.IsAuthenticated() {
		return nil, domain.ErrUnauthenticated
	}

	user, err := s.users.GetUserByID(ctx, current.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}
