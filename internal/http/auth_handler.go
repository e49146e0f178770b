package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/kookie-shop/storefront/internal/domain"
	"github.com/kookie-shop/storefront/internal/logger"
	"github.com/kookie-shop/storefront/internal/service"
)

type AuthService interface {
	Register(ctx context.Context, reg domain.Registration) (*domain.User, error)
	Login(ctx context.Context, current domain.Identity, token, email, password string) (*service.LoginResult, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, current domain.Identity) (*domain.User, error)
}

type AuthHandler struct {
	auth    AuthService
	cookie  CookieConfig
	timeout time.Duration
	log     *logger.Logger
}

func NewAuthHandler(auth AuthService, cookie CookieConfig, timeout time.Duration, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		cookie:  cookie,
		timeout: timeout,
		log:     log,
	}
}

type RegisterRequestDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AuthResponseDTO struct {
	Message     string  `json:"message"`
	User        UserDTO `json:"user"`
	MergedLines int     `json:"merged_lines,omitempty"`
}

type AuthCheckDTO struct {
	LoggedIn bool  `json:"logged_in"`
	UserID   int64 `json:"user_id,omitempty"`
}

// POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req RegisterRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.auth.Register(ctx, domain.Registration{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, AuthResponseDTO{
		Message: "Registration successful",
		User:    UserDTO{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LoginRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.auth.Login(ctx, identityFromContext(r.Context()), sessionTokenFromContext(r.Context()), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	h.cookie.set(w, res.Token)
	respondJSON(w, http.StatusOK, AuthResponseDTO{
		Message:     "Login successful",
		User:        UserDTO{ID: res.User.ID, Name: res.User.Name, Email: res.User.Email},
		MergedLines: res.MergedLines,
	})
}

// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.auth.Logout(ctx, sessionTokenFromContext(r.Context())); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	h.cookie.clear(w)
	respondJSON(w, http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

// GET /api/v1/auth/check
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	respondJSON(w, http.StatusOK, AuthCheckDTO{
		LoggedIn: identity.IsAuthenticated(),
		UserID:   identity.UserID,
	})
}

// GET /api/v1/auth/user
func (h *AuthHandler) User(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user, err := h.auth.CurrentUser(ctx, identityFromContext(r.Context()))
	if errors.Is(err, domain.ErrUnauthenticated) {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "Not logged in")
		return
	}
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, UserDTO{ID: user.ID, Name: user.Name, Email: user.Email})
}
