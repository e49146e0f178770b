package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type Registration struct {
	Name     string
	Email    string
	Password string
}

const minPasswordLen = 6

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r Registration) Normalize() (Registration, error) {
	out := Registration{
		Name:     strings.TrimSpace(r.Name),
		Email:    NormalizeEmail(r.Email),
		Password: r.Password,
	}
	if out.Name == "" || out.Email == "" || out.Password == "" {
		return Registration{}, fmt.Errorf("%w: all fields are required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(out.Email); err != nil {
		return Registration{}, fmt.Errorf("%w: invalid email format", ErrInvalidInput)
	}
	if len(out.Password) < minPasswordLen {
		return Registration{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLen)
	}
	if n := utf8.RuneCountInString(out.Name); n < 2 || n > 100 {
		return Registration{}, fmt.Errorf("%w: name must be between 2 and 100 characters", ErrInvalidInput)
	}
	return out, nil
}
