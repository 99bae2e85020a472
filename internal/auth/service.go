// Package auth handles registration, login and session issuance.
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/comanda-pos/comanda/internal/platform/httpx"
	"github.com/comanda-pos/comanda/internal/profiles"
)

// ProfileStore is the slice of the profile repository auth needs.
type ProfileStore interface {
	Insert(ctx context.Context, profile profiles.Profile) (profiles.Profile, error)
	GetByEmail(ctx context.Context, email string) (profiles.Profile, error)
}

// Service authenticates profiles with bcrypt password hashes.
type Service struct {
	store ProfileStore
}

// NewService builds Service.
func NewService(store ProfileStore) *Service {
	return &Service{store: store}
}

// RegisterRequest creates an account.
type RegisterRequest struct {
	Name     string  `json:"name" validate:"required,max=120"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

// LoginRequest authenticates an account.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register creates a profile with a bcrypt password hash. Duplicate emails
// surface as a conflict.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (profiles.Profile, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return profiles.Profile{}, fmt.Errorf("auth: hash password: %w", err)
	}
	return s.store.Insert(ctx, profiles.Profile{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Phone:        req.Phone,
	})
}

// Login verifies credentials and returns the profile. Wrong email and wrong
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (profiles.Profile, error) {
	profile, err := s.store.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return profiles.Profile{}, fmt.Errorf("%w: invalid credentials", httpx.ErrUnauthorized)
		}
		return profiles.Profile{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		return profiles.Profile{}, fmt.Errorf("%w: invalid credentials", httpx.ErrUnauthorized)
	}
	return profile, nil
}
