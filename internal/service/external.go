package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sdas-dev/accountly/internal/models"
	"github.com/sdas-dev/accountly/internal/store"
)

// ExternalLogin issues a session token for an account whose email was already
// verified by an external identity provider.
func (s *AccountService) ExternalLogin(ctx context.Context, email string) (string, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return "", store.ErrUserNotFound
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	token, err := s.issuer.Issue(user)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// ExternalRegister creates a password-less account for an externally verified
// identity and issues a session token. An empty password hash can never match
// a password login attempt.
func (s *AccountService) ExternalRegister(ctx context.Context, name, email, photo string) (string, error) {
	_, err := s.store.FindByEmail(ctx, email)
	if err == nil {
		return "", ErrUserExists
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	user, err := s.store.Create(ctx, &models.User{
		UserName: name,
		Email:    email,
		Photo:    photo,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}
