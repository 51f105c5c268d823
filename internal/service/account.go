// Package service implements the account business logic: registration, login,
// profile retrieval, and administrative update/delete/list of user records.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/sdas-dev/accountly/internal/models"
	"github.com/sdas-dev/accountly/internal/store"
)

var (
	ErrUserExists     = errors.New("user already exists")
	ErrBadCredentials = errors.New("incorrect password")
)

const (
	profileCacheTTL = 5 * time.Minute
	userListTTL     = 60 * time.Second
)

// PasswordHasher derives and verifies one-way password hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// TokenIssuer signs session tokens for a user.
type TokenIssuer interface {
	Issue(user *models.User) (string, error)
}

// AccountService orchestrates the user store, the password hasher, and the
// token issuer. It holds no mutable state of its own.
type AccountService struct {
	store  store.UserStore
	cache  store.Cache
	hasher PasswordHasher
	issuer TokenIssuer
	log    logrus.FieldLogger
}

func NewAccountService(s store.UserStore, cache store.Cache, hasher PasswordHasher, issuer TokenIssuer, log logrus.FieldLogger) *AccountService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AccountService{store: s, cache: cache, hasher: hasher, issuer: issuer, log: log}
}

type RegisterInput struct {
	UserName string
	Email    string
	Password string
	Photo    string
}

// Register creates a new account. The raw password is hashed and discarded;
// a duplicate email yields ErrUserExists.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	_, err := s.store.FindByEmail(ctx, in.Email)
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		UserName:     in.UserName,
		Email:        in.Email,
		PasswordHash: hash,
		Photo:        in.Photo,
	}
	saved, err := s.store.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return saved, nil
}

// Login verifies the credentials and returns a signed session token plus the
// outward user view. A missing user yields store.ErrUserNotFound, a wrong
// password ErrBadCredentials.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, models.UserView, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return "", models.UserView{}, store.ErrUserNotFound
		}
		return "", models.UserView{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		return "", models.UserView{}, ErrBadCredentials
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		return "", models.UserView{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, user.View(), nil
}

// Profile returns the caller's profile view, read through the cache when one
// is configured.
func (s *AccountService) Profile(ctx context.Context, userID string) (models.ProfileView, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		// The id comes out of a token this service minted, so a malformed
		// one is an internal fault, not a missing user.
		return models.ProfileView{}, fmt.Errorf("invalid user id: %w", err)
	}

	key := profileCacheKey(id)
	if s.cache != nil {
		var cached models.ProfileView
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.log.WithError(err).Warn("profile cache read failed")
		} else if found {
			return cached, nil
		}
	}

	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return models.ProfileView{}, err
	}

	view := user.ProfileView()
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, view, profileCacheTTL); err != nil {
			s.log.WithError(err).Warn("profile cache write failed")
		}
	}
	return view, nil
}

// patchColumns maps the patchable JSON field names to store columns. Fields
// outside this set are silently dropped, the way a schema-bound document
// update drops them. The password hash is deliberately patchable.
var patchColumns = map[string]string{
	"userName":     "user_name",
	"email":        "email",
	"passwordHash": "password_hash",
	"photo":        "photo",
}

// UpdateUserByID merges the caller-supplied patch onto the identified user and
// returns the post-update record.
func (s *AccountService) UpdateUserByID(ctx context.Context, userID string, patch map[string]any) (*models.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	columns := make(map[string]any, len(patch))
	for field, value := range patch {
		if col, ok := patchColumns[field]; ok {
			columns[col] = value
		}
	}

	user, err := s.store.UpdateByID(ctx, id, columns)
	if err != nil {
		return nil, err
	}
	s.invalidateProfile(ctx, id)
	return user, nil
}

// DeleteUserByID removes the identified user.
func (s *AccountService) DeleteUserByID(ctx context.Context, userID string) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.invalidateProfile(ctx, id)
	return nil
}

// SetPhoto stores the avatar location on the user record.
func (s *AccountService) SetPhoto(ctx context.Context, userID, photo string) (*models.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	user, err := s.store.UpdateByID(ctx, id, map[string]any{"photo": photo})
	if err != nil {
		return nil, err
	}
	s.invalidateProfile(ctx, id)
	return user, nil
}

// Photo returns the stored avatar location for the caller.
func (s *AccountService) Photo(ctx context.Context, userID string) (string, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return "", fmt.Errorf("invalid user id: %w", err)
	}
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return user.Photo, nil
}

// UserPage is one page of the administrative user listing.
type UserPage struct {
	Users      []models.UserView `json:"users"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	Total      int64             `json:"total"`
	TotalPages int               `json:"total_pages"`
	Cached     bool              `json:"cached"`
}

// ListUsers returns a page of user views for the admin listing, cached for a
// short interval.
func (s *AccountService) ListUsers(ctx context.Context, page, pageSize int) (UserPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	key := fmt.Sprintf("admin:users:page=%d:size=%d", page, pageSize)
	if s.cache != nil {
		var cached UserPage
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.log.WithError(err).Warn("user list cache read failed")
		} else if found {
			cached.Cached = true
			return cached, nil
		}
	}

	var (
		users []models.User
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.store.List(gctx, (page-1)*pageSize, pageSize)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.store.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return UserPage{}, fmt.Errorf("failed to list users: %w", err)
	}

	views := make([]models.UserView, len(users))
	for i := range users {
		views[i] = users[i].View()
	}
	result := UserPage{
		Users:      views,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: (int(total) + pageSize - 1) / pageSize,
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result, userListTTL); err != nil {
			s.log.WithError(err).Warn("user list cache write failed")
		}
	}
	return result, nil
}

func (s *AccountService) invalidateProfile(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, profileCacheKey(id)); err != nil {
		s.log.WithError(err).Warn("profile cache invalidation failed")
	}
}

func profileCacheKey(id uuid.UUID) string {
	return "user:profile:" + id.String()
}
