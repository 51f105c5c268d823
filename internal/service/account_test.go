package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdas-dev/accountly/internal/models"
	"github.com/sdas-dev/accountly/internal/store"
)

// --- fakes ---

type fakeUserStore struct {
	users map[uuid.UUID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uuid.UUID]*models.User{}}
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ID] = user
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) UpdateByID(_ context.Context, id uuid.UUID, patch map[string]any) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	for col, val := range patch {
		s, _ := val.(string)
		switch col {
		case "user_name":
			u.UserName = s
		case "email":
			u.Email = s
		case "password_hash":
			u.PasswordHash = s
		case "photo":
			u.Photo = s
		default:
			return nil, fmt.Errorf("unexpected column %q", col)
		}
	}
	u.UpdatedAt = time.Now()
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) DeleteByID(_ context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserStore) List(_ context.Context, offset, limit int) ([]models.User, error) {
	var all []models.User
	for _, u := range f.users {
		all = append(all, *u)
	}
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (f *fakeUserStore) Count(_ context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (fakeHasher) Compare(hash, password string) bool   { return hash == "hashed:"+password }

type fakeIssuer struct{}

func (fakeIssuer) Issue(u *models.User) (string, error) { return "token-" + u.ID.String(), nil }

type fakeCache struct {
	entries map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{entries: map[string][]byte{}} }

func (c *fakeCache) Get(_ context.Context, key string, dest any) (bool, error) {
	b, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (c *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = b
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func newTestService(t *testing.T) (*AccountService, *fakeUserStore, *fakeCache) {
	t.Helper()
	fs := newFakeUserStore()
	fc := newFakeCache()
	return NewAccountService(fs, fc, fakeHasher{}, fakeIssuer{}, nil), fs, fc
}

// --- tests ---

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, fs, _ := newTestService(t)

	saved, err := svc.Register(ctx, RegisterInput{
		UserName: "alice",
		Email:    "a@x.com",
		Password: "secret",
		Photo:    "p.png",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, saved.ID)
	assert.Equal(t, "alice", saved.UserName)
	assert.Equal(t, "p.png", saved.Photo)
	assert.NotEqual(t, "secret", saved.PasswordHash, "raw password must never be persisted")

	_, err = svc.Register(ctx, RegisterInput{UserName: "alice2", Email: "a@x.com", Password: "other"})
	assert.ErrorIs(t, err, ErrUserExists)
	assert.Len(t, fs.users, 1, "duplicate registration must not add a record")
}

func TestLoginRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	saved, err := svc.Register(ctx, RegisterInput{UserName: "alice", Email: "a@x.com", Password: "secret"})
	require.NoError(t, err)

	token, view, err := svc.Login(ctx, "a@x.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "token-"+saved.ID.String(), token)
	assert.Equal(t, saved.ID, view.ID)
	assert.Equal(t, "a@x.com", view.Email)

	_, _, err = svc.Login(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, _, err = svc.Login(ctx, "nobody@x.com", "secret")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	svc, _, fc := newTestService(t)

	saved, err := svc.Register(ctx, RegisterInput{UserName: "alice", Email: "a@x.com", Password: "secret"})
	require.NoError(t, err)

	view, err := svc.Profile(ctx, saved.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "alice", view.UserName)
	assert.Equal(t, "a@x.com", view.Email)

	// The outward projection must not leak the hash.
	b, err := json.Marshal(view)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "hashed:")
	assert.NotContains(t, string(b), "passwordHash")

	// A second read is served from the cache.
	assert.Contains(t, fc.entries, "user:profile:"+saved.ID.String())
	again, err := svc.Profile(ctx, saved.ID.String())
	require.NoError(t, err)
	assert.Equal(t, view.UserName, again.UserName)

	_, err = svc.Profile(ctx, uuid.NewString())
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	_, err = svc.Profile(ctx, "not-a-uuid")
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrUserNotFound)
}

func TestUpdateUserByID(t *testing.T) {
	ctx := context.Background()
	svc, fs, fc := newTestService(t)

	saved, err := svc.Register(ctx, RegisterInput{UserName: "alice", Email: "a@x.com", Password: "secret"})
	require.NoError(t, err)

	// Warm the profile cache so the update has something to invalidate.
	_, err = svc.Profile(ctx, saved.ID.String())
	require.NoError(t, err)

	updated, err := svc.UpdateUserByID(ctx, saved.ID.String(), map[string]any{
		"userName": "alicia",
		"photo":    "new.png",
		"id":       "attacker-chosen", // not patchable
		"isAdmin":  true,              // unknown fields are dropped
	})
	require.NoError(t, err)
	assert.Equal(t, "alicia", updated.UserName)
	assert.Equal(t, "new.png", updated.Photo)
	assert.Equal(t, saved.ID, updated.ID)
	assert.NotContains(t, fc.entries, "user:profile:"+saved.ID.String())

	// The patch is visible in a subsequent profile read.
	view, err := svc.Profile(ctx, saved.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "alicia", view.UserName)

	// The password hash is deliberately patchable.
	_, err = svc.UpdateUserByID(ctx, saved.ID.String(), map[string]any{"passwordHash": "hashed:pwn"})
	require.NoError(t, err)
	assert.Equal(t, "hashed:pwn", fs.users[saved.ID].PasswordHash)

	_, err = svc.UpdateUserByID(ctx, uuid.NewString(), map[string]any{"userName": "x"})
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestDeleteUserByID(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	saved, err := svc.Register(ctx, RegisterInput{UserName: "alice", Email: "a@x.com", Password: "secret"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUserByID(ctx, saved.ID.String()))

	_, err = svc.Profile(ctx, saved.ID.String())
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	_, _, err = svc.Login(ctx, "a@x.com", "secret")
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	err = svc.DeleteUserByID(ctx, saved.ID.String())
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestSetPhoto(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	saved, err := svc.Register(ctx, RegisterInput{UserName: "alice", Email: "a@x.com", Password: "secret"})
	require.NoError(t, err)

	user, err := svc.SetPhoto(ctx, saved.ID.String(), "https://cdn.example.com/avatars/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/avatars/a.png", user.Photo)

	photo, err := svc.Photo(ctx, saved.ID.String())
	require.NoError(t, err)
	assert.Equal(t, user.Photo, photo)
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	for i := 0; i < 3; i++ {
		_, err := svc.Register(ctx, RegisterInput{
			UserName: fmt.Sprintf("user%d", i),
			Email:    fmt.Sprintf("u%d@x.com", i),
			Password: "secret",
		})
		require.NoError(t, err)
	}

	page, err := svc.ListUsers(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Users, 2)
	assert.False(t, page.Cached)

	// Second read comes from the cache.
	again, err := svc.ListUsers(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, page.Total, again.Total)

	// Out-of-range values fall back to defaults.
	page, err = svc.ListUsers(ctx, 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
}

func TestExternalRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, fs, _ := newTestService(t)

	token, err := svc.ExternalRegister(ctx, "Alice G", "alice@gmail.com", "https://lh3.example.com/p.jpg")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = svc.ExternalRegister(ctx, "Alice G", "alice@gmail.com", "")
	assert.ErrorIs(t, err, ErrUserExists)

	token, err = svc.ExternalLogin(ctx, "alice@gmail.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = svc.ExternalLogin(ctx, "nobody@gmail.com")
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	// A password login against a password-less account must fail closed.
	for _, u := range fs.users {
		assert.Empty(t, u.PasswordHash)
	}
	_, _, err = svc.Login(ctx, "alice@gmail.com", "")
	assert.ErrorIs(t, err, ErrBadCredentials)
}
