package auth

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/comanda-pos/comanda/internal/platform/httpx"
	"github.com/comanda-pos/comanda/internal/profiles"
)

type fakeStore struct {
	byEmail map[string]profiles.Profile
}

func newFakeStore() *fakeStore {
	return &fakeStore{byEmail: make(map[string]profiles.Profile)}
}

func (f *fakeStore) Insert(_ context.Context, profile profiles.Profile) (profiles.Profile, error) {
	if _, ok := f.byEmail[profile.Email]; ok {
		return profiles.Profile{}, fmt.Errorf("%w: email already registered", httpx.ErrDuplicate)
	}
	profile.ID = uuid.NewString()
	f.byEmail[profile.Email] = profile
	return profile, nil
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (profiles.Profile, error) {
	profile, ok := f.byEmail[email]
	if !ok {
		return profiles.Profile{}, fmt.Errorf("%w: profile", httpx.ErrNotFound)
	}
	return profile, nil
}

func TestRegisterHashesPassword(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	profile, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, profile.ID)

	stored := store.byEmail["ana@example.com"]
	require.NotEqual(t, "correct horse", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct horse")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "correct horse"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{Name: "Other", Email: "ana@example.com", Password: "hunter22hunter"})
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestLogin(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	registered, err := svc.Register(context.Background(), RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "correct horse"})
	require.NoError(t, err)

	profile, err := svc.Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "correct horse"})
	require.NoError(t, err)
	require.Equal(t, registered.ID, profile.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "correct horse"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "wrong"})
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewService(newFakeStore())

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}
