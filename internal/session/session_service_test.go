package session

import (
	"context"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testUser() domain.User {
	return domain.User{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		DisplayName:     "ada",
		DateOfBirth:     "1815-12-10",
		Email:           "ada@example.com",
		Password:        "engine",
		PasswordConfirm: "engine",
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := NewSessionService(store, 0, zap.NewNop())

	user, err := svc.Register(ctx, testUser())

	require.NoError(t, err)
	assert.True(t, user.IsLoggedIn)
	assert.True(t, svc.LoggedIn())

	reloaded := NewSessionService(store, 0, zap.NewNop())
	require.NoError(t, reloaded.Load(ctx))
	current, ok := reloaded.Current()
	require.True(t, ok)
	assert.Equal(t, user, current)
}

func TestRegister_Rejects(t *testing.T) {
	svc := NewSessionService(storage.NewMemoryStore(), 0, zap.NewNop())

	mismatch := testUser()
	mismatch.PasswordConfirm = "other"
	_, err := svc.Register(context.Background(), mismatch)
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	noEmail := testUser()
	noEmail.Email = " "
	_, err = svc.Register(context.Background(), noEmail)
	assert.ErrorIs(t, err, ErrMissingEmail)

	_, ok := svc.Current()
	assert.False(t, ok)
}

func TestLoginLogout(t *testing.T) {
	ctx := context.Background()
	svc := NewSessionService(storage.NewMemoryStore(), 0, zap.NewNop())
	_, err := svc.Register(ctx, testUser())
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx))
	assert.False(t, svc.LoggedIn())

	user, err := svc.Login(ctx, "ada@example.com", "engine")
	require.NoError(t, err)
	assert.True(t, user.IsLoggedIn)
	assert.True(t, svc.LoggedIn())
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	svc := NewSessionService(storage.NewMemoryStore(), 0, zap.NewNop())

	_, err := svc.Login(ctx, "ada@example.com", "engine")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Register(ctx, testUser())
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx))

	_, err = svc.Login(ctx, "ada@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, "invalid email or password", err.Error())
	assert.False(t, svc.LoggedIn())
}

func TestLogin_WaitsForDelay(t *testing.T) {
	ctx := context.Background()
	svc := NewSessionService(storage.NewMemoryStore(), 50*time.Millisecond, zap.NewNop())
	_, err := svc.Register(ctx, testUser())
	require.NoError(t, err)

	start := time.Now()
	_, err = svc.Login(ctx, "ada@example.com", "wrong")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestLogin_ContextCancelled(t *testing.T) {
	svc := NewSessionService(storage.NewMemoryStore(), time.Minute, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := svc.Login(ctx, "ada@example.com", "engine")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLogout_NoUser(t *testing.T) {
	svc := NewSessionService(storage.NewMemoryStore(), 0, zap.NewNop())

	assert.ErrorIs(t, svc.Logout(context.Background()), ErrNoUser)
}
