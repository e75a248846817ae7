package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-blog-api/internal/domain/apperror"
	"github.com/oksasatya/go-ddd-blog-api/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-blog-api/internal/domain/repository"
	"github.com/oksasatya/go-ddd-blog-api/pkg/helpers"
)

// brokenUsers fails every lookup with a storage error.
type brokenUsers struct{ repo.UserRepository }

func (brokenUsers) FindByEmail(context.Context, string) (*entity.User, error) { return nil, errStorage }

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "Alice", "alice@example.com")

	u, err := f.auth.Authenticate(ctx, "alice@example.com", "Passw0rd1")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, alice.ID, u.ID)

	for name, creds := range map[string][2]string{
		"wrong password": {"alice@example.com", "wrong"},
		"unknown email":  {"nobody@example.com", "Passw0rd1"},
		"email case":     {"ALICE@example.com", "Passw0rd1"},
	} {
		u, err := f.auth.Authenticate(ctx, creds[0], creds[1])
		assert.NoError(t, err, name)
		assert.Nil(t, u, name)
	}

	_, err = f.users.Deactivate(ctx, alice)
	require.NoError(t, err)
	u, err = f.auth.Authenticate(ctx, "alice@example.com", "Passw0rd1")
	assert.NoError(t, err)
	assert.Nil(t, u)
}

func TestAuthenticateStorageFailureIsInternal(t *testing.T) {
	auth, err := NewAuthService(brokenUsers{}, helpers.NewBcryptHasher(4), nil, nil)
	require.NoError(t, err)

	u, err := auth.Authenticate(context.Background(), "alice@example.com", "x")
	assert.Nil(t, u)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	assert.ErrorIs(t, err, errStorage)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "Alice", "alice@example.com")

	res, err := f.auth.Login(ctx, "alice@example.com", "Passw0rd1")
	require.NoError(t, err)
	assert.Equal(t, "bearer", res.TokenType)
	assert.Equal(t, 30, res.ExpiresIn)
	assert.Equal(t, f.now.Add(30*time.Minute), res.ExpiresAt)
	assert.Equal(t, alice.Summary(), res.User)

	vt, ok := f.jwt.Verify(res.AccessToken)
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", vt.Subject)
	id, ok := vt.UserID()
	require.True(t, ok)
	assert.Equal(t, alice.ID, id)
}

func TestLoginFailureIsUniform(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Alice", "alice@example.com")

	_, errWrong := f.auth.Login(context.Background(), "alice@example.com", "nope")
	_, errUnknown := f.auth.Login(context.Background(), "eve@example.com", "nope")
	for _, err := range []error{errWrong, errUnknown} {
		assert.ErrorIs(t, err, apperror.Authentication("Invalid email or password"))
	}
}

func TestLoginTokenCreationFailure(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Alice", "alice@example.com")
	f.jwt.Secret = nil

	_, err := f.auth.Login(context.Background(), "alice@example.com", "Passw0rd1")
	assert.Equal(t, apperror.KindTokenCreation, apperror.KindOf(err))
}

func TestSessionResolver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "Alice", "alice@example.com")
	res := NewSessionResolver(f.store.Users(), f.jwt, nil)

	token, _, err := f.jwt.IssueAccessToken(alice.Email, map[string]any{"user_id": alice.ID})
	require.NoError(t, err)

	u, err := res.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, u.ID)

	_, err = res.Resolve(ctx, "garbage")
	assert.ErrorIs(t, err, apperror.Authentication("Invalid or expired token"))

	f.now = f.now.Add(31 * time.Minute)
	_, err = res.Resolve(ctx, token)
	assert.ErrorIs(t, err, apperror.Authentication("Invalid or expired token"))
	f.now = f.now.Add(-31 * time.Minute)

	ghost, _, err := f.jwt.IssueAccessToken("ghost@example.com", map[string]any{"user_id": int64(99)})
	require.NoError(t, err)
	_, err = res.Resolve(ctx, ghost)
	assert.ErrorIs(t, err, apperror.Authentication("User not found"))

	_, err = f.users.Deactivate(ctx, alice)
	require.NoError(t, err)
	_, err = res.Resolve(ctx, token)
	assert.ErrorIs(t, err, apperror.Authentication("User account is deactivated"))
}

func TestSessionResolverRequiresMatchingUserID(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice", "alice@example.com")
	res := NewSessionResolver(f.store.Users(), f.jwt, nil)

	noID, _, err := f.jwt.IssueAccessToken(alice.Email, nil)
	require.NoError(t, err)
	_, err = res.Resolve(context.Background(), noID)
	assert.ErrorIs(t, err, apperror.Authentication("User not found"))

	otherID, _, err := f.jwt.IssueAccessToken(alice.Email, map[string]any{"user_id": alice.ID + 1})
	require.NoError(t, err)
	_, err = res.Resolve(context.Background(), otherID)
	assert.ErrorIs(t, err, apperror.Authentication("User not found"))
}

func TestStaleTokenAfterDeleteAndReRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "Alice", "alice@example.com")
	login, err := f.auth.Login(ctx, "alice@example.com", "Passw0rd1")
	require.NoError(t, err)
	res := NewSessionResolver(f.store.Users(), f.jwt, nil)

	require.NoError(t, f.users.Delete(ctx, alice))
	mallory := f.register(t, "Mallory", "alice@example.com")
	require.NotEqual(t, alice.ID, mallory.ID)

	u, err := res.Resolve(ctx, login.AccessToken)
	assert.Nil(t, u)
	assert.ErrorIs(t, err, apperror.Authentication("User not found"))
}

func TestStaleTokenAfterEmailTakeover(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "Alice", "alice@example.com")
	login, err := f.auth.Login(ctx, "alice@example.com", "Passw0rd1")
	require.NoError(t, err)
	res := NewSessionResolver(f.store.Users(), f.jwt, nil)

	moved := "alice@elsewhere.example"
	_, err = f.users.UpdateProfile(ctx, alice, UpdateProfileInput{Email: &moved})
	require.NoError(t, err)
	f.register(t, "Mallory", "alice@example.com")

	u, err := res.Resolve(ctx, login.AccessToken)
	assert.Nil(t, u)
	assert.ErrorIs(t, err, apperror.Authentication("User not found"))
}
