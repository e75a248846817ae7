package application

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-blog-api/internal/domain/apperror"
	"github.com/oksasatya/go-ddd-blog-api/pkg/mailer"
	mailtpl "github.com/oksasatya/go-ddd-blog-api/pkg/mailer/templates"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, " Alice ", "alice@example.com")

	assert.NotZero(t, u.ID)
	assert.Equal(t, "Alice", u.Name)
	assert.True(t, u.IsActive)
	assert.True(t, u.IsVerified)
	assert.NotEqual(t, "Passw0rd1", u.PasswordHash)

	require.Equal(t, 1, f.jobs.count())
	job := f.jobs.jobs[0].(mailer.EmailJob)
	assert.Equal(t, "alice@example.com", job.To)
	assert.Equal(t, mailtpl.Welcome, job.Template)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Alice", "alice@example.com")

	_, err := f.users.Register(context.Background(), RegisterInput{Name: "Alice 2", Email: "alice@example.com", Password: "Passw0rd1"})
	assert.ErrorIs(t, err, apperror.Conflict("Email already registered"))
	assert.Equal(t, 1, f.jobs.count())
}

func TestGetByIDOnlySelf(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "Alice", "alice@example.com")
	bob := f.register(t, "Bob", "bob@example.com")

	u, err := f.users.GetByID(ctx, alice, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.Email, u.Email)

	_, err = f.users.GetByID(ctx, bob, alice.ID)
	assert.Equal(t, apperror.KindAuthorization, apperror.KindOf(err))
}

func TestUpdateProfilePartial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "Alice", "alice@example.com")
	f.register(t, "Bob", "bob@example.com")

	name := "Alice Liddell"
	u, err := f.users.UpdateProfile(ctx, alice, UpdateProfileInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", u.Name)
	assert.Equal(t, "alice@example.com", u.Email)

	taken := "bob@example.com"
	_, err = f.users.UpdateProfile(ctx, alice, UpdateProfileInput{Email: &taken})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "Alice", "alice@example.com")

	err := f.users.ChangePassword(ctx, alice, "wrong", "N3wPassword")
	assert.ErrorIs(t, err, apperror.Authentication("Current password is incorrect"))

	require.NoError(t, f.users.ChangePassword(ctx, alice, "Passw0rd1", "N3wPassword"))
	u, err := f.auth.Authenticate(ctx, "alice@example.com", "N3wPassword")
	require.NoError(t, err)
	assert.NotNil(t, u)
	u, err = f.auth.Authenticate(ctx, "alice@example.com", "Passw0rd1")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestDeleteCascadesAndWithPosts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "Alice", "alice@example.com")
	p := f.draft(t, alice, "First")

	u, posts, err := f.users.WithPosts(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, u.ID)
	require.Len(t, posts, 1)
	assert.False(t, posts[0].IsPublished)

	require.NoError(t, f.users.Delete(ctx, alice))
	_, err = f.store.Posts().FindByID(ctx, p.ID)
	assert.Error(t, err)

	err = f.users.Delete(ctx, alice)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestDeleteUserRemovesPostsFromIndex(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "Alice", "alice@example.com")
	bob := f.register(t, "Bob", "bob@example.com")
	live, err := f.blogs.Create(ctx, alice, CreatePostInput{Title: "Go generics", Content: "type parameters", IsPublished: true})
	require.NoError(t, err)
	draft := f.draft(t, alice, "Draft")
	f.draft(t, bob, "Bob's")

	require.NoError(t, f.users.Delete(ctx, alice))
	assert.ElementsMatch(t, []int64{live.ID, draft.ID}, f.index.removed)
}

func TestRegisterRejectsOverlongPassword(t *testing.T) {
	f := newFixture(t)
	// 25 three-byte runes pass a rune-counted max but are 75 bytes
	pw := "Aa1" + strings.Repeat("€", 25)

	_, err := f.users.Register(context.Background(), RegisterInput{Name: "Alice", Email: "alice@example.com", Password: pw})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Equal(t, 0, f.jobs.count())
}

func TestChangePasswordRejectsOverlongPassword(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice", "alice@example.com")

	err := f.users.ChangePassword(context.Background(), alice, "Passw0rd1", "Aa1"+strings.Repeat("x", 70))
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestNameIsValidatedAfterTrimming(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Register(ctx, RegisterInput{Name: "  a ", Email: "a@example.com", Password: "Passw0rd1"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	alice := f.register(t, "Alice", "alice@example.com")
	spaced := "   b   "
	_, err = f.users.UpdateProfile(ctx, alice, UpdateProfileInput{Name: &spaced})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	u, err := f.store.Users().FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)
}
