package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var fastArgon2 = Argon2Params{Memory: 1024, Time: 1, Threads: 1, SaltLen: 16, KeyLen: 32}

func hashers() map[string]PasswordHasher {
	return map[string]PasswordHasher{
		"bcrypt":   NewBcryptHasher(bcrypt.MinCost),
		"argon2id": NewArgon2Hasher(fastArgon2),
	}
}

func TestHashThenVerify(t *testing.T) {
	for name, h := range hashers() {
		t.Run(name, func(t *testing.T) {
			hash, err := h.Hash("Passw0rd1")
			require.NoError(t, err)
			assert.NotEqual(t, "Passw0rd1", hash)

			assert.True(t, h.Verify("Passw0rd1", hash))
			assert.False(t, h.Verify("Passw0rd2", hash))
			assert.False(t, h.Verify("", hash))
		})
	}
}

func TestHashIsSalted(t *testing.T) {
	for name, h := range hashers() {
		a, err := h.Hash("Passw0rd1")
		require.NoError(t, err, name)
		b, err := h.Hash("Passw0rd1")
		require.NoError(t, err, name)
		assert.NotEqual(t, a, b, name)
	}
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	for name, h := range hashers() {
		_, err := h.Hash("")
		assert.ErrorIs(t, err, ErrEmptyPassword, name)
	}
}

func TestBcryptRejectsOverlongPassword(t *testing.T) {
	_, err := NewBcryptHasher(bcrypt.MinCost).Hash(strings.Repeat("x", 100))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = NewBcryptHasher(bcrypt.MinCost).Hash(strings.Repeat("x", MaxPasswordBytes))
	assert.NoError(t, err)
}

func TestVerifyMalformedHashIsFalse(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	for _, bad := range []string{
		"",
		"not-a-hash",
		"$argon2id$v=19$m=1024,t=1,p=1$$",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5",
	} {
		assert.False(t, h.Verify("Passw0rd1", bad), bad)
	}
}

func TestVerifyAcceptsEitherFormat(t *testing.T) {
	argonHash, err := NewArgon2Hasher(fastArgon2).Hash("Passw0rd1")
	require.NoError(t, err)
	bcryptHash, err := NewBcryptHasher(bcrypt.MinCost).Hash("Passw0rd1")
	require.NoError(t, err)

	assert.True(t, NewBcryptHasher(bcrypt.MinCost).Verify("Passw0rd1", argonHash))
	assert.True(t, NewArgon2Hasher(fastArgon2).Verify("Passw0rd1", bcryptHash))
	assert.True(t, CompareHashAndPassword(bcryptHash, "Passw0rd1"))
}

func TestNewPasswordHasher(t *testing.T) {
	h, err := NewPasswordHasher("argon2id", 0)
	require.NoError(t, err)
	assert.IsType(t, &Argon2Hasher{}, h)

	h, err = NewPasswordHasher("bcrypt", 3)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, h.(*BcryptHasher).Cost)

	_, err = NewPasswordHasher("md5", 0)
	assert.Error(t, err)
}
