package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		JWTSecret:          "0123456789abcdef0123456789abcdef",
		JWTAlgorithm:       "HS256",
		AccessTokenMinutes: 30,
		HashAlgorithm:      "bcrypt",
		StorageDriver:      "memory",
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRejectsShortSecret(t *testing.T) {
	c := validConfig()
	c.JWTSecret = "too-short"
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")
}

func TestValidateRejectsMissingSecret(t *testing.T) {
	c := validConfig()
	c.JWTSecret = ""
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET must be provided")
}

func TestValidateTTLBounds(t *testing.T) {
	for _, tc := range []struct {
		minutes int
		ok      bool
	}{
		{0, false},
		{1, true},
		{1440, true},
		{1441, false},
	} {
		c := validConfig()
		c.AccessTokenMinutes = tc.minutes
		if tc.ok {
			assert.NoError(t, c.Validate(), "minutes=%d", tc.minutes)
		} else {
			assert.Error(t, c.Validate(), "minutes=%d", tc.minutes)
		}
	}
}

func TestValidateRejectsUnknownAlgorithms(t *testing.T) {
	c := validConfig()
	c.JWTAlgorithm = "RS256"
	c.HashAlgorithm = "md5"
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_ALGORITHM")
	assert.Contains(t, err.Error(), "HASH_ALGORITHM")
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "45")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/blog?sslmode=disable")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	c := Load()
	require.NoError(t, c.Validate())
	assert.Equal(t, 45*time.Minute, c.AccessTTL())
	assert.Equal(t, "postgres://u:p@db:5432/blog?sslmode=disable", c.PostgresDSN())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSOrigins())
}
