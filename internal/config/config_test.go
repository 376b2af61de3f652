package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("TIMEZONE", "")
	t.Setenv("SMTP_HOST", "")
	t.Setenv("PORT", "8080")
	t.Setenv("STORAGE", "postgres")
	t.Setenv("DB_CONN", "host=db dbname=todo")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("TOKEN_TTL", "24h")
	t.Setenv("BCRYPT_COST", "10")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, time.Local, cfg.Location)
	assert.False(t, cfg.MailEnabled())
}

func TestNewConfig_Overrides(t *testing.T) {
	t.Setenv("STORAGE", "memory")
	t.Setenv("JWT_SECRET", "k")
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("SMTP_HOST", "smtp.example.com")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.True(t, cfg.MailEnabled())
}

func TestNewConfig_Invalid(t *testing.T) {
	cases := map[string][2]string{
		"empty secret":    {"JWT_SECRET", ""},
		"bad ttl":         {"TOKEN_TTL", "soon"},
		"negative ttl":    {"TOKEN_TTL", "-1h"},
		"bad cost":        {"BCRYPT_COST", "ten"},
		"bad timezone":    {"TIMEZONE", "Mars/Olympus"},
		"unknown storage": {"STORAGE", "etcd"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("STORAGE", "memory")
			t.Setenv("JWT_SECRET", "k")
			t.Setenv("TOKEN_TTL", "1h")
			t.Setenv("BCRYPT_COST", "10")
			t.Setenv("TIMEZONE", "")
			t.Setenv(kv[0], kv[1])

			_, err := NewConfig()
			assert.Error(t, err)
		})
	}
}
