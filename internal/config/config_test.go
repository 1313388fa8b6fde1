package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.False(t, cfg.S3.Enabled())
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  address: ":9090"
database:
  driver: memory
jwt:
  secret: from-file
  expiration: 30m
public:
  base_url: https://coach.example.com/
s3:
  bucket_name: uploads
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("SERVER_ADDRESS", ":7070")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Address, "environment wins over file")
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, 30*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, "https://coach.example.com", cfg.Public.BaseURL)
	assert.True(t, cfg.S3.Enabled())
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := LoadConfig(t.TempDir())
		assert.ErrorIs(t, err, ErrMissingJWTSecret)
	})
	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("DATABASE_DRIVER", "sqlite")
		_, err := LoadConfig(t.TempDir())
		assert.ErrorContains(t, err, "sqlite")
	})
}
