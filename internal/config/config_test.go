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
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Database.URI)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, "91", cfg.Messaging.CountryCode)
	assert.True(t, cfg.S3.UseSSL)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  address: ":9090"
jwt:
  secret: from-file
  expiration: 90m
gym:
  name: Iron Den
  timezone: Asia/Kolkata
messaging:
  expiring_template: "Hi {name}"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("REDIS_NAMESPACE", "irondev")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 90*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, "irondev", cfg.Redis.Namespace)
	assert.Equal(t, "Iron Den", cfg.Gym.Name)
	assert.Equal(t, "Hi {name}", cfg.Messaging.ExpiringTemplate)

	loc, err := cfg.Gym.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", loc.String())
}

func TestLoadConfig_BadTimezone(t *testing.T) {
	t.Setenv("GYM_TIMEZONE", "Mars/Olympus")
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestLoadClientConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GYMCTL_BASE_URL", "https://gym.example.com")

	cfg, err := LoadClientConfig(dir, "/tmp/gymctl/session.yaml")
	require.NoError(t, err)
	assert.Equal(t, "https://gym.example.com", cfg.BaseURL)
	assert.Equal(t, "/tmp/gymctl/session.yaml", cfg.SessionFile)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadConfig_Driver(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DriverMongo, cfg.Database.Driver)

	t.Setenv("DATABASE_DRIVER", "memory")
	cfg, err = LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)

	t.Setenv("DATABASE_DRIVER", "postgres")
	_, err = LoadConfig(t.TempDir())
	assert.Error(t, err)
}
