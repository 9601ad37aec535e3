package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, defaultPort, cfg.Port)
	assert.Equal(t, defaultEnv, cfg.Env)
	assert.True(t, cfg.IsDev())
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
port: 8080
env: production
jwt_secret: super-secret
timezone: Europe/Berlin
allowed_origins:
  - folio.example.com
  - "*.example.com"
database:
  host: db.internal
  port: 3307
  user: folio
  password: hunter2
  name: folio_space
redis:
  host: cache.internal
  port: 6380
  db: 2
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, "super-secret", cfg.JWTSecret)
	assert.Len(t, cfg.AllowedOrigins, 2)
	assert.Contains(t, cfg.DSNValue(), "folio:hunter2@tcp(db.internal:3307)/folio_space")
	assert.Equal(t, "redis://cache.internal:6380/2", cfg.RedisURLValue())
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "prot: 8080\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsBadPort(t *testing.T) {
	for _, body := range []string{"port: -1\n", "port: 70000\n"} {
		_, err := Load(writeConfig(t, body))
		assert.Error(t, err)
	}
}

func TestDSNValuePrefersExplicitDSN(t *testing.T) {
	cfg := defaultAppConfig()
	cfg.Database.DSN = "user:pw@tcp(10.0.0.1:3306)/custom"
	assert.Equal(t, "user:pw@tcp(10.0.0.1:3306)/custom", cfg.DSNValue())
}

func TestRedisURLValuePrefersExplicitURL(t *testing.T) {
	cfg := defaultAppConfig()
	cfg.Redis.URL = "redis://:pw@10.0.0.2:6379/1"
	assert.Equal(t, "redis://:pw@10.0.0.2:6379/1", cfg.RedisURLValue())
}

func TestDefaultDSN(t *testing.T) {
	cfg := defaultAppConfig()
	assert.Contains(t, cfg.DSNValue(), "root:password@tcp(127.0.0.1:3306)/folio_space")
	assert.Contains(t, cfg.DSNValue(), "parseTime=True")
}
