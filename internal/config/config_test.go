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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
app:
  name: royalpalace
  environment: test
database:
  path: /tmp/test.db
api:
  port: 9000
  auth:
    enabled: true
    api_keys:
      - key: secret-key
        name: frontend
        permissions: ["bookings:write"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "royalpalace", cfg.App.Name)
	assert.Equal(t, 9000, cfg.API.Port)
	assert.Equal(t, "x-api-key", cfg.API.Auth.HeaderAPIKey)
	assert.Equal(t, 24, cfg.Booking.SessionTTLHours)
	assert.Equal(t, 365, cfg.Booking.InitializeDays)
	require.Len(t, cfg.API.Auth.APIKeys, 1)
	assert.Equal(t, "frontend", cfg.API.Auth.APIKeys[0].Name)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("RP_DB_PATH", "/data/rp.db")
	path := writeConfig(t, `
database:
  path: ${RP_DB_PATH}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/rp.db", cfg.Database.Path)
}

func TestLoad_Validation(t *testing.T) {
	t.Run("MissingDatabasePath", func(t *testing.T) {
		_, err := Load(writeConfig(t, `app: {name: x}`))
		assert.ErrorContains(t, err, "database path")
	})

	t.Run("AuthWithoutKeys", func(t *testing.T) {
		_, err := Load(writeConfig(t, `
database:
  path: /tmp/test.db
api:
  auth:
    enabled: true
`))
		assert.ErrorContains(t, err, "no api keys")
	})

	t.Run("TelegramWithoutToken", func(t *testing.T) {
		_, err := Load(writeConfig(t, `
database:
  path: /tmp/test.db
telegram:
  enabled: true
`))
		assert.ErrorContains(t, err, "telegram bot token")
	})
}
