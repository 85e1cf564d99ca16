package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults are filled in", func(t *testing.T) {
		path := writeConfig(t, `
[server]
port = ":9999"

[database]
dsn = "file:test.db"
`)
		config, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, ":9999", config.Server.Port)
		assert.Equal(t, "./migrations", config.Database.MigrationsDir)
		assert.Equal(t, "Authorization", config.Auth.TokenHeader)
		assert.Equal(t, 12*60, config.Auth.SessionTTLMinutes)
	})

	t.Run("missing port is rejected", func(t *testing.T) {
		path := writeConfig(t, `
[database]
dsn = "file:test.db"
`)
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("missing dsn is rejected", func(t *testing.T) {
		path := writeConfig(t, `
[server]
port = ":9999"
`)
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("cache without auth redis is rejected, not silently ignored", func(t *testing.T) {
		path := writeConfig(t, `
[server]
port = ":9999"

[database]
dsn = "file:test.db"

[cache]
enabled = true
`)
		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cache.enabled")
	})
}
