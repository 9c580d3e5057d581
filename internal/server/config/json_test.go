package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"http_addr":        "www.example:8080",
		"grpc_addr":        "www.example:9000",
		"database_dsn":     "auth.db",
		"secret_key":       "my_secret_key",
		"algorithm":        "HS384",
		"session_ttl":      "15m",
		"hash_scheme":      "scrypt",
		"hash_workers":     4,
		"cookie_name":      "sid",
		"cookie_same_site": "none",
		"cookie_secure":    true,
		"allowed_origins":  []string{"https://app.example"},
		"run_migrations":   false,
		"purge_interval":   "30m",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{RunMigrations: true}
		parseJson(cfg)

		assert.Equal(t, "www.example:8080", cfg.HTTPAddr)
		assert.Equal(t, "www.example:9000", cfg.GRPCAddr)
		assert.Equal(t, "auth.db", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, "HS384", cfg.Algorithm)
		assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
		assert.Equal(t, "scrypt", cfg.HashScheme)
		assert.Equal(t, 4, cfg.HashWorkers)
		assert.Equal(t, "sid", cfg.CookieName)
		assert.Equal(t, "none", cfg.CookieSameSite)
		assert.True(t, cfg.CookieSecure)
		assert.Equal(t, []string{"https://app.example"}, cfg.AllowedOrigins)
		assert.False(t, cfg.RunMigrations)
		assert.Equal(t, 30*time.Minute, cfg.PurgeInterval)
	})

	t.Run("partial file keeps other values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"secret_key": "only-secret"})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "only-secret", cfg.SecretKey)
		assert.Equal(t, "127.0.0.1:8080", cfg.HTTPAddr)
		assert.Equal(t, 10*time.Minute, cfg.SessionTTL)
		assert.True(t, cfg.RunMigrations)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			HTTPAddr:    "defaults:1234",
			DatabaseDSN: "auth.db",
			SecretKey:   "key",
			SessionTTL:  2 * time.Minute,
		}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.HTTPAddr)
		assert.Equal(t, "auth.db", cfg.DatabaseDSN)
		assert.Equal(t, "key", cfg.SecretKey)
		assert.Equal(t, 2*time.Minute, cfg.SessionTTL)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", filepath.Join(dir, "nope.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
