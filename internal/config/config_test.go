package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, 0.3, cfg.Resolver.MinAcceptScore)
	assert.Equal(t, 0.9, cfg.Resolver.ConfirmFloor)
	assert.Equal(t, 0.9, cfg.Resolver.DuplicateMatchFloor)
	assert.Equal(t, 0.3, cfg.Resolver.DuplicateDetectFloor)
	assert.Equal(t, 64, cfg.Resolver.SaveQueueSize)
	assert.NotEmpty(t, cfg.Providers["anime"])
	assert.NotEmpty(t, cfg.Providers["movie-tv"])
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "medialog.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
resolver:
  min_accept_score: 0.5
  provider_base_urls:
    aniwave: http://aniwave.local/api
providers:
  anime:
    - name: aniwave
      working: true
    - name: gogostream
      working: false
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 0.5, cfg.Resolver.MinAcceptScore)
	assert.Equal(t, "http://aniwave.local/api", cfg.Resolver.ProviderBaseURLs["aniwave"])

	// File replaces the default provider table for the category
	require.Len(t, cfg.Providers["anime"], 2)
	assert.Equal(t, "aniwave", cfg.Providers["anime"][0].Name)
	assert.False(t, cfg.Providers["anime"][1].Working)

	// Untouched sections keep their defaults
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 0.9, cfg.Resolver.ConfirmFloor)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MEDIALOG_PORT", "7070")
	t.Setenv("MEDIALOG_CONFIRM_FLOOR", "0.8")
	t.Setenv("MEDIALOG_SEARCH_TIMEOUT", "5s")
	t.Setenv("DB_LOG_QUERIES", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 0.8, cfg.Resolver.ConfirmFloor)
	assert.Equal(t, 5*time.Second, cfg.Resolver.SearchTimeout)
	assert.True(t, cfg.Database.LogQueries)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "medialog.yml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0644))

	t.Setenv("MEDIALOG_PORT", "7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad port", "server:\n  port: -1\n"},
		{"bad database type", "database:\n  type: mongodb\n"},
		{"threshold out of range", "resolver:\n  min_accept_score: 1.5\n"},
		{"empty provider table", "providers:\n  anime: []\n"},
		{"unnamed provider", "providers:\n  anime:\n    - working: true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "medialog.yml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
