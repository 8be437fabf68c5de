package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	BindEnv(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	s, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, "text", s.LogFormat)
	assert.False(t, s.TitleCase)
	assert.Equal(t, time.Duration(0), s.Interval)
	assert.Equal(t, "memory", s.Storage)
	assert.Equal(t, "data", s.StoragePath)
	assert.Equal(t, "nowplaying", s.RedisChannel)
	assert.False(t, s.Spotify.Enabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("WRT_LOG_LEVEL", "debug")
	t.Setenv("WRT_INTERVAL", "15s")
	t.Setenv("WRT_TITLE_CASE", "true")
	t.Setenv("WRT_STORAGE", "sqlite")
	t.Setenv("WRT_SPOTIFY_ENABLED", "true")
	t.Setenv("WRT_SPOTIFY_CLIENT_ID", "id")
	t.Setenv("SPOTIFY_SECRET", "secret")

	s, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, 15*time.Second, s.Interval)
	assert.True(t, s.TitleCase)
	assert.Equal(t, "sqlite", s.Storage)
	assert.True(t, s.Spotify.Enabled)
	assert.Equal(t, "id", s.Spotify.ClientID)
	assert.Equal(t, "secret", s.Spotify.ClientSecret)
}

func TestReadConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
log_format: json
storage: file
storage_path: /tmp/board
health_port: 8080
spotify:
  token_file: /tmp/token
`), 0o644))

	v := newViper()
	require.NoError(t, ReadConfigFile(v, dir))
	s, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "json", s.LogFormat)
	assert.Equal(t, "file", s.Storage)
	assert.Equal(t, "/tmp/board", s.StoragePath)
	assert.Equal(t, 8080, s.HealthPort)
	assert.Equal(t, "/tmp/token", s.Spotify.TokenFile)
}

func TestReadConfigFileMissing(t *testing.T) {
	assert.NoError(t, ReadConfigFile(newViper(), t.TempDir()))
}

func TestValidate(t *testing.T) {
	s := &Settings{
		LogLevel:   "loud",
		LogFormat:  "xml",
		Interval:   -time.Second,
		Storage:    "postgres",
		HealthPort: 70000,
		Spotify:    SpotifySettings{Enabled: true},
	}

	err := s.Validate()
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 7)
	assert.Contains(t, err.Error(), "log_level")
	assert.Contains(t, err.Error(), "spotify.client_secret")
}
