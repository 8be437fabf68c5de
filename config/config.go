// Package config holds the runtime settings of webradio-title, read by viper
// from flags, WRT_ environment variables and an optional config.yaml.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
)

const EnvPrefix = "WRT"

type SpotifySettings struct {
	Enabled      bool   `mapstructure:"enabled"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	TokenFile    string `mapstructure:"token_file"`
}

type Settings struct {
	LogLevel     string          `mapstructure:"log_level"`
	LogFormat    string          `mapstructure:"log_format"`
	TitleCase    bool            `mapstructure:"title_case"`
	Interval     time.Duration   `mapstructure:"interval"`
	Storage      string          `mapstructure:"storage"`
	StoragePath  string          `mapstructure:"storage_path"`
	RedisChannel string          `mapstructure:"redis_channel"`
	HealthPort   int             `mapstructure:"health_port"`
	Spotify      SpotifySettings `mapstructure:"spotify"`
}

var (
	logLevels    = []string{"debug", "info", "warn", "error"}
	logFormats   = []string{"text", "json"}
	storageTypes = []string{"memory", "file", "sqlite", "postgres", "redis"}
)

// SetDefaults registers every key, which also lets environment variables
// reach Unmarshal for keys no flag or file sets.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("title_case", false)
	v.SetDefault("interval", time.Duration(0))
	v.SetDefault("storage", "memory")
	v.SetDefault("storage_path", "data")
	v.SetDefault("redis_channel", "nowplaying")
	v.SetDefault("health_port", 0)
	v.SetDefault("spotify.enabled", false)
	v.SetDefault("spotify.client_id", "")
	v.SetDefault("spotify.client_secret", "")
	v.SetDefault("spotify.token_file", "data/.token")
}

// BindEnv makes v look for WRT_ variables, spotify.client_id becoming
// WRT_SPOTIFY_CLIENT_ID. The Spotify credentials also fall back to the usual
// SPOTIFY_ID and SPOTIFY_SECRET.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("spotify.client_id", EnvPrefix+"_SPOTIFY_CLIENT_ID", "SPOTIFY_ID")
	v.BindEnv("spotify.client_secret", EnvPrefix+"_SPOTIFY_CLIENT_SECRET", "SPOTIFY_SECRET")
}

// ReadConfigFile reads config.yaml from dir. A missing file is not an error.
func ReadConfigFile(v *viper.Viper, dir string) error {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	return err
}

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate reports every invalid setting at once.
func (s *Settings) Validate() error {
	var result *multierror.Error

	if !oneOf(s.LogLevel, logLevels) {
		result = multierror.Append(result, fmt.Errorf("log_level: unknown level %q", s.LogLevel))
	}
	if !oneOf(s.LogFormat, logFormats) {
		result = multierror.Append(result, fmt.Errorf("log_format: unknown format %q", s.LogFormat))
	}
	if s.Interval < 0 {
		result = multierror.Append(result, fmt.Errorf("interval: must not be negative, got %s", s.Interval))
	}
	if !oneOf(s.Storage, storageTypes) {
		result = multierror.Append(result, fmt.Errorf("storage: unknown type %q", s.Storage))
	}
	if s.Storage == "postgres" && s.StoragePath == "" {
		result = multierror.Append(result, errors.New("storage_path: postgres needs a connection string"))
	}
	if s.HealthPort < 0 || s.HealthPort > 65535 {
		result = multierror.Append(result, fmt.Errorf("health_port: %d out of range", s.HealthPort))
	}
	if s.Spotify.Enabled {
		if s.Spotify.ClientID == "" {
			result = multierror.Append(result, errors.New("spotify.client_id: required when spotify is enabled"))
		}
		if s.Spotify.ClientSecret == "" {
			result = multierror.Append(result, errors.New("spotify.client_secret: required when spotify is enabled"))
		}
	}

	return result.ErrorOrNil()
}

func oneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return true
		}
	}
	return false
}
