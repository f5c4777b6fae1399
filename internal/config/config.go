// Package config loads runtime configuration from the environment, with an
// optional .env file for development.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Player backend selectors.
const (
	BackendAppleScript = "applescript"
	BackendMPD         = "mpd"
)

// Config holds all runtime settings.
type Config struct {
	Port     int    `envconfig:"PORT" default:"3000"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Which player the monitor talks to.
	PlayerBackend string `envconfig:"PLAYER_BACKEND" default:"applescript"`

	MPD struct {
		Host     string `envconfig:"MPD_HOST" default:"localhost"`
		Port     int    `envconfig:"MPD_PORT" default:"6600"`
		Password string `envconfig:"MPD_PASSWORD" default:""`
	}

	Spotify struct {
		// Web API credentials for album art search. Leave empty to run
		// with local/cached artwork only.
		ClientID     string `envconfig:"SPOTIFY_CLIENT_ID" default:""`
		ClientSecret string `envconfig:"SPOTIFY_CLIENT_SECRET" default:""`
	}

	// CacheDir is where album art PNGs are stored. Empty selects a
	// per-user default.
	CacheDir string `envconfig:"CACHE_DIR" default:""`

	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"2s"`
	RetryDelay   time.Duration `envconfig:"RETRY_DELAY" default:"1s"`
}

// Load reads configuration from a .env file (if present) and the process
// environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("Error loading .env file")
	}

	cfg := Config{}
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("failed to process environment: %w", err)
	}

	switch cfg.PlayerBackend {
	case BackendAppleScript, BackendMPD:
	default:
		return cfg, fmt.Errorf("unknown player backend %q", cfg.PlayerBackend)
	}

	if cfg.CacheDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return cfg, fmt.Errorf("failed to resolve cache directory: %w", err)
		}
		cfg.CacheDir = filepath.Join(base, "notchtify", "albumart")
	}

	return cfg, nil
}
