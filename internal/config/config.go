package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Storage  StorageConfig  `toml:"storage"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Player   PlayerConfig   `toml:"player"`
	Playlist PlaylistConfig `toml:"playlist"`
	Auth     AuthConfig     `toml:"auth"`
	Logging  LoggingConfig  `toml:"logging"`
	Ngrok    NgrokConfig    `toml:"ngrok"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port        string `toml:"port"`
	Host        string `toml:"host"`
	EnableCORS  bool   `toml:"enable_cors"`
	ReadTimeout int    `toml:"read_timeout_seconds"`
}

// StorageConfig selects and configures the persistence backend
type StorageConfig struct {
	Backend string `toml:"backend"` // memory, sqlite
	Path    string `toml:"path"`    // sqlite file path
}

// CatalogConfig points at the JSON fixture collections
type CatalogConfig struct {
	FixturesDir     string `toml:"fixtures_dir"`
	LoadDelayMillis int    `toml:"load_delay_ms"` // simulated network latency
	WatchForChanges bool   `toml:"watch_for_changes"`
}

// PlayerConfig configures the playback state machine
type PlayerConfig struct {
	// Backend selects the audio primitive: "sim" (silent clock) or
	// "speaker" (real output where the build supports it).
	Backend string `toml:"backend"`
	// StrictPlaybackErrors surfaces rejected play requests instead of
	// optimistically reporting a playing state.
	StrictPlaybackErrors bool `toml:"strict_playback_errors"`
}

// PlaylistConfig configures the playlist document store
type PlaylistConfig struct {
	UndoWindowSeconds int `toml:"undo_window_seconds"`
}

// AuthConfig configures the user directory and sessions
type AuthConfig struct {
	HashPasswords   bool   `toml:"hash_passwords"`
	SessionDuration string `toml:"session_duration"`
	SecureCookies   bool   `toml:"secure_cookies"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NgrokConfig contains the optional public tunnel configuration
type NgrokConfig struct {
	Enabled   bool   `toml:"enabled"`
	AuthToken string `toml:"auth_token"`
	Domain    string `toml:"domain"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			Host:        "0.0.0.0",
			EnableCORS:  true,
			ReadTimeout: 30,
		},
		Storage: StorageConfig{
			Backend: "sqlite",
			Path:    "./vibrato.db",
		},
		Catalog: CatalogConfig{
			FixturesDir:     "./fixtures",
			LoadDelayMillis: 0,
			WatchForChanges: true,
		},
		Player: PlayerConfig{
			Backend:              "sim",
			StrictPlaybackErrors: false,
		},
		Playlist: PlaylistConfig{
			UndoWindowSeconds: 7,
		},
		Auth: AuthConfig{
			HashPasswords:   false,
			SessionDuration: "24h",
			SecureCookies:   false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Ngrok: NgrokConfig{
			Enabled: false,
		},
	}
}

// LoadConfig loads configuration from a TOML file, creating it with
// defaults when missing
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := cfg.SaveToFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config file: %w", err)
		}
		fmt.Printf("Created default configuration file at: %s\n", configPath)
		return cfg, nil
	}

	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves the configuration to a TOML file
func (c *Config) SaveToFile(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	header := `# Vibrato Configuration
# This file contains all configuration options for the Vibrato music app.
# Edit the values below to customize your setup.

`
	if _, err := file.WriteString(header); err != nil {
		return fmt.Errorf("failed to write config header: %w", err)
	}

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config to TOML: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}
	if c.Server.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Server.ReadTimeout < 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	switch c.Storage.Backend {
	case "memory":
	case "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage path cannot be empty for the sqlite backend")
		}
	default:
		return fmt.Errorf("invalid storage backend: %s (must be memory or sqlite)", c.Storage.Backend)
	}

	if c.Catalog.FixturesDir == "" {
		return fmt.Errorf("catalog fixtures directory cannot be empty")
	}
	if c.Catalog.LoadDelayMillis < 0 {
		return fmt.Errorf("catalog load delay must not be negative")
	}

	switch c.Player.Backend {
	case "sim", "speaker":
	default:
		return fmt.Errorf("invalid player backend: %s (must be sim or speaker)", c.Player.Backend)
	}

	if c.Playlist.UndoWindowSeconds < 1 {
		return fmt.Errorf("playlist undo window must be at least one second")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Logging.Format)
	}

	return nil
}

// GetAddress returns the full server address
func (c *Config) GetAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}
