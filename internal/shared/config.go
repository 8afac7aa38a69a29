package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Downloader  DownloaderConfig  `toml:"downloader"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	YouTube YouTubeConfig `toml:"youtube"`
}

// SpotifyConfig contains Spotify API credentials for the client
// credentials flow (no user login needed for catalog metadata).
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// YouTubeConfig contains YouTube Music proxy settings.
type YouTubeConfig struct {
	ProxyURL    string `toml:"proxy_url"`
	HeadersPath string `toml:"headers_path"`
}

// DownloaderConfig controls the acquisition chain.
type DownloaderConfig struct {
	// Strategies lists backend names in priority order; the first entry
	// is tried first. Order is fixed at load time and never reordered.
	Strategies []string `toml:"strategies"`

	// WorkDir is where per-request scratch directories are created.
	// Defaults to the OS temp dir when empty.
	WorkDir string `toml:"work_dir"`

	YTDLPBinary string `toml:"ytdlp_binary"`

	ProbeTimeoutSec    int `toml:"probe_timeout_sec"`
	DownloadTimeoutSec int `toml:"download_timeout_sec"`

	// DurationToleranceSec widens the duration match filter passed to
	// search-based backends.
	DurationToleranceSec int `toml:"duration_tolerance_sec"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ProbeTimeout returns the availability probe budget as a [time.Duration].
func (d DownloaderConfig) ProbeTimeout() time.Duration {
	if d.ProbeTimeoutSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(d.ProbeTimeoutSec) * time.Second
}

// DownloadTimeout returns the per-strategy execution budget as a [time.Duration].
func (d DownloaderConfig) DownloadTimeout() time.Duration {
	if d.DownloadTimeoutSec <= 0 {
		return 3 * time.Minute
	}
	return time.Duration(d.DownloadTimeoutSec) * time.Second
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, ErrInvalidArgument)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
