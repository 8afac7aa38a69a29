package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "trackdl.db" {
			t.Errorf("expected database path trackdl.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Credentials.YouTube.ProxyURL != "http://localhost:8080" {
			t.Errorf("expected youtube proxy URL http://localhost:8080, got %s", config.Credentials.YouTube.ProxyURL)
		}

		want := []string{"yt-dlp", "youtube-stream"}
		if len(config.Downloader.Strategies) != len(want) {
			t.Fatalf("expected %d strategies, got %v", len(want), config.Downloader.Strategies)
		}
		for i, name := range want {
			if config.Downloader.Strategies[i] != name {
				t.Errorf("strategy[%d] = %s, want %s", i, config.Downloader.Strategies[i], name)
			}
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[server]
host = "0.0.0.0"
port = 8080

[downloader]
strategies = ["youtube-stream"]
download_timeout_sec = 60

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if len(config.Downloader.Strategies) != 1 || config.Downloader.Strategies[0] != "youtube-stream" {
			t.Errorf("expected single youtube-stream strategy, got %v", config.Downloader.Strategies)
		}

		if config.Downloader.DownloadTimeout() != 60*time.Second {
			t.Errorf("expected 60s download timeout, got %s", config.Downloader.DownloadTimeout())
		}
	})

	t.Run("LoadConfigMissingFile", func(t *testing.T) {
		if _, err := LoadConfig("/nonexistent/config.toml"); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("TimeoutDefaults", func(t *testing.T) {
		var d DownloaderConfig

		if d.ProbeTimeout() != 30*time.Second {
			t.Errorf("expected 30s probe default, got %s", d.ProbeTimeout())
		}
		if d.DownloadTimeout() != 3*time.Minute {
			t.Errorf("expected 3m download default, got %s", d.DownloadTimeout())
		}
	})
}
