package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		t.Setenv("SPOTIFY_CLIENT_ID", "")
		t.Setenv("SPOTIFY_CLIENT_SECRET", "")

		config := DefaultConfig()

		if config.Database.Path != "sdx.db" {
			t.Errorf("expected database path sdx.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 9090 {
			t.Errorf("expected server port 9090, got %d", config.Server.Port)
		}

		if config.Collector.ChunkSize != 20 {
			t.Errorf("expected chunk_size 20, got %d", config.Collector.ChunkSize)
		}

		if config.Collector.ChunkDelay() != 500*time.Millisecond {
			t.Errorf("expected chunk delay 500ms, got %v", config.Collector.ChunkDelay())
		}

		if config.Collector.TimeRange != "medium_term" {
			t.Errorf("expected time_range medium_term, got %s", config.Collector.TimeRange)
		}

		if config.Output.Dir != "data" {
			t.Errorf("expected output dir data, got %s", config.Output.Dir)
		}

		if config.Credentials.Spotify.RedirectURI != "http://127.0.0.1:9090/callback" {
			t.Errorf("unexpected redirect_uri %s", config.Credentials.Spotify.RedirectURI)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		t.Setenv("SPOTIFY_CLIENT_ID", "")
		t.Setenv("SPOTIFY_CLIENT_SECRET", "")

		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[server]
host = "0.0.0.0"
port = 8080

[collector]
chunk_size = 10
chunk_delay_ms = 1000
top_limit = 25
time_range = "long_term"
seed_cap = 3
rec_limit = 50
workers = 2

[output]
dir = "exports"

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "http://localhost:3000/callback"
token_path = "/tmp/token.json"
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

		if config.Collector.ChunkSize != 10 {
			t.Errorf("expected chunk_size 10, got %d", config.Collector.ChunkSize)
		}

		if config.Collector.ChunkDelay() != time.Second {
			t.Errorf("expected chunk delay 1s, got %v", config.Collector.ChunkDelay())
		}

		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}
	})

	t.Run("EnvironmentOverride", func(t *testing.T) {
		t.Setenv("SPOTIFY_CLIENT_ID", "env_client_id")
		t.Setenv("SPOTIFY_CLIENT_SECRET", "env_secret")

		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[credentials.spotify]
client_id = "file_client_id"
client_secret = "file_secret"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Credentials.Spotify.ClientID != "env_client_id" {
			t.Errorf("environment should override file client_id, got %s", config.Credentials.Spotify.ClientID)
		}

		if config.Credentials.Spotify.ClientSecret != "env_secret" {
			t.Errorf("environment should override file client_secret, got %s", config.Credentials.Spotify.ClientSecret)
		}
	})
}
