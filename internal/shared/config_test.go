package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.KUTX.BaseURL != "https://api.composer.nprstations.org/v1/widget" {
			t.Errorf("unexpected kutx base URL %s", config.KUTX.BaseURL)
		}

		if config.KUTX.WidgetID == "" {
			t.Error("expected a default widget id")
		}

		if config.Cache.PlaylistTTLHours != 24 {
			t.Errorf("expected playlist TTL 24h, got %d", config.Cache.PlaylistTTLHours)
		}

		if config.Playlist.NamePrefix != "KUTX" {
			t.Errorf("expected playlist prefix KUTX, got %s", config.Playlist.NamePrefix)
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

		defaultConfig := DefaultConfig()
		if config.KUTX.WidgetID != defaultConfig.KUTX.WidgetID {
			t.Error("created config widget id doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[kutx]
base_url = "http://localhost:9999/widget"
widget_id = "abc123"

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "http://localhost:3000/callback"

[cache]
dir = "/custom/cache"
playlist_ttl_hours = 6

[playlist]
name_prefix = "Drive Time"
public = false
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.KUTX.WidgetID != "abc123" {
			t.Errorf("expected widget id abc123, got %s", config.KUTX.WidgetID)
		}
		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected client id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Cache.Dir != "/custom/cache" {
			t.Errorf("expected cache dir /custom/cache, got %s", config.Cache.Dir)
		}
		if config.Cache.PlaylistTTLHours != 6 {
			t.Errorf("expected TTL 6, got %d", config.Cache.PlaylistTTLHours)
		}
		if config.Playlist.Public {
			t.Error("expected public false")
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("CacheConfig Directory", func(t *testing.T) {
		c := CacheConfig{Dir: "/explicit"}
		dir, err := c.Directory()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dir != "/explicit" {
			t.Errorf("expected /explicit, got %s", dir)
		}

		c = CacheConfig{}
		dir, err = c.Directory()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if filepath.Base(dir) != "kutx2spotify" {
			t.Errorf("expected default dir ending in kutx2spotify, got %s", dir)
		}
	})
}
