package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("Load with defaults failed: %v", err)
	}

	if cfg.ServerPort != 3001 {
		t.Errorf("default server port: got %d, want 3001", cfg.ServerPort)
	}
	if cfg.DebounceWindow != 50*time.Millisecond {
		t.Errorf("default debounce window: got %v", cfg.DebounceWindow)
	}
	if cfg.Screen.Width != 1920 || cfg.Screen.Height != 1080 {
		t.Errorf("default screen size: got %+v", cfg.Screen)
	}
	if cfg.MPD.Enabled {
		t.Error("MPD should be disabled by default")
	}
	if cfg.MPD.Port != 6600 {
		t.Errorf("default MPD port: got %d", cfg.MPD.Port)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
signal_dir: /custom/events
media_dir: /custom/media
debounce_window: 80ms
settle_delay: 200ms
mute_music: true
server_port: 4000
screen:
  width: 1280
  height: 720
mpd:
  enabled: true
  host: mpd.local
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(viper.New(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.SignalDir != "/custom/events" {
		t.Errorf("signal dir: got %s", cfg.SignalDir)
	}
	if cfg.DebounceWindow != 80*time.Millisecond {
		t.Errorf("debounce window: got %v", cfg.DebounceWindow)
	}
	if cfg.SettleDelay != 200*time.Millisecond {
		t.Errorf("settle delay: got %v", cfg.SettleDelay)
	}
	if !cfg.MuteMusic {
		t.Error("mute_music should be set")
	}
	if cfg.Screen.Width != 1280 || cfg.Screen.Height != 720 {
		t.Errorf("screen size: got %+v", cfg.Screen)
	}
	if !cfg.MPD.Enabled || cfg.MPD.Host != "mpd.local" {
		t.Errorf("mpd config: got %+v", cfg.MPD)
	}
	// Untouched keys keep their defaults.
	if cfg.GamelistDir != "/userdata/gamelists" {
		t.Errorf("gamelist dir default lost: got %s", cfg.GamelistDir)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("an explicitly named missing config file should be an error")
	}
}
