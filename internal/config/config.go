// Package config loads backend settings from a YAML file and environment
// variables via viper. Command line flags bound by the command layer take
// precedence over both.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Screen is the renderer's pixel dimensions.
type Screen struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// MPD configures the optional ambient music backend.
type MPD struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
}

// Config is the full backend configuration.
type Config struct {
	SignalDir   string `mapstructure:"signal_dir"`
	MediaDir    string `mapstructure:"media_dir"`
	GamelistDir string `mapstructure:"gamelist_dir"`
	LogoDir     string `mapstructure:"logo_dir"`
	LayoutFile  string `mapstructure:"layout_file"`

	Screen Screen `mapstructure:"screen"`

	DebounceWindow time.Duration `mapstructure:"debounce_window"`
	SettleDelay    time.Duration `mapstructure:"settle_delay"`
	FadeDuration   time.Duration `mapstructure:"fade_duration"`

	MuteBackground bool `mapstructure:"mute_background"`
	MuteMusic      bool `mapstructure:"mute_music"`

	ServerPort       int    `mapstructure:"server_port"`
	MaxRemoteClients int    `mapstructure:"max_remote_clients"`
	LogLevel         string `mapstructure:"log_level"`

	MPD MPD `mapstructure:"mpd"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("signal_dir", "/tmp/sidecast/events")
	v.SetDefault("media_dir", "/userdata/media")
	v.SetDefault("gamelist_dir", "/userdata/gamelists")
	v.SetDefault("logo_dir", "")
	v.SetDefault("layout_file", "/userdata/sidecast/layout.yaml")

	v.SetDefault("screen.width", 1920)
	v.SetDefault("screen.height", 1080)

	v.SetDefault("debounce_window", 50*time.Millisecond)
	v.SetDefault("settle_delay", 100*time.Millisecond)
	v.SetDefault("fade_duration", 400*time.Millisecond)

	v.SetDefault("mute_background", false)
	v.SetDefault("mute_music", false)

	v.SetDefault("server_port", 3001)
	v.SetDefault("max_remote_clients", 2)
	v.SetDefault("log_level", "info")

	v.SetDefault("mpd.enabled", false)
	v.SetDefault("mpd.host", "localhost")
	v.SetDefault("mpd.port", 6600)
	v.SetDefault("mpd.password", "")
}

// Load reads the configuration. An empty cfgFile searches the standard
// locations; a missing file there is not an error, defaults apply.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/sidecast")
		v.AddConfigPath("$HOME/.config/sidecast")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("SIDECAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
