package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Event source kinds.
const (
	SourceX11  = "x11"
	SourceFeed = "feed"
)

// Config holds the complete application configuration
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Tracking TrackingConfig `mapstructure:"tracking"`
	Source   SourceConfig   `mapstructure:"source"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Store    StoreConfig    `mapstructure:"store"`
}

type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// TrackingConfig controls session tracking. IdleThreshold is read once at
// startup.
type TrackingConfig struct {
	IdleThreshold    time.Duration `mapstructure:"idle_threshold"`
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	TickInterval     time.Duration `mapstructure:"tick_interval"`
	RecentAppsLimit  int           `mapstructure:"recent_apps_limit"`
	ReconcileOrphans bool          `mapstructure:"reconcile_orphans"`
}

type SourceConfig struct {
	Kind     string `mapstructure:"kind"`      // "x11" or "feed"
	FeedPath string `mapstructure:"feed_path"` // JSON-lines file for the feed source
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console", "json" or "auto"
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"` // empty disables the listener
}

type StoreConfig struct {
	QueueSize int `mapstructure:"queue_size"`
}

// Load reads configuration from defaults, the optional config file and
// FOCUSTRACK_* environment variables, in increasing precedence. An empty
// configPath looks for config.yaml in the user config directory and
// tolerates its absence.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "focustrack"))
		}
	}
	v.SetEnvPrefix("FOCUSTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// DefaultDBPath is ~/.focustrack/focustrack.db, or a relative path when the
// home directory cannot be determined.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".focustrack", "focustrack.db")
	}
	return filepath.Join(home, ".focustrack", "focustrack.db")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.path", DefaultDBPath())

	v.SetDefault("tracking.idle_threshold", "5m")
	v.SetDefault("tracking.poll_interval", "1s")
	v.SetDefault("tracking.tick_interval", "1s")
	v.SetDefault("tracking.recent_apps_limit", 5)
	v.SetDefault("tracking.reconcile_orphans", true)

	v.SetDefault("source.kind", SourceX11)
	v.SetDefault("source.feed_path", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "auto")

	v.SetDefault("metrics.addr", "")

	v.SetDefault("store.queue_size", 256)
}

func validate(cfg *Config) error {
	if cfg.Storage.Path == "" {
		return fmt.Errorf("storage path is required")
	}
	if cfg.Tracking.IdleThreshold <= 0 {
		return fmt.Errorf("idle threshold must be positive: %s", cfg.Tracking.IdleThreshold)
	}
	if cfg.Tracking.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive: %s", cfg.Tracking.PollInterval)
	}
	if cfg.Tracking.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive: %s", cfg.Tracking.TickInterval)
	}
	if cfg.Tracking.RecentAppsLimit <= 0 {
		return fmt.Errorf("recent apps limit must be positive: %d", cfg.Tracking.RecentAppsLimit)
	}
	if cfg.Store.QueueSize <= 0 {
		return fmt.Errorf("store queue size must be positive: %d", cfg.Store.QueueSize)
	}

	switch cfg.Source.Kind {
	case SourceX11:
	case SourceFeed:
		if cfg.Source.FeedPath == "" {
			return fmt.Errorf("source.feed_path is required for the feed source")
		}
	default:
		return fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "console", "json", "auto":
	default:
		return fmt.Errorf("unknown log format %q", cfg.Logging.Format)
	}
	return nil
}
