package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Session  SessionConfig
	Auth     AuthConfig
	UI       UIConfig
	Log      LogConfig
	Debug    bool
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// SessionConfig selects where the current session lives and how long it lasts.
type SessionConfig struct {
	Backend          string // sqlite | redis
	RedisAddr        string `mapstructure:"redis_addr"`
	RedisPrefix      string `mapstructure:"redis_prefix"`
	RedisPasswordEnv string `mapstructure:"redis_password_env"`
	TTL              time.Duration
	CheckInterval    time.Duration `mapstructure:"check_interval"`
	Issuer           string
	KeyDir           string `mapstructure:"key_dir"`
}

// AuthConfig seeds the first account of an empty database.
type AuthConfig struct {
	SeedUser     string `mapstructure:"seed_user"`
	SeedPassword string `mapstructure:"seed_password"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	FadeDuration  time.Duration `mapstructure:"fade_duration"`
	FrameInterval time.Duration `mapstructure:"frame_interval"`
}

type LogConfig struct {
	Path string
}

// Load reads configuration from file and env. Env var overrides use prefix SCENEFLOW_.
func Load() (Config, error) {
	v := viper.New()

	home := os.Getenv("HOME")
	v.SetDefault("database.path", filepath.Join(home, ".local", "share", "sceneflow", "sceneflow.db"))
	v.SetDefault("session.backend", "sqlite")
	v.SetDefault("session.redis_addr", "localhost:6379")
	v.SetDefault("session.redis_prefix", "sceneflow")
	v.SetDefault("session.redis_password_env", "SCENEFLOW_REDIS_PASSWORD")
	v.SetDefault("session.ttl", "12h")
	v.SetDefault("session.check_interval", "30s")
	v.SetDefault("session.issuer", "sceneflow")
	v.SetDefault("session.key_dir", "")
	v.SetDefault("auth.seed_user", "demo")
	v.SetDefault("auth.seed_password", "demo")
	v.SetDefault("ui.fade_duration", "200ms")
	v.SetDefault("ui.frame_interval", "16ms")
	v.SetDefault("log.path", "")
	v.SetDefault("debug", false)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("SCENEFLOW_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "sceneflow"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("SCENEFLOW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present; a broken one is an error
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the app cannot run with.
func (c Config) Validate() error {
	switch strings.ToLower(c.Session.Backend) {
	case "sqlite", "redis":
	default:
		return fmt.Errorf("config: session.backend must be sqlite or redis, got %q", c.Session.Backend)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("config: session.ttl must be positive")
	}
	if c.UI.FadeDuration < 0 || c.UI.FrameInterval < 0 {
		return fmt.Errorf("config: ui durations must not be negative")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("config: database.path is required")
	}
	return nil
}

// Save writes the provided config to disk, creating the config directory if needed.
// The seed password is left out; it only matters on first run.
func Save(cfg Config) error {
	path := os.Getenv("SCENEFLOW_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "sceneflow", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("session.backend", cfg.Session.Backend)
	v.Set("session.redis_addr", cfg.Session.RedisAddr)
	v.Set("session.redis_prefix", cfg.Session.RedisPrefix)
	v.Set("session.redis_password_env", cfg.Session.RedisPasswordEnv)
	v.Set("session.ttl", cfg.Session.TTL.String())
	v.Set("session.check_interval", cfg.Session.CheckInterval.String())
	v.Set("session.issuer", cfg.Session.Issuer)
	v.Set("session.key_dir", cfg.Session.KeyDir)
	v.Set("auth.seed_user", cfg.Auth.SeedUser)
	v.Set("ui.fade_duration", cfg.UI.FadeDuration.String())
	v.Set("ui.frame_interval", cfg.UI.FrameInterval.String())
	v.Set("log.path", cfg.Log.Path)
	v.Set("debug", cfg.Debug)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
