// Package config loads hxel CLI settings from hxel.yaml, HXEL_* environment
// variables and defaults, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds CLI settings.
type Config struct {
	// Key seals snapshots. Restoring needs the key that saved them.
	Key string `mapstructure:"key"`
	// Addr is the listen address of serve.
	Addr string `mapstructure:"addr"`
	// Store is the snapshot database path. Empty disables snapshots.
	Store string `mapstructure:"store"`
	// Sensitive encrypts snapshots instead of signing them.
	Sensitive bool `mapstructure:"sensitive"`
	// SettleTimeout bounds the wait for deferred work before rendering.
	SettleTimeout time.Duration `mapstructure:"settle_timeout"`
	Log           LogConfig     `mapstructure:"log"`
}

// LogConfig configures the diagnostics logger.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load reads settings. With an empty path, hxel.yaml in the working
// directory is used when present; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("key", "hxel-development-key")
	v.SetDefault("addr", ":8080")
	v.SetDefault("store", "")
	v.SetDefault("sensitive", false)
	v.SetDefault("settle_timeout", "5s")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.development", true)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("hxel")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("HXEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Key == "" {
		return errors.New("config: key must not be empty")
	}
	if c.SettleTimeout <= 0 {
		return fmt.Errorf("config: settle_timeout must be positive, got %s", c.SettleTimeout)
	}
	if _, err := c.level(); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	return nil
}

// Logger builds the diagnostics logger described by the log settings.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := c.level()
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func (c *Config) level() (zapcore.Level, error) {
	var l zapcore.Level
	err := l.UnmarshalText([]byte(c.Log.Level))
	return l, err
}
