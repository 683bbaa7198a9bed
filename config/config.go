// Package config contains the configuration of the solrsync tools.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/esgf/solrsync/config/mapstructureutil"
	"github.com/esgf/solrsync/filesystem"
	"github.com/esgf/solrsync/metrics"
	"github.com/esgf/solrsync/reconcile"
	"github.com/esgf/solrsync/solr"
)

const (
	defaultDataDirName = ".solrsync"
	lockFileName       = "LOCK"
	databaseFileName   = "state.sql"
)

// Config defines the top level configuration of a session.
type Config struct {
	BaseConfig `mapstructure:"main"`
	Source     solr.Config      `mapstructure:"source"`
	Target     solr.Config      `mapstructure:"target"`
	Sync       reconcile.Config `mapstructure:"sync"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Logging    LoggerConfig     `mapstructure:"logging"`
}

// BaseConfig defines options that are not specific to a component.
type BaseConfig struct {
	DataDirParent string `mapstructure:"data-folder"`
	ConfigFile    string `mapstructure:"config"`
	Preset        string `mapstructure:"preset"`
	// Report is the path of the json session report. Empty disables it.
	Report string `mapstructure:"report"`
	// NoCheckpoints disables the state database.
	NoCheckpoints bool `mapstructure:"no-checkpoints"`
}

// MetricsConfig controls how metrics leave the process.
type MetricsConfig struct {
	// Listen serves /metrics while the session runs. Empty disables it.
	Listen string             `mapstructure:"listen"`
	Push   metrics.PushConfig `mapstructure:"push"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BaseConfig: BaseConfig{
			DataDirParent: filepath.Join("~", defaultDataDirName),
		},
		Source:  solr.DefaultConfig(),
		Target:  solr.DefaultConfig(),
		Sync:    reconcile.DefaultConfig(),
		Logging: defaultLoggingConfig(),
	}
}

// DataDir returns the tilde-expanded data directory.
func (cfg *Config) DataDir() string {
	return filesystem.ExpandPath(cfg.DataDirParent)
}

// LockFile is the file locked while a session writes to the target.
// Every target has its own lock.
func (cfg *Config) LockFile() string {
	return filepath.Join(cfg.DataDir(), lockName(cfg.Target.URL)+"."+lockFileName)
}

// DatabaseFile is the state database holding checkpoints and session history.
func (cfg *Config) DatabaseFile() string {
	return filepath.Join(cfg.DataDir(), databaseFileName)
}

func lockName(url string) string {
	url = strings.TrimPrefix(strings.TrimPrefix(url, "http://"), "https://")
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, url)
}

// Validate checks the whole configuration.
func (cfg *Config) Validate() error {
	var errs []error
	if cfg.Source.URL == "" {
		errs = append(errs, errors.New("source url is required"))
	}
	if cfg.Target.URL == "" {
		errs = append(errs, errors.New("target url is required"))
	}
	if cfg.Source.URL != "" && strings.TrimRight(cfg.Source.URL, "/") == strings.TrimRight(cfg.Target.URL, "/") {
		errs = append(errs, fmt.Errorf("source and target are the same index %s", cfg.Source.URL))
	}
	if err := cfg.Sync.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// LoadConfig reads the config file into vip.
func LoadConfig(fileLocation string, vip *viper.Viper) error {
	vip.SetConfigFile(fileLocation)
	if err := vip.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %w", fileLocation, err)
	}
	return nil
}

// Unmarshal decodes the values loaded into vip on top of cfg.
// Unknown keys are an error.
func Unmarshal(vip *viper.Viper, cfg *Config) error {
	hook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructureutil.ReplacementsDecodeFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
	opts := []viper.DecoderConfigOption{
		viper.DecodeHook(hook),
		WithZeroFields(),
		WithIgnoreUntagged(),
		WithErrorUnused(),
	}
	if err := vip.Unmarshal(cfg, opts...); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

func WithZeroFields() viper.DecoderConfigOption {
	return func(cfg *mapstructure.DecoderConfig) {
		cfg.ZeroFields = true
	}
}

func WithIgnoreUntagged() viper.DecoderConfigOption {
	return func(cfg *mapstructure.DecoderConfig) {
		cfg.IgnoreUntaggedFields = true
	}
}

func WithErrorUnused() viper.DecoderConfigOption {
	return func(cfg *mapstructure.DecoderConfig) {
		cfg.ErrorUnused = true
	}
}
