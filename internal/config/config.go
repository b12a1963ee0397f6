// Package config loads nodeprism settings from defaults, an optional YAML
// config file and NODEPRISM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/CaptShanks/nodeprism/internal/compare"
)

const (
	// EnvPrefix is prepended to every environment override
	EnvPrefix = "NODEPRISM"
	// AppDir is the per-user directory for config, history and caches
	AppDir = ".nodeprism"
	// FileName is the config file looked up in AppDir
	FileName = "config.yaml"

	ThemeAuto  = "auto"
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Config holds all application configuration.
type Config struct {
	Theme               string        `mapstructure:"theme"`
	SkipUpdateCheck     bool          `mapstructure:"skip_update_check"`
	UpdateCheckInterval int           `mapstructure:"update_check_interval"`
	History             HistoryConfig `mapstructure:"history"`
	Compare             CompareConfig `mapstructure:"compare"`
	Log                 LogConfig     `mapstructure:"log"`
}

type HistoryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	MaxFiles int    `mapstructure:"max_files"`
	Dir      string `mapstructure:"dir"`
}

type CompareConfig struct {
	Normalize      bool     `mapstructure:"normalize"`
	IdentityFields []string `mapstructure:"identity_fields"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Validate checks configuration for issues and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	switch c.Theme {
	case ThemeAuto, ThemeLight, ThemeDark:
	default:
		warnings = append(warnings, fmt.Sprintf("theme %q is not one of auto, light, dark; using auto", c.Theme))
		c.Theme = ThemeAuto
	}

	if c.UpdateCheckInterval <= 0 {
		warnings = append(warnings, fmt.Sprintf("update_check_interval %d is not positive; using 7", c.UpdateCheckInterval))
		c.UpdateCheckInterval = 7
	}

	if c.History.MaxFiles < 0 {
		warnings = append(warnings, fmt.Sprintf("history.max_files %d is negative; keeping all files", c.History.MaxFiles))
		c.History.MaxFiles = 0
	}

	if len(c.Compare.IdentityFields) == 0 {
		c.Compare.IdentityFields = append([]string(nil), compare.DefaultIdentityFields...)
	}

	return warnings
}

// Dir returns the per-user application directory
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, AppDir), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("theme", ThemeAuto)
	v.SetDefault("skip_update_check", false)
	v.SetDefault("update_check_interval", 7)
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.max_files", 50)
	v.SetDefault("history.dir", "")
	v.SetDefault("compare.normalize", true)
	v.SetDefault("compare.identity_fields", compare.DefaultIdentityFields)
	v.SetDefault("log.level", "warn")
}

// Load reads configuration from file and environment. An explicit path must
// exist; without one ~/.nodeprism/config.yaml is used when present.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else if dir, err := Dir(); err == nil {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// HistoryDir returns the directory history files are written to
func (c *Config) HistoryDir() (string, error) {
	if c.History.Dir != "" {
		return c.History.Dir, nil
	}
	return Dir()
}
