// Package config resolves markview settings from defaults, an optional config
// file and MARKVIEW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/glamour/styles"
	"github.com/spf13/viper"

	"github.com/erkantaylan/markview/internal/logger"
	"github.com/erkantaylan/markview/internal/markdown"
	"github.com/erkantaylan/markview/internal/viewstate"
)

const appName = "markview"

// Config is the resolved configuration.
type Config struct {
	Host      string          `mapstructure:"host"`
	Port      int             `mapstructure:"port"`
	Theme     string          `mapstructure:"theme"`
	Highlight HighlightConfig `mapstructure:"highlight"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Log       LogConfig       `mapstructure:"log"`
	View      ViewConfig      `mapstructure:"view"`
}

type HighlightConfig struct {
	Light string `mapstructure:"light"`
	Dark  string `mapstructure:"dark"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type ViewConfig struct {
	Width int    `mapstructure:"width"`
	Style string `mapstructure:"style"`
}

// applyDefaults seeds Viper with the defaults from GetConfigOptions.
func applyDefaults(v *viper.Viper) {
	for _, o := range GetConfigOptions() {
		v.SetDefault(o.Key, o.Default)
	}
}

// SearchPaths lists the directories searched for config.yaml, in order.
func SearchPaths() []string {
	paths := []string{filepath.Join(xdg.ConfigHome, appName)}
	if home, err := os.UserHomeDir(); err == nil {
		if p := filepath.Join(home, ".config", appName); p != paths[0] {
			paths = append(paths, p)
		}
	}
	return append(paths, ".")
}

// DefaultConfigPath is where a new config file is written.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

// Load resolves configuration with precedence: defaults < file < env.
// Flags bound to v by the caller take precedence over all three. A missing
// config file is not an error unless one was set explicitly.
func Load(v *viper.Viper) error {
	explicit := v.ConfigFileUsed() != ""
	if !explicit {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, p := range SearchPaths() {
			v.AddConfigPath(p)
		}
	}

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix(appName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return nil
}

// FromViper decodes and validates the merged settings.
func FromViper(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Host) == "" {
		errs = append(errs, errors.New("host is required"))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range 1-65535", c.Port))
	}
	if _, err := viewstate.ParseTheme(c.Theme); err != nil {
		errs = append(errs, err)
	}
	if !markdown.HasStyle(c.Highlight.Light) {
		errs = append(errs, fmt.Errorf("highlight.light: unknown style '%s'", c.Highlight.Light))
	}
	if !markdown.HasStyle(c.Highlight.Dark) {
		errs = append(errs, fmt.Errorf("highlight.dark: unknown style '%s'", c.Highlight.Dark))
	}
	if c.Watch.Debounce <= 0 {
		errs = append(errs, errors.New("watch.debounce must be greater than 0"))
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.View.Width < 20 {
		errs = append(errs, errors.New("view.width must be at least 20"))
	}
	if _, ok := styles.DefaultStyles[c.View.Style]; !ok && c.View.Style != "auto" {
		errs = append(errs, fmt.Errorf("view.style: unknown style '%s'", c.View.Style))
	}
	return errors.Join(errs...)
}

// InitialTheme returns the parsed theme, falling back to system.
func (c Config) InitialTheme() viewstate.Theme {
	t, err := viewstate.ParseTheme(c.Theme)
	if err != nil {
		return viewstate.ThemeSystem
	}
	return t
}
