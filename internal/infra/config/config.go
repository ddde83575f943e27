// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/osa030/touchdeck/internal/domain/widget"
)

// Environment variables that override file values.
const (
	EnvTracks      = "TOUCHDECK_TRACKS"
	EnvPreferences = "TOUCHDECK_PREFERENCES"
)

// Config represents the application configuration.
type Config struct {
	Display     DisplayConfig           `yaml:"display"`
	Input       InputConfig             `yaml:"input"`
	Stats       StatsConfig             `yaml:"stats"`
	Title       TitleConfig             `yaml:"title"`
	Playback    PlaybackConfig          `yaml:"playback"`
	Catalog     CatalogConfig           `yaml:"catalog"`
	Preferences PreferencesConfig       `yaml:"preferences"`
	Filters     map[string]FilterConfig `yaml:"filters"`
	Hooks       HooksConfig             `yaml:"hooks"`
	QueueSize   int                     `yaml:"queue_size" default:"64" validate:"gte=1,lte=4096"`
}

// DisplayConfig represents the panel configuration.
type DisplayConfig struct {
	Width  int `yaml:"width" default:"800" validate:"gte=320"`
	Height int `yaml:"height" default:"480" validate:"gte=240"`
	FPS    int `yaml:"fps" default:"30" validate:"gte=1,lte=120"`
}

// InputConfig represents input handling configuration.
type InputConfig struct {
	CooldownMs int `yaml:"cooldown_ms" default:"300" validate:"gte=0,lte=5000"`
}

// StatsConfig represents stats sampling configuration.
type StatsConfig struct {
	PeriodMs int `yaml:"period_ms" default:"1000" validate:"gte=100,lte=60000"`
}

// TitleConfig represents title label configuration.
type TitleConfig struct {
	ScrollSpeedPx int `yaml:"scroll_speed_px" default:"90" validate:"gte=1"`
	GlyphWidthPx  int `yaml:"glyph_width_px" default:"28" validate:"gte=1"`
}

// PlaybackConfig represents playback preference defaults.
type PlaybackConfig struct {
	AutoPlay           bool `yaml:"auto_play"`
	ContinuePlayback   bool `yaml:"continue_playback"`
	ProgressIntervalMs int  `yaml:"progress_interval_ms" default:"1000" validate:"gte=10,lte=60000"`
}

// CatalogConfig represents the track list.
type CatalogConfig struct {
	Tracks []string `yaml:"tracks"`
	Wrap   *bool    `yaml:"wrap" default:"true"`
}

// PreferencesConfig represents the preference store.
type PreferencesConfig struct {
	Path string `yaml:"path"`
}

// FilterConfig represents a filter's configuration.
type FilterConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// HooksConfig represents hook commands configuration.
type HooksConfig struct {
	OnTrackChanged []string `yaml:"on_track_changed"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Parse parses configuration from YAML data.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg, err := Parse(nil)
	if err != nil {
		// defaults always validate
		panic(err)
	}
	return cfg
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv(EnvTracks); v != "" {
		tracks := make([]string, 0)
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tracks = append(tracks, t)
			}
		}
		c.Catalog.Tracks = tracks
	}
	if v := os.Getenv(EnvPreferences); v != "" {
		c.Preferences.Path = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}

// IsFilterEnabled checks if a filter is enabled.
func (c *Config) IsFilterEnabled(filterName string) bool {
	if f, ok := c.Filters[filterName]; ok {
		return f.Enabled
	}
	return false
}

// Layout returns the player layout for the configured panel.
func (c *Config) Layout() widget.Layout {
	return widget.DefaultLayout(c.Display.Width, c.Display.Height)
}

// Cooldown returns the input cooldown.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.Input.CooldownMs) * time.Millisecond
}

// StatsPeriod returns the stats sampling period.
func (c *Config) StatsPeriod() time.Duration {
	return time.Duration(c.Stats.PeriodMs) * time.Millisecond
}

// ProgressInterval returns the position report interval.
func (c *Config) ProgressInterval() time.Duration {
	return time.Duration(c.Playback.ProgressIntervalMs) * time.Millisecond
}

// WrapCatalog reports whether adjacent lookups wrap around.
func (c *Config) WrapCatalog() bool {
	return c.Catalog.Wrap == nil || *c.Catalog.Wrap
}
