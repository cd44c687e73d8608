// Package config loads the portfolio host configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	scrollspy "github.com/grindlemire/go-scrollspy"
)

// EnvPrefix prefixes environment overrides, e.g. SCROLLSPY_ROOT_MARGIN.
const EnvPrefix = "SCROLLSPY"

// Config holds the portfolio host configuration.
type Config struct {
	Sections   []Section `mapstructure:"sections"`
	RootMargin string    `mapstructure:"root_margin"`
	Fallback   bool      `mapstructure:"fallback"`
	FrameRate  int       `mapstructure:"frame_rate"`
	Log        LogConfig `mapstructure:"log"`
}

// Section is one page section. A Height of zero makes it one viewport
// tall.
type Section struct {
	ID     string `mapstructure:"id"`
	Title  string `mapstructure:"title"`
	Height int    `mapstructure:"height"`
}

// LogConfig selects where the host writes its log.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

// Band parses RootMargin.
func (c Config) Band() (scrollspy.Band, error) {
	return scrollspy.ParseBand(c.RootMargin)
}

// DefaultSections are the portfolio's four sections in page order.
func DefaultSections() []Section {
	return []Section{
		{ID: "home", Title: "Início"},
		{ID: "about", Title: "Sobre"},
		{ID: "projects", Title: "Projetos"},
		{ID: "contact", Title: "Contato"},
	}
}

// Loader reads configuration from an optional TOML or YAML file and the
// environment. It keeps its viper instance so the file can be watched.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader for path. An empty path falls back to
// $SCROLLSPY_CONFIG, then $HOME/.config/scrollspy/config.toml.
func NewLoader(path string) *Loader {
	v := viper.New()

	// default values
	sections := make([]map[string]any, 0, 4)
	for _, s := range DefaultSections() {
		sections = append(sections, map[string]any{"id": s.ID, "title": s.Title, "height": s.Height})
	}
	v.SetDefault("sections", sections)
	v.SetDefault("root_margin", scrollspy.DefaultBand().String())
	v.SetDefault("fallback", true)
	v.SetDefault("frame_rate", 30)
	v.SetDefault("log.path", "")
	v.SetDefault("log.level", "info")

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		// The extension picks the format, e.g. .toml or .yaml.
		v.SetConfigFile(path)
	} else {
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "scrollspy"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return &Loader{v: v}
}

// Load reads the config file if present and returns the validated
// configuration. A missing default file is not an error; a missing
// explicit file is.
func (l *Loader) Load() (Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return l.decode()
}

// File returns the config file in use, or "" if none was found.
func (l *Loader) File() string {
	return l.v.ConfigFileUsed()
}

// Watch calls fn with the reloaded configuration each time the config
// file is written. fn runs on the watcher's goroutine.
func (l *Loader) Watch(fn func(Config, error)) error {
	if l.File() == "" {
		return errors.New("config: no config file to watch")
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		l.changed(e, fn)
	})
	l.v.WatchConfig()
	return nil
}

func (l *Loader) changed(e fsnotify.Event, fn func(Config, error)) {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
		return
	}
	fn(l.decode())
}

func (l *Loader) decode() (Config, error) {
	var c Config
	if err := l.v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks that sections are present with unique ids, that the
// root margin parses, and that the frame rate is positive.
func (c Config) Validate() error {
	if len(c.Sections) == 0 {
		return errors.New("config: no sections")
	}
	seen := make(map[string]bool, len(c.Sections))
	for i, s := range c.Sections {
		if s.ID == "" {
			return fmt.Errorf("config: section %d: empty id", i)
		}
		if seen[s.ID] {
			return fmt.Errorf("config: duplicate section %q", s.ID)
		}
		seen[s.ID] = true
	}
	if _, err := c.Band(); err != nil {
		return fmt.Errorf("config: root_margin: %w", err)
	}
	if c.FrameRate <= 0 {
		return fmt.Errorf("config: frame_rate must be positive, got %d", c.FrameRate)
	}
	return nil
}
