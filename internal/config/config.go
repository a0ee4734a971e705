// Package config loads codetour settings with Viper from a YAML file
// (.codetour.yml by default), CODETOUR_ environment variables and command
// line flags, applies defaults and validates the result.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/conneroisu/codetour/internal/loader"
	"github.com/conneroisu/codetour/internal/logging"
	"github.com/conneroisu/codetour/internal/reference"
	"github.com/conneroisu/codetour/internal/tour"
)

// EnvPrefix prefixes every environment override, e.g. CODETOUR_SERVER_PORT.
const EnvPrefix = "CODETOUR"

type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Content ContentConfig `mapstructure:"content" yaml:"content"`
	Loader  LoaderConfig  `mapstructure:"loader" yaml:"loader"`
	Viewer  ViewerConfig  `mapstructure:"viewer" yaml:"viewer"`
	Tour    TourConfig    `mapstructure:"tour" yaml:"tour"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

type ServerConfig struct {
	Host           string        `mapstructure:"host" yaml:"host"`
	Port           int           `mapstructure:"port" yaml:"port"`
	AllowedOrigins []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	SessionTTL     time.Duration `mapstructure:"session_ttl" yaml:"session_ttl"`
	MaxSessions    int           `mapstructure:"max_sessions" yaml:"max_sessions"`
	Environment    string        `mapstructure:"environment" yaml:"environment"`
}

type ContentConfig struct {
	// Root is the directory code files are served from.
	Root string `mapstructure:"root" yaml:"root"`
	// Tours is the directory holding *.tour.yaml documents, relative to Root.
	Tours string `mapstructure:"tours" yaml:"tours"`
	// Static optionally overrides the embedded page assets.
	Static string `mapstructure:"static" yaml:"static"`
}

type LoaderConfig struct {
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Concurrency int           `mapstructure:"concurrency" yaml:"concurrency"`
	MaxBytes    int64         `mapstructure:"max_bytes" yaml:"max_bytes"`
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url"`
}

type ViewerConfig struct {
	Style         string `mapstructure:"style" yaml:"style"`
	DarkStyle     string `mapstructure:"dark_style" yaml:"dark_style"`
	LineNumbers   bool   `mapstructure:"line_numbers" yaml:"line_numbers"`
	TitleCaseTabs bool   `mapstructure:"title_case_tabs" yaml:"title_case_tabs"`
}

type TourConfig struct {
	Interaction string        `mapstructure:"interaction" yaml:"interaction"`
	Markdown    bool          `mapstructure:"markdown" yaml:"markdown"`
	Watch       bool          `mapstructure:"watch" yaml:"watch"`
	Debounce    time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.session_ttl", 30*time.Minute)
	v.SetDefault("server.max_sessions", 1000)
	v.SetDefault("server.environment", "development")

	v.SetDefault("content.root", ".")
	v.SetDefault("content.tours", "tours")
	v.SetDefault("content.static", "")

	defaults := loader.DefaultConfig()
	v.SetDefault("loader.timeout", defaults.Timeout)
	v.SetDefault("loader.concurrency", defaults.Concurrency)
	v.SetDefault("loader.max_bytes", defaults.MaxBytes)
	v.SetDefault("loader.base_url", "")

	v.SetDefault("viewer.style", "github")
	v.SetDefault("viewer.dark_style", "monokai")
	v.SetDefault("viewer.line_numbers", true)
	v.SetDefault("viewer.title_case_tabs", false)

	v.SetDefault("tour.interaction", string(reference.Persistent))
	v.SetDefault("tour.markdown", true)
	v.SetDefault("tour.watch", true)
	v.SetDefault("tour.debounce", 200*time.Millisecond)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads, defaults and validates the configuration held by v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}

	// viper leaves slices set from env vars as a single string
	if v.IsSet("server.allowed_origins") && len(config.Server.AllowedOrigins) == 0 {
		config.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// LoaderConfig converts the loader section.
func (c *Config) LoaderConfig() loader.Config {
	return loader.Config{
		Timeout:     c.Loader.Timeout,
		Concurrency: c.Loader.Concurrency,
		MaxBytes:    c.Loader.MaxBytes,
		BaseURL:     c.Loader.BaseURL,
	}
}

// LoggerConfig converts the log section. Validation has already accepted
// the level.
func (c *Config) LoggerConfig() *logging.LoggerConfig {
	lc := logging.DefaultConfig()
	if level, err := logging.ParseLevel(c.Log.Level); err == nil {
		lc.Level = level
	}
	lc.Format = c.Log.Format
	lc.AddSource = c.Server.Environment == "development" && lc.Level == logging.LevelDebug
	return lc
}

// TourOptions converts the tour and viewer sections.
func (c *Config) TourOptions(logger logging.Logger) tour.Options {
	mode, err := reference.ParseMode(c.Tour.Interaction)
	if err != nil {
		mode = reference.Persistent
	}
	return tour.Options{
		Interaction:   mode,
		Markdown:      c.Tour.Markdown,
		LineNumbers:   c.Viewer.LineNumbers,
		TitleCaseTabs: c.Viewer.TitleCaseTabs,
		Logger:        logger,
	}
}
