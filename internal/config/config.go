// File: internal/config/config.go
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Render() RenderConfig
	Output() OutputConfig

	// Render Setters
	SetRenderViewportWidth(int)
	SetRenderViewportHeight(int)
	SetRenderBaseURL(string)
	SetRenderConcurrency(int)

	// Output Setters
	SetOutputFormat(string)
	SetOutputAboveFoldOnly(bool)
}

// Config holds the entire application configuration. It uses private fields
// to enforce access through the Interface's getter methods.
type Config struct {
	logger LoggerConfig `mapstructure:"logger" yaml:"logger"`
	render RenderConfig `mapstructure:"render" yaml:"render"`
	output OutputConfig `mapstructure:"output" yaml:"output"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig { return c.logger }
func (c *Config) Render() RenderConfig { return c.render }
func (c *Config) Output() OutputConfig { return c.output }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetRenderViewportWidth(w int)  { c.render.ViewportWidth = w }
func (c *Config) SetRenderViewportHeight(h int) { c.render.ViewportHeight = h }
func (c *Config) SetRenderBaseURL(u string)     { c.render.BaseURL = u }
func (c *Config) SetRenderConcurrency(n int)    { c.render.Concurrency = n }

func (c *Config) SetOutputFormat(f string)      { c.output.Format = f }
func (c *Config) SetOutputAboveFoldOnly(b bool) { c.output.AboveFoldOnly = b }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// RenderConfig holds the settings of the parse pipeline itself.
type RenderConfig struct {
	ViewportWidth  int    `mapstructure:"viewport_width" yaml:"viewport_width"`
	ViewportHeight int    `mapstructure:"viewport_height" yaml:"viewport_height"`
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"`
	// Stylesheets are paths to extra CSS files applied after document styles.
	Stylesheets []string `mapstructure:"stylesheets" yaml:"stylesheets"`
	// Concurrency bounds the batch fan-out of the render command.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
}

// OutputConfig controls the serialized form of the Spatial DOM.
type OutputConfig struct {
	// Format is "compact" or "json".
	Format        string `mapstructure:"format" yaml:"format"`
	Pretty        bool   `mapstructure:"pretty" yaml:"pretty"`
	AboveFoldOnly bool   `mapstructure:"above_fold_only" yaml:"above_fold_only"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	cfg, err := NewConfigFromViper(v)
	if err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to build default config: %v", err))
	}
	return cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "browsy-core")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Render --
	v.SetDefault("render.viewport_width", 1280)
	v.SetDefault("render.viewport_height", 720)
	v.SetDefault("render.base_url", "")
	v.SetDefault("render.concurrency", 4)

	// -- Output --
	v.SetDefault("output.format", "compact")
	v.SetDefault("output.pretty", false)
	v.SetDefault("output.above_fold_only", false)
}

// NewConfigFromViper creates a new configuration instance from a viper
// object. Sections unmarshal individually because the top-level fields are
// unexported.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	sections := map[string]any{
		"logger": &cfg.logger,
		"render": &cfg.render,
		"output": &cfg.output,
	}
	for key, target := range sections {
		if err := v.UnmarshalKey(key, target); err != nil {
			return nil, fmt.Errorf("error unmarshaling %s config: %w", key, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.render.ViewportWidth <= 0 || c.render.ViewportHeight <= 0 {
		return fmt.Errorf("render viewport must be a positive size")
	}
	if c.render.Concurrency <= 0 {
		return fmt.Errorf("render.concurrency must be a positive integer")
	}
	switch c.output.Format {
	case "compact", "json":
	default:
		return fmt.Errorf("output.format must be one of compact, json; got %q", c.output.Format)
	}
	return nil
}
