// File: internal/config/config.go
package config

import (
	"fmt"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Engine() EngineConfig
	Query() QueryConfig

	// Flag overrides applied by the CLI after loading.
	SetEngineHTMLDocuments(bool)
	SetQueryConcurrency(int)
	SetQueryFormat(string)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg LoggerConfig `mapstructure:"logger" yaml:"logger"`
	EngineCfg EngineConfig `mapstructure:"engine" yaml:"engine"`
	QueryCfg  QueryConfig  `mapstructure:"query" yaml:"query"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig { return c.LoggerCfg }
func (c *Config) Engine() EngineConfig { return c.EngineCfg }
func (c *Config) Query() QueryConfig   { return c.QueryCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetEngineHTMLDocuments(b bool) { c.EngineCfg.HTMLDocuments = b }
func (c *Config) SetQueryConcurrency(n int)     { c.QueryCfg.Concurrency = n }
func (c *Config) SetQueryFormat(f string)       { c.QueryCfg.DefaultFormat = f }

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

// EngineConfig configures the documents the CLI creates.
type EngineConfig struct {
	// HTMLDocuments selects HTML semantics (lowercased names, no CDATA) for
	// documents built from markup.
	HTMLDocuments     bool `mapstructure:"html_documents" yaml:"html_documents"`
	SelectorCacheSize int  `mapstructure:"selector_cache_size" yaml:"selector_cache_size"`
}

// QueryConfig configures the query and dump commands.
type QueryConfig struct {
	Concurrency   int    `mapstructure:"concurrency" yaml:"concurrency"`
	MaxInputBytes int64  `mapstructure:"max_input_bytes" yaml:"max_input_bytes"`
	DefaultFormat string `mapstructure:"default_format" yaml:"default_format"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "domkit")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Engine --
	v.SetDefault("engine.html_documents", true)
	v.SetDefault("engine.selector_cache_size", 128)

	// -- Query --
	v.SetDefault("query.concurrency", 4)
	v.SetDefault("query.max_input_bytes", 32<<20)
	v.SetDefault("query.default_format", "text")
}

// SearchPaths returns the directories searched for config.yaml: the working
// directory, then ~/.domkit when the home directory can be resolved.
func SearchPaths() []string {
	paths := []string{"."}
	if home, err := homedir.Dir(); err == nil {
		paths = append(paths, filepath.Join(home, ".domkit"))
	}
	return paths
}

// ExpandPath resolves a leading ~ in user supplied paths such as --config
// or logger.log_file.
func ExpandPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	expanded, err := homedir.Expand(p)
	if err != nil {
		return "", fmt.Errorf("expanding %q: %w", p, err)
	}
	return expanded, nil
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	logFile, err := ExpandPath(cfg.LoggerCfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("invalid logger.log_file: %w", err)
	}
	cfg.LoggerCfg.LogFile = logFile

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.EngineCfg.SelectorCacheSize <= 0 {
		return fmt.Errorf("engine.selector_cache_size must be a positive integer")
	}
	if err := c.QueryCfg.Validate(); err != nil {
		return fmt.Errorf("query configuration invalid: %w", err)
	}
	return nil
}

// Validate checks the QueryConfig settings.
func (q *QueryConfig) Validate() error {
	if q.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be a positive integer")
	}
	if q.MaxInputBytes <= 0 {
		return fmt.Errorf("max_input_bytes must be a positive integer")
	}
	switch q.DefaultFormat {
	case "text", "json":
	default:
		return fmt.Errorf("default_format must be text or json, got %q", q.DefaultFormat)
	}
	return nil
}
