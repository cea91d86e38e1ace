package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/coderunr/editor/internal/catalogue"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	// Server configuration
	LogLevel         string   `mapstructure:"log_level"`
	BindAddress      string   `mapstructure:"bind_address"`
	RequestBodyLimit int64    `mapstructure:"request_body_limit"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`

	// Execution service
	ExecuteURL     string        `mapstructure:"execute_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// Editor sessions
	DefaultLanguage    string        `mapstructure:"default_language"`
	MaxSessions        int           `mapstructure:"max_sessions"`
	SessionIdleTimeout time.Duration `mapstructure:"session_idle_timeout"`
	ReapInterval       time.Duration `mapstructure:"reap_interval"`
}

// Load loads configuration from a .env file, environment variables and
// config files, in increasing order of precedence for the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	// Set default values
	v.SetDefault("log_level", "INFO")
	v.SetDefault("bind_address", "0.0.0.0:2100")
	v.SetDefault("request_body_limit", 1<<20)
	v.SetDefault("allowed_origins", []string{"*"})
	v.SetDefault("execute_url", "http://localhost:3000/api/execute/")
	v.SetDefault("request_timeout", "60s")
	v.SetDefault("default_language", string(catalogue.Default))
	v.SetDefault("max_sessions", 256)
	v.SetDefault("session_idle_timeout", "30m")
	v.SetDefault("reap_interval", "1m")

	// Set environment variable prefix
	v.SetEnvPrefix("CODERUNR")
	v.AutomaticEnv()

	// Try to read config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/coderunr/")
	v.AddConfigPath("$HOME/.coderunr/")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validate validates the configuration
func validate(config *Config) error {
	if _, err := logrus.ParseLevel(config.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %s", config.LogLevel)
	}

	u, err := url.Parse(config.ExecuteURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("execute_url must be an absolute http(s) URL: %q", config.ExecuteURL)
	}

	if _, err := catalogue.Builtin().Parse(config.DefaultLanguage); err != nil {
		return fmt.Errorf("default_language: %w", err)
	}

	if config.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must be non-negative")
	}

	if config.MaxSessions <= 0 {
		return fmt.Errorf("max_sessions must be positive")
	}

	if config.SessionIdleTimeout <= 0 {
		return fmt.Errorf("session_idle_timeout must be positive")
	}

	if config.ReapInterval <= 0 {
		return fmt.Errorf("reap_interval must be positive")
	}

	return nil
}

// GetBindAddress returns the complete bind address
func (c *Config) GetBindAddress() string {
	if c.BindAddress == "" {
		return "0.0.0.0:2100"
	}
	return c.BindAddress
}

// GetLogLevel returns the parsed log level
func (c *Config) GetLogLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// GetDefaultLanguage returns the validated default language
func (c *Config) GetDefaultLanguage() catalogue.LanguageID {
	id, err := catalogue.Builtin().Parse(c.DefaultLanguage)
	if err != nil {
		return catalogue.Default
	}
	return id
}
