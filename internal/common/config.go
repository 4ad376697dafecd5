package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the ticker service
type Config struct {
	Environment string        `toml:"environment" yaml:"environment"`
	Server      ServerConfig  `toml:"server" yaml:"server"`
	Clients     ClientsConfig `toml:"clients" yaml:"clients"`
	Widget      WidgetConfig  `toml:"widget" yaml:"widget"`
	Logging     LoggingConfig `toml:"logging" yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host" yaml:"host"`
	Port int    `toml:"port" yaml:"port"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Polygon PolygonConfig `toml:"polygon" yaml:"polygon"`
}

// PolygonConfig holds market-data API configuration
type PolygonConfig struct {
	BaseURL   string `toml:"base_url" yaml:"base_url"`
	APIKey    string `toml:"api_key" yaml:"api_key"`
	RateLimit int    `toml:"rate_limit" yaml:"rate_limit"`
	Timeout   string `toml:"timeout" yaml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *PolygonConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// WidgetConfig holds defaults applied when a request leaves a field unset
type WidgetConfig struct {
	DefaultWeeks int     `toml:"default_weeks" yaml:"default_weeks"`
	CanvasWidth  float64 `toml:"canvas_width" yaml:"canvas_width"`
	CanvasHeight float64 `toml:"canvas_height" yaml:"canvas_height"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string   `toml:"level" yaml:"level"`
	Format     string   `toml:"format" yaml:"format"`
	Outputs    []string `toml:"outputs" yaml:"outputs"`
	FilePath   string   `toml:"file_path" yaml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups" yaml:"max_backups"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Clients: ClientsConfig{
			Polygon: PolygonConfig{
				BaseURL:   "https://api.polygon.io",
				RateLimit: 5,
				Timeout:   "15s",
			},
		},
		Widget: WidgetConfig{
			DefaultWeeks: 2,
			CanvasWidth:  150,
			CanvasHeight: 60,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Outputs:    []string{"console"},
			FilePath:   "./logs/ticker.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := unmarshalConfig(path, data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// unmarshalConfig decodes YAML for .yaml/.yml files and TOML otherwise.
func unmarshalConfig(path string, data []byte, config *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, config)
	default:
		return toml.Unmarshal(data, config)
	}
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("TICKER_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("TICKER_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("TICKER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("TICKER_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if v := os.Getenv("TICKER_POLYGON_BASE_URL"); v != "" {
		config.Clients.Polygon.BaseURL = v
	}

	if v := os.Getenv("TICKER_DEFAULT_WEEKS"); v != "" {
		if w, err := strconv.Atoi(v); err == nil {
			config.Widget.DefaultWeeks = w
		}
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolveAPIKey resolves an API key from environment or the configured fallback
func ResolveAPIKey(name string, fallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"polygon_api_key": {"POLYGON_API_KEY", "TICKER_POLYGON_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or config", name)
}
