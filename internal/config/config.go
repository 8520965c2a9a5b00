// Package config provides YAML-based configuration loading for Sentimeter.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Oracle providers.
const (
	ProviderGateway   = "gateway"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Database drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Batch backoff policies.
const (
	BackoffFixed       = "fixed"
	BackoffExponential = "exponential"
)

// DefaultGatewayURL is the OpenAI-compatible AI gateway used when no base_url is set.
const DefaultGatewayURL = "https://ai.gateway.lovable.dev/v1"

// Config is the top-level Sentimeter configuration, loaded from sentimeter.yaml.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Oracle   OracleConfig   `yaml:"oracle"`
	Batch    BatchConfig    `yaml:"batch"`
	History  HistoryConfig  `yaml:"history"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`
	CORSOrigins  []string      `yaml:"cors_origins"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig selects and configures the job/history store.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// OracleConfig configures the external sentiment classifier.
type OracleConfig struct {
	Provider          string        `yaml:"provider"`
	BaseURL           string        `yaml:"base_url"`
	Model             string        `yaml:"model"`
	APIKey            string        `yaml:"api_key"`
	APIKeyEnv         string        `yaml:"api_key_env"`
	Temperature       float64       `yaml:"temperature"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxTokens         int           `yaml:"max_tokens"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
}

// BatchConfig tunes the background batch runner and the stale-job sweeper.
type BatchConfig struct {
	Delay         time.Duration `yaml:"delay"`
	Backoff       string        `yaml:"backoff"`
	MaxDelay      time.Duration `yaml:"max_delay"`
	Multiplier    float64       `yaml:"multiplier"`
	StaleAfter    time.Duration `yaml:"stale_after"`
	SweepSchedule string        `yaml:"sweep_schedule"`
}

// HistoryConfig bounds the analysis history window.
type HistoryConfig struct {
	Limit int `yaml:"limit"`
}

// LoggingConfig selects log level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a Config with every default applied, as if parsed from an empty file.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// ResolvedAPIKey returns the configured API key, falling back to the
// environment variable named by api_key_env.
func (o OracleConfig) ResolvedAPIKey() string {
	if o.APIKey != "" {
		return o.APIKey
	}
	if o.APIKeyEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(o.APIKeyEnv))
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 90 * time.Second
	}

	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			c.Database.Path = "sentimeter.db"
		}
	case DriverMySQL:
		if c.Database.Host == "" {
			c.Database.Host = "127.0.0.1"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 3306
		}
		if c.Database.User == "" {
			c.Database.User = "root"
		}
		if c.Database.Name == "" {
			c.Database.Name = "sentimeter"
		}
	}

	if c.Oracle.Provider == "" {
		c.Oracle.Provider = ProviderGateway
	}
	if c.Oracle.Model == "" {
		switch c.Oracle.Provider {
		case ProviderAnthropic:
			c.Oracle.Model = "claude-sonnet-4-20250514"
		case ProviderGemini:
			c.Oracle.Model = "gemini-2.5-flash"
		default:
			c.Oracle.Model = "google/gemini-2.5-flash"
		}
	}
	if c.Oracle.BaseURL == "" && c.Oracle.Provider == ProviderGateway {
		c.Oracle.BaseURL = DefaultGatewayURL
	}
	if c.Oracle.APIKeyEnv == "" {
		c.Oracle.APIKeyEnv = "SENTIMETER_API_KEY"
	}
	if c.Oracle.Temperature == 0 {
		c.Oracle.Temperature = 0.3
	}
	if c.Oracle.Timeout == 0 {
		c.Oracle.Timeout = 45 * time.Second
	}
	if c.Oracle.MaxTokens == 0 {
		c.Oracle.MaxTokens = 1024
	}

	if c.Batch.Delay == 0 {
		c.Batch.Delay = 100 * time.Millisecond
	}
	if c.Batch.Backoff == "" {
		c.Batch.Backoff = BackoffFixed
	}
	if c.Batch.MaxDelay == 0 {
		c.Batch.MaxDelay = 30 * time.Second
	}
	if c.Batch.Multiplier == 0 {
		c.Batch.Multiplier = 2.0
	}
	if c.Batch.StaleAfter == 0 {
		c.Batch.StaleAfter = time.Hour
	}
	if c.Batch.SweepSchedule == "" {
		c.Batch.SweepSchedule = "*/5 * * * *"
	}

	if c.History.Limit == 0 {
		c.History.Limit = 50
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}

	switch c.Database.Driver {
	case DriverSQLite, DriverMySQL:
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q must be sqlite or mysql", c.Database.Driver))
	}

	switch c.Oracle.Provider {
	case ProviderGateway, ProviderAnthropic, ProviderGemini:
	default:
		errs = append(errs, fmt.Sprintf("oracle.provider %q must be gateway, anthropic or gemini", c.Oracle.Provider))
	}
	if c.Oracle.Temperature < 0 || c.Oracle.Temperature > 2 {
		errs = append(errs, "oracle.temperature must be between 0 and 2")
	}
	if c.Oracle.Timeout < 0 {
		errs = append(errs, "oracle.timeout must not be negative")
	}
	if c.Oracle.RequestsPerSecond < 0 {
		errs = append(errs, "oracle.requests_per_second must not be negative")
	}

	switch c.Batch.Backoff {
	case BackoffFixed, BackoffExponential:
	default:
		errs = append(errs, fmt.Sprintf("batch.backoff %q must be fixed or exponential", c.Batch.Backoff))
	}
	if c.Batch.Delay < 0 {
		errs = append(errs, "batch.delay must not be negative")
	}
	if c.Batch.Multiplier < 1 {
		errs = append(errs, "batch.multiplier must be at least 1")
	}
	if c.Batch.MaxDelay < c.Batch.Delay {
		errs = append(errs, "batch.max_delay must not be less than batch.delay")
	}

	if c.History.Limit < 0 {
		errs = append(errs, "history.limit must not be negative")
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("logging.format %q must be text or json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
