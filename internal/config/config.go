package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Data     DataConfig     `yaml:"data" envconfig:"DATA"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"true"`
}

// DataConfig locates the two source workbooks
type DataConfig struct {
	Dir        string `yaml:"dir" envconfig:"DIR" default:"data"`
	NewsFile   string `yaml:"news_file" envconfig:"NEWS_FILE" default:"merged_output_np.xlsx"`
	StocksFile string `yaml:"stocks_file" envconfig:"STOCKS_FILE" default:"merged_output_stocks.xlsx"`
}

// NewsPath returns the resolved path of the news workbook
func (d DataConfig) NewsPath() string {
	return resolve(d.Dir, d.NewsFile)
}

// StocksPath returns the resolved path of the stocks workbook
func (d DataConfig) StocksPath() string {
	return resolve(d.Dir, d.StocksFile)
}

func resolve(dir, file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(dir, file)
}

// Load loads configuration from environment variables and config file.
// Environment variables take precedence over file values; struct-tag
// defaults fill the rest.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("MARKETDASH", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// getConfigFilePath returns the config file location, overridable via
// MARKETDASH_CONFIG
func getConfigFilePath() string {
	if path := os.Getenv("MARKETDASH_CONFIG"); path != "" {
		return path
	}
	return "config.yaml"
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config. Env values win: file
// values only fill fields the environment left at their zero value after
// envconfig applied defaults, so only fields explicitly set in the file
// and not in the environment differ from the env pass.
func mergeConfigs(fileConfig, envConfig Config) Config {
	out := envConfig

	if fileConfig.Server.Port != 0 && os.Getenv("MARKETDASH_SERVER_PORT") == "" {
		out.Server.Port = fileConfig.Server.Port
	}
	if fileConfig.Server.ReadTimeout != 0 && os.Getenv("MARKETDASH_SERVER_READ_TIMEOUT") == "" {
		out.Server.ReadTimeout = fileConfig.Server.ReadTimeout
	}
	if fileConfig.Server.WriteTimeout != 0 && os.Getenv("MARKETDASH_SERVER_WRITE_TIMEOUT") == "" {
		out.Server.WriteTimeout = fileConfig.Server.WriteTimeout
	}
	if fileConfig.Server.IdleTimeout != 0 && os.Getenv("MARKETDASH_SERVER_IDLE_TIMEOUT") == "" {
		out.Server.IdleTimeout = fileConfig.Server.IdleTimeout
	}
	if fileConfig.Server.ShutdownTimeout != 0 && os.Getenv("MARKETDASH_SERVER_SHUTDOWN_TIMEOUT") == "" {
		out.Server.ShutdownTimeout = fileConfig.Server.ShutdownTimeout
	}

	if len(fileConfig.Security.AllowedOrigins) > 0 && os.Getenv("MARKETDASH_SECURITY_ALLOWED_ORIGINS") == "" {
		out.Security.AllowedOrigins = fileConfig.Security.AllowedOrigins
	}
	if fileConfig.Security.RateLimit.RPS != 0 && os.Getenv("MARKETDASH_SECURITY_RATE_LIMIT_RPS") == "" {
		out.Security.RateLimit.RPS = fileConfig.Security.RateLimit.RPS
	}
	if fileConfig.Security.RateLimit.Burst != 0 && os.Getenv("MARKETDASH_SECURITY_RATE_LIMIT_BURST") == "" {
		out.Security.RateLimit.Burst = fileConfig.Security.RateLimit.Burst
	}

	if fileConfig.Logging.Level != "" && os.Getenv("MARKETDASH_LOGGING_LEVEL") == "" {
		out.Logging.Level = fileConfig.Logging.Level
	}
	if fileConfig.Logging.Format != "" && os.Getenv("MARKETDASH_LOGGING_FORMAT") == "" {
		out.Logging.Format = fileConfig.Logging.Format
	}
	if fileConfig.Logging.Output != "" && os.Getenv("MARKETDASH_LOGGING_OUTPUT") == "" {
		out.Logging.Output = fileConfig.Logging.Output
	}
	if fileConfig.Logging.FilePath != "" && os.Getenv("MARKETDASH_LOGGING_FILE_PATH") == "" {
		out.Logging.FilePath = fileConfig.Logging.FilePath
	}

	if fileConfig.Data.Dir != "" && os.Getenv("MARKETDASH_DATA_DIR") == "" {
		out.Data.Dir = fileConfig.Data.Dir
	}
	if fileConfig.Data.NewsFile != "" && os.Getenv("MARKETDASH_DATA_NEWS_FILE") == "" {
		out.Data.NewsFile = fileConfig.Data.NewsFile
	}
	if fileConfig.Data.StocksFile != "" && os.Getenv("MARKETDASH_DATA_STOCKS_FILE") == "" {
		out.Data.StocksFile = fileConfig.Data.StocksFile
	}

	return out
}

// validate checks configuration invariants
func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid logging format: %s", c.Logging.Format)
	}
	if c.Data.NewsFile == "" || c.Data.StocksFile == "" {
		return fmt.Errorf("both data files must be configured")
	}
	return nil
}
