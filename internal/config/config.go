package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Fredrickighile/devsecops-pipeline/internal/validate"
)

const (
	DefaultPath    = "config.yaml"
	DefaultAPIBase = "http://localhost:5000/api/scans"

	ProviderHeuristic = "heuristic"
	ProviderOpenAI    = "openai"

	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// LoggerConfig dipakai oleh observability
type LoggerConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"` // console | json
	ServiceName string `yaml:"serviceName"`
	AddSource   bool   `yaml:"addSource"`
	LogFile     string `yaml:"logFile"`
	MaxSize     int    `yaml:"maxSize"` // MB
	MaxBackups  int    `yaml:"maxBackups"`
	MaxAge      int    `yaml:"maxAge"` // days
	Compress    bool   `yaml:"compress"`
}

type Config struct {
	API struct {
		BaseURL       string        `yaml:"baseURL"`
		Timeout       time.Duration `yaml:"timeout"` // 0 = no timeout
		DefaultScanID string        `yaml:"defaultScanID"`
	} `yaml:"api"`

	Analyzer struct {
		Provider          string `yaml:"provider"`
		RequestsPerMinute int    `yaml:"requestsPerMinute"` // 0 = unlimited
		OpenAI            struct {
			APIKey  string `yaml:"apiKey"`
			Model   string `yaml:"model"`
			BaseURL string `yaml:"baseURL"`
		} `yaml:"openai"`
	} `yaml:"analyzer"`

	Audit struct {
		Driver string `yaml:"driver"` // "" | mysql | postgres
		DSN    string `yaml:"dsn"`
	} `yaml:"audit"`

	Archive struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"archive"`

	Logger LoggerConfig `yaml:"logger"`
}

// Default returns the configuration used when no file is present: a local scan
// API with no timeout and the offline analyzer.
func Default() *Config {
	var cfg Config
	cfg.API.BaseURL = DefaultAPIBase
	cfg.API.DefaultScanID = "test-001"
	cfg.Analyzer.Provider = ProviderHeuristic
	cfg.Analyzer.OpenAI.Model = "gpt-4o-mini"
	cfg.Archive.BucketName = "scan-snapshots"
	cfg.Logger = LoggerConfig{
		Level:       "info",
		Format:      "console",
		ServiceName: "scan-enricher",
		MaxSize:     10,
		MaxBackups:  3,
		MaxAge:      28,
	}
	return &cfg
}

// Load baca file config.yaml di atas default, lalu env override.
// A missing file is only an error when the caller asked for it explicitly.
func Load(path string, explicit bool) (*Config, error) {
	// .env opsional, error diabaikan
	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// jalan dengan default
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.API.BaseURL, "SCAN_API_URL")
	setString(&c.Analyzer.Provider, "ANALYZER_PROVIDER")
	setString(&c.Analyzer.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&c.Analyzer.OpenAI.Model, "OPENAI_MODEL")
	setString(&c.Analyzer.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setString(&c.Audit.Driver, "AUDIT_DRIVER")
	setString(&c.Audit.DSN, "AUDIT_DSN")
	setString(&c.Logger.Level, "LOG_LEVEL")

	if v, ok := os.LookupEnv("SCAN_API_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SCAN_API_TIMEOUT: %w", err)
		}
		c.API.Timeout = d
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// Validate checks the values the runner cannot work around.
func (c *Config) Validate() error {
	if err := validate.BaseURL(c.API.BaseURL); err != nil {
		return fmt.Errorf("api.baseURL: %w", err)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout: must not be negative")
	}
	if strings.TrimSpace(c.API.DefaultScanID) == "" {
		return fmt.Errorf("api.defaultScanID: must not be empty")
	}

	switch c.Analyzer.Provider {
	case ProviderHeuristic:
	case ProviderOpenAI:
		if c.Analyzer.OpenAI.APIKey == "" {
			return fmt.Errorf("analyzer.openai.apiKey: required for provider %q", ProviderOpenAI)
		}
	default:
		return fmt.Errorf("analyzer.provider: unknown provider %q (allowed: %s, %s)", c.Analyzer.Provider, ProviderHeuristic, ProviderOpenAI)
	}
	if c.Analyzer.RequestsPerMinute < 0 {
		return fmt.Errorf("analyzer.requestsPerMinute: must not be negative")
	}

	switch c.Audit.Driver {
	case "":
	case DriverMySQL, DriverPostgres:
		if c.Audit.DSN == "" {
			return fmt.Errorf("audit.dsn: required for driver %q", c.Audit.Driver)
		}
	default:
		return fmt.Errorf("audit.driver: unknown driver %q (allowed: %s, %s)", c.Audit.Driver, DriverMySQL, DriverPostgres)
	}

	if c.Archive.Enabled {
		if c.Archive.BucketName == "" {
			return fmt.Errorf("archive.bucketName: required when archive is enabled")
		}
		if err := validate.Endpoint(c.Archive.Endpoint); err != nil {
			return fmt.Errorf("archive.endpoint: %w", err)
		}
	}
	return nil
}
