package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	LLM       LLMConfig       `yaml:"llm"`
	Advisor   AdvisorConfig   `yaml:"advisor"`
	Store     StoreConfig     `yaml:"store"`
	Reference ReferenceConfig `yaml:"reference"`
	MCP       MCPConfig       `yaml:"mcp"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries of POST requests that failed with 5xx.
// Only paths listed in Paths are retried.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Paths       []string      `yaml:"paths"`
}

// LLMConfig contains settings of the OpenAI compatible text service.
type LLMConfig struct {
	APIKey      string  `yaml:"apiKey"`
	BaseURL     string  `yaml:"baseUrl"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"maxTokens"`
}

// AdvisorConfig tunes AI augmentation of predictions.
type AdvisorConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	TokenEncoding string        `yaml:"tokenEncoding"`
	Cache         CacheConfig   `yaml:"cache"`
}

// CacheConfig controls the AI reply cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Addr    string        `yaml:"addr"`
	Prefix  string        `yaml:"prefix"`
	TTL     time.Duration `yaml:"ttl"`
}

// StoreConfig selects the daily record persistence driver.
type StoreConfig struct {
	Driver   string       `yaml:"driver"`
	Postgres SQLConfig    `yaml:"postgres"`
	SQLite   SQLConfig    `yaml:"sqlite"`
	Sheets   SheetsConfig `yaml:"sheets"`
	S3       S3Config     `yaml:"s3"`
	Migrate  bool         `yaml:"migrate"`
}

// SQLConfig contains DSN and pooling settings.
type SQLConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// SheetsConfig points at a Google Sheets spreadsheet.
type SheetsConfig struct {
	SpreadsheetID   string `yaml:"spreadsheetId"`
	Sheet           string `yaml:"sheet"`
	CredentialsFile string `yaml:"credentialsFile"`
}

// S3Config contains S3 compatible object storage settings.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
}

// ReferenceConfig selects where the reference table comes from.
type ReferenceConfig struct {
	Source string `yaml:"source"`
}

// MCPConfig toggles the MCP tool endpoint.
type MCPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Store drivers.
const (
	DriverNone     = "none"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverSheets   = "sheets"
	DriverS3       = "s3"
)

// Reference sources.
const (
	ReferenceStatic = "static"
	ReferenceStore  = "store"
)

// Load reads configuration from .env, a YAML file and environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.HTTP.Address = ":" + strings.TrimPrefix(v, ":")
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}

	if v := os.Getenv("GOOGLE_GEMINI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("LLM_MAX_TOKENS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.LLM.MaxTokens = parsed
		}
	}

	if v := os.Getenv("ADVISOR_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Advisor.Timeout = parsed
		}
	}
	if v := os.Getenv("ADVISOR_CACHE_ENABLED"); v != "" {
		cfg.Advisor.Cache.Enabled = parseBool(v)
	}
	if v := os.Getenv("ADVISOR_CACHE_ADDR"); v != "" {
		cfg.Advisor.Cache.Addr = v
	}
	if v := os.Getenv("ADVISOR_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Advisor.Cache.TTL = parsed
		}
	}

	if v := os.Getenv("STORE_DRIVER"); v != "" {
		cfg.Store.Driver = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("STORE_MIGRATE"); v != "" {
		cfg.Store.Migrate = parseBool(v)
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Store.Postgres.DSN = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Store.SQLite.DSN = v
	}
	if v := os.Getenv("GOOGLE_SHEETS_ID"); v != "" {
		cfg.Store.Sheets.SpreadsheetID = v
	}
	if v := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); v != "" {
		cfg.Store.Sheets.CredentialsFile = v
	}
	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		cfg.Store.S3.Endpoint = v
	}
	if v := os.Getenv("S3_ACCESS_KEY"); v != "" {
		cfg.Store.S3.AccessKey = v
	}
	if v := os.Getenv("S3_SECRET_KEY"); v != "" {
		cfg.Store.S3.SecretKey = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		cfg.Store.S3.Bucket = v
	}

	if v := os.Getenv("REFERENCE_SOURCE"); v != "" {
		cfg.Reference.Source = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("MCP_ENABLED"); v != "" {
		cfg.MCP.Enabled = parseBool(v)
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:        ":5000",
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   45 * time.Second,
			AllowedOrigins: []string{"*"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Paths:       []string{"/api/records"},
			},
		},
		LLM: LLMConfig{
			Model:       "gemini-2.0-flash",
			Temperature: 0.7,
			MaxTokens:   256,
		},
		Advisor: AdvisorConfig{
			Timeout:       15 * time.Second,
			TokenEncoding: "cl100k_base",
			Cache: CacheConfig{
				Enabled: true,
				Prefix:  "advice",
				TTL:     6 * time.Hour,
			},
		},
		Store: StoreConfig{
			Driver: DriverNone,
			Postgres: SQLConfig{
				MaxOpenConns:    10,
				MaxIdleConns:    5,
				ConnMaxLifetime: time.Hour,
			},
			SQLite: SQLConfig{
				DSN: "food-waste.db",
			},
			Sheets: SheetsConfig{
				Sheet: "Records",
			},
			S3: S3Config{
				Region: "auto",
				Prefix: "records",
			},
			Migrate: true,
		},
		Reference: ReferenceConfig{
			Source: ReferenceStatic,
		},
		MCP: MCPConfig{
			Enabled: true,
			Path:    "/mcp",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// AIEnabled reports whether an API key was configured.
func (c *Config) AIEnabled() bool {
	return strings.TrimSpace(c.LLM.APIKey) != ""
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	if c.LLM.MaxTokens < 0 {
		return errors.New("llm.maxTokens cannot be negative")
	}
	if c.Advisor.Timeout < 0 {
		return errors.New("advisor.timeout cannot be negative")
	}
	if c.Advisor.Cache.TTL < 0 {
		return errors.New("advisor.cache.ttl cannot be negative")
	}
	switch c.Store.Driver {
	case DriverNone, DriverMemory, DriverPostgres, DriverSQLite, DriverSheets, DriverS3:
	default:
		return fmt.Errorf("store.driver %q is not supported", c.Store.Driver)
	}
	switch c.Reference.Source {
	case ReferenceStatic, ReferenceStore:
	default:
		return fmt.Errorf("reference.source %q is not supported", c.Reference.Source)
	}
	if c.MCP.Enabled && !strings.HasPrefix(c.MCP.Path, "/") {
		return errors.New("mcp.path must start with /")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("metrics.path must start with /")
	}
	return nil
}
