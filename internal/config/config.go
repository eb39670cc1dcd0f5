package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the cortyx configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Graph       GraphConfig       `yaml:"graph"`
	Valkey      ValkeyConfig      `yaml:"valkey"`
	SchemaCache SchemaCacheConfig `yaml:"schema_cache"`
	Search      SearchConfig      `yaml:"search"`
	Pagination  PaginationConfig  `yaml:"pagination"`
	Auth        AuthConfig        `yaml:"auth"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int             `yaml:"port"`
	ReadTimeoutSec  int             `yaml:"read_timeout_sec"`
	WriteTimeoutSec int             `yaml:"write_timeout_sec"`
	ShutdownSec     int             `yaml:"shutdown_timeout_sec"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig configures the per-client token bucket. RPS 0 disables it.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// GraphConfig holds Neo4j connection settings.
type GraphConfig struct {
	URI                   string `yaml:"uri"`
	Username              string `yaml:"username"`
	Password              string `yaml:"password"`
	Database              string `yaml:"database"`
	MaxPoolSize           int    `yaml:"max_pool_size"`
	AcquisitionTimeoutSec int    `yaml:"acquisition_timeout_sec"`
	ReadinessTimeoutSec   int    `yaml:"readiness_timeout_sec"`
}

// ValkeyConfig holds the optional valkey connection used for caching and search.
type ValkeyConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a valkey endpoint is configured.
func (v ValkeyConfig) Enabled() bool { return len(v.Addrs) > 0 }

// SchemaCacheConfig controls caching of schema lookups in valkey.
type SchemaCacheConfig struct {
	Enabled bool `yaml:"enabled"`
	TTLSec  int  `yaml:"ttl_sec"`
}

// SearchConfig holds semantic knowledge search settings.
type SearchConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Provider ProviderConfig `yaml:"provider"`
	TopK     int            `yaml:"top_k"`

	// QueryInstruction is prepended to search queries before embedding.
	QueryInstruction     string `yaml:"query_instruction"`
	EmbeddingCacheTTLSec int    `yaml:"embedding_cache_ttl_sec"` // 0 keeps the cache default
	HNSWM                int    `yaml:"hnsw_m"`
	HNSWEFConstruct      int    `yaml:"hnsw_ef_construction"`
}

// ProviderConfig holds embedding provider settings.
type ProviderConfig struct {
	Name       string `yaml:"name"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// PaginationConfig bounds list page sizes.
type PaginationConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"` // 0 means unbounded
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory, if present, is loaded into the process
// environment first; variables already set win.
func Load(env string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes raw YAML, expanding ${VAR} references, then applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.RateLimit.RPS > 0 && c.HTTP.RateLimit.Burst <= 0 {
		c.HTTP.RateLimit.Burst = int(c.HTTP.RateLimit.RPS) + 1
	}
	if c.Graph.URI == "" {
		c.Graph.URI = "neo4j://localhost"
	}
	if c.Graph.Username == "" {
		c.Graph.Username = "neo4j"
	}
	if c.Graph.Database == "" {
		c.Graph.Database = "cortyx-dev"
	}
	if c.Graph.MaxPoolSize <= 0 {
		c.Graph.MaxPoolSize = 50
	}
	if c.Graph.AcquisitionTimeoutSec <= 0 {
		c.Graph.AcquisitionTimeoutSec = 60
	}
	if c.Graph.ReadinessTimeoutSec <= 0 {
		c.Graph.ReadinessTimeoutSec = 30
	}
	c.Valkey.Addrs = slices.DeleteFunc(c.Valkey.Addrs, func(a string) bool { return strings.TrimSpace(a) == "" })
	if c.Valkey.ReadinessTimeout <= 0 {
		c.Valkey.ReadinessTimeout = 10
	}
	if c.SchemaCache.TTLSec <= 0 {
		c.SchemaCache.TTLSec = 300
	}
	if c.Search.Provider.Name == "" {
		c.Search.Provider.Name = "openai"
	}
	if c.Search.Provider.Dimensions <= 0 {
		c.Search.Provider.Dimensions = 1024
	}
	if c.Search.TopK <= 0 {
		c.Search.TopK = 5
	}
	if c.Search.HNSWM <= 0 {
		c.Search.HNSWM = 16
	}
	if c.Search.HNSWEFConstruct <= 0 {
		c.Search.HNSWEFConstruct = 200
	}
	if c.Pagination.DefaultPageSize <= 0 {
		c.Pagination.DefaultPageSize = 20
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.HTTP.RateLimit.RPS < 0 {
		return fmt.Errorf("http.rate_limit.rps must not be negative, got %v", c.HTTP.RateLimit.RPS)
	}
	u, err := url.Parse(c.Graph.URI)
	if err != nil || u.Scheme == "" {
		return fmt.Errorf("graph.uri must be an absolute URI, got %q", c.Graph.URI)
	}
	switch u.Scheme {
	case "neo4j", "neo4j+s", "neo4j+ssc", "bolt", "bolt+s", "bolt+ssc":
	default:
		return fmt.Errorf("graph.uri scheme %q is not supported", u.Scheme)
	}
	if c.Pagination.MaxPageSize < 0 {
		return fmt.Errorf("pagination.max_page_size must not be negative, got %d", c.Pagination.MaxPageSize)
	}
	if c.Pagination.MaxPageSize > 0 && c.Pagination.DefaultPageSize > c.Pagination.MaxPageSize {
		return fmt.Errorf("pagination.default_page_size (%d) exceeds max_page_size (%d)",
			c.Pagination.DefaultPageSize, c.Pagination.MaxPageSize)
	}
	if c.SchemaCache.Enabled && !c.Valkey.Enabled() {
		return fmt.Errorf("schema_cache.enabled requires valkey.addrs")
	}
	if c.Search.Enabled {
		if !c.Valkey.Enabled() {
			return fmt.Errorf("search.enabled requires valkey.addrs")
		}
		if c.Search.Provider.Model == "" {
			return fmt.Errorf("search.provider.model is required when search is enabled")
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
