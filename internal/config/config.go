package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the snapstyle API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Index     IndexConfig     `yaml:"index"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Session   SessionConfig   `yaml:"session"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
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
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// IndexConfig holds catalog index connection settings.
type IndexConfig struct {
	Driver           string   `yaml:"driver"` // redis, postgres (default: redis)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	DSN              string   `yaml:"dsn"` // postgres only
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds embedding service settings.
type EmbeddingConfig struct {
	// Endpoints are tried in order until one answers. Semantics are identical
	// at each stage; the list exists for availability only.
	Endpoints  []string   `yaml:"endpoints"`
	APIKey     string     `yaml:"api_key"`
	Model      string     `yaml:"model"`
	Dimensions int        `yaml:"dimensions"`
	TimeoutSec int        `yaml:"timeout_sec"`
	Text       TextConfig `yaml:"text"`
}

// TextConfig holds the text-side embedder used for category prediction.
// Empty base_url disables prediction.
type TextConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// SearchConfig holds similarity thresholds and result sizing.
// Thresholds are deployment-tunable rather than baked-in constants.
type SearchConfig struct {
	MinSimilarity   float64 `yaml:"min_similarity"`
	WeakThreshold   float64 `yaml:"weak_threshold"`
	StrongThreshold float64 `yaml:"strong_threshold"`
	PoolSize        int     `yaml:"pool_size"`
	DefaultTopK     int     `yaml:"default_top_k"`
	MaxTopK         int     `yaml:"max_top_k"`
}

// SessionConfig holds search session persistence settings.
type SessionConfig struct {
	TTLMinutes int `yaml:"ttl_minutes"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
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
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Index.Driver == "" {
		c.Index.Driver = "redis"
	}
	if c.Index.KeyPrefix == "" {
		c.Index.KeyPrefix = "snapstyle:"
	}
	if c.Index.ReadinessTimeout <= 0 {
		c.Index.ReadinessTimeout = 10
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 1152
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "siglip-so400m-patch14-384"
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}
	if c.Search.MinSimilarity <= 0 {
		c.Search.MinSimilarity = 0.25
	}
	if c.Search.WeakThreshold <= 0 {
		c.Search.WeakThreshold = 0.45
	}
	if c.Search.StrongThreshold <= 0 {
		c.Search.StrongThreshold = 0.65
	}
	if c.Search.PoolSize <= 0 {
		c.Search.PoolSize = 50
	}
	if c.Search.DefaultTopK <= 0 {
		c.Search.DefaultTopK = 5
	}
	if c.Search.MaxTopK <= 0 {
		c.Search.MaxTopK = 50
	}
	if c.Session.TTLMinutes <= 0 {
		c.Session.TTLMinutes = 60
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Index.Driver {
	case "redis":
		if len(c.Index.Addrs) == 0 {
			return fmt.Errorf("index.addrs is required for the redis driver")
		}
	case "postgres":
		if c.Index.DSN == "" {
			return fmt.Errorf("index.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("index.driver must be \"redis\" or \"postgres\", got %q", c.Index.Driver)
	}
	if len(c.Embedding.Endpoints) == 0 {
		return fmt.Errorf("embedding.endpoints is required")
	}
	s := c.Search
	if s.StrongThreshold > 1 {
		return fmt.Errorf("search.strong_threshold must not exceed 1, got %v", s.StrongThreshold)
	}
	// Tier ordering keeps strong/weak partitions disjoint and the floor meaningful.
	if !(s.StrongThreshold > s.WeakThreshold && s.WeakThreshold >= s.MinSimilarity) {
		return fmt.Errorf(
			"search thresholds must satisfy strong > weak >= min_similarity, got strong=%v weak=%v min=%v",
			s.StrongThreshold, s.WeakThreshold, s.MinSimilarity,
		)
	}
	if s.PoolSize < s.DefaultTopK {
		return fmt.Errorf("search.pool_size (%d) must be at least default_top_k (%d)", s.PoolSize, s.DefaultTopK)
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
