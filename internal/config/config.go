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

// Config holds the matching engine's run configuration: where the corpus
// and field weights live, the option surface a batch run is scored with,
// and the ambient concerns (admin HTTP, logging).
type Config struct {
	Corpus         CorpusConfig         `yaml:"corpus"`
	Matching       MatchingConfig       `yaml:"matching"`
	Disambiguation DisambiguationConfig `yaml:"disambiguation"`
	Cache          CacheConfig          `yaml:"cache"`
	ExclusionCache ExclusionCacheConfig `yaml:"exclusion_cache"`
	HTTP           HTTPConfig           `yaml:"http"`
	Logging        LoggingConfig        `yaml:"logging"`
}

// CorpusConfig locates the corpus file triple and the field-weights file a
// batch run scores against.
type CorpusConfig struct {
	Source      string `yaml:"source"`       // corpus file basename, e.g. "catalog" for catalog-vocab.bin
	Dir         string `yaml:"dir"`          // directory containing <source>-{vocab,dataset-vectors,source-data}.bin
	WeightsFile string `yaml:"weights_file"` // path to the field-weights file; empty uses defaults
	PoolSize    int    `yaml:"pool_size"`    // 0 means runtime.GOMAXPROCS(0)
}

// MatchingConfig holds the option surface spec.md §6's table specifies,
// read straight into domain.EngineOptions by the CLI composition root.
type MatchingConfig struct {
	SimilarityThreshold   float32 `yaml:"similarity_threshold"`
	ZThreshold            float32 `yaml:"z_threshold"`
	MinSingleSimilarity   float32 `yaml:"min_single_similarity"`
	MinMultipleSimilarity float32 `yaml:"min_multiple_similarity"`
	ForceYear             bool    `yaml:"force_year"`
	YearTolerance         int     `yaml:"year_tolerance"`
	YearTolerancePenalty  float32 `yaml:"year_tolerance_penalty"`
	OverlapAdjustment     int     `yaml:"overlap_adjustment"`
	JaroWinklerAdjustment bool    `yaml:"jaro_winkler_adjustment"`
	AddAuthorToTitle      bool    `yaml:"add_author_to_title"`
	JSONSchemaVersion     int     `yaml:"json_schema_version"`
	RunLabel              string  `yaml:"run_label"`
}

// DisambiguationConfig configures the optional LLM-assisted tie-breaker.
type DisambiguationConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Model          string `yaml:"model"`
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	MaxClusterSize int    `yaml:"max_cluster_size"`
	TokenBudget    int    `yaml:"token_budget"` // 0 means unlimited
}

// CacheConfig configures the embedded badger result-memoization cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ExclusionCacheConfig configures the optional distributed exclusion-id
// set. Empty RedisAddrs falls back to an in-memory, single-process set.
type ExclusionCacheConfig struct {
	RedisAddrs []string `yaml:"redis_addrs"`
}

// HTTPConfig holds the admin HTTP server settings (health + metrics).
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

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
	if c.Corpus.Source == "" {
		c.Corpus.Source = "catalog"
	}
	if c.Corpus.Dir == "" {
		c.Corpus.Dir = "."
	}
	if c.Matching.JSONSchemaVersion <= 0 {
		c.Matching.JSONSchemaVersion = 1
	}
	if c.Disambiguation.MaxClusterSize <= 0 {
		c.Disambiguation.MaxClusterSize = 5
	}
	if c.Cache.Path == "" {
		c.Cache.Path = "libris-match-cache"
	}
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Corpus.Source == "" {
		return fmt.Errorf("corpus.source is required")
	}
	if c.Matching.JSONSchemaVersion != 1 && c.Matching.JSONSchemaVersion != 2 {
		return fmt.Errorf("matching.json_schema_version must be 1 or 2, got %d", c.Matching.JSONSchemaVersion)
	}
	if c.Disambiguation.Enabled && c.Disambiguation.Model == "" {
		return fmt.Errorf("disambiguation.model is required when disambiguation.enabled is true")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
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
