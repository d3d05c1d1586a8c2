// Package config provides centralized configuration management.
//
// Configuration is loaded from a YAML file with ${VAR} expansion, falling
// back to environment variables when no file is present:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ledgerlens/backend/internal/domain/recon"
	"github.com/ledgerlens/backend/internal/infrastructure/logging"
)

// Config represents the entire application configuration.
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Storage        StorageConfig        `yaml:"storage"`
	OpenAI         OpenAIConfig         `yaml:"openai"`
	Reconciliation ReconciliationConfig `yaml:"reconciliation"`
	Observability  ObservabilityConfig  `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StorageConfig holds database configuration.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// OpenAIConfig holds settings for the semantic scorer. An empty API key
// disables semantic scoring entirely; the engine then runs rule-based only.
type OpenAIConfig struct {
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// ReconciliationConfig exposes every engine knob in the config file. Values
// here are the host-level defaults; API callers may override them per run.
type ReconciliationConfig struct {
	DateWindowDays          int     `yaml:"date_window_days"`
	AmountTolerance         float64 `yaml:"amount_tolerance"`
	AmountTolerancePct      float64 `yaml:"amount_tolerance_pct"`
	MatchThreshold          float64 `yaml:"match_threshold"`
	PerfectMatchConfidence  float64 `yaml:"perfect_match_confidence"`
	AmountWeight            float64 `yaml:"amount_weight"`
	DateWeight              float64 `yaml:"date_weight"`
	MerchantWeight          float64 `yaml:"merchant_weight"`
	DuplicateSimilarity     float64 `yaml:"duplicate_similarity"`
	DuplicateDateWindowDays int     `yaml:"duplicate_date_window_days"`
	DuplicateAmountEpsilon  float64 `yaml:"duplicate_amount_epsilon"`
	Workers                 int     `yaml:"workers"`
}

// ObservabilityConfig holds observability settings.
type ObservabilityConfig struct {
	Logging logging.Config `yaml:"logging"`
}

// EngineConfig converts the YAML view into the engine's config. Zero-valued
// sections keep the engine defaults, so a minimal config file stays minimal.
func (c *Config) EngineConfig() recon.Config {
	cfg := recon.DefaultConfig()
	r := c.Reconciliation
	if r.DateWindowDays > 0 {
		cfg.DateWindowDays = r.DateWindowDays
	}
	if r.AmountTolerance > 0 {
		cfg.AmountTolerance = r.AmountTolerance
	}
	if r.AmountTolerancePct > 0 {
		cfg.AmountTolerancePct = r.AmountTolerancePct
	}
	if r.MatchThreshold > 0 {
		cfg.MatchThreshold = r.MatchThreshold
	}
	if r.PerfectMatchConfidence > 0 {
		cfg.PerfectMatchConfidence = r.PerfectMatchConfidence
	}
	if r.AmountWeight > 0 || r.DateWeight > 0 || r.MerchantWeight > 0 {
		cfg.Weights = recon.Weights{Amount: r.AmountWeight, Date: r.DateWeight, Merchant: r.MerchantWeight}
	}
	if r.DuplicateSimilarity > 0 {
		cfg.DuplicateSimilarity = r.DuplicateSimilarity
	}
	if r.DuplicateDateWindowDays > 0 {
		cfg.DuplicateDateWindowDays = r.DuplicateDateWindowDays
	}
	if r.DuplicateAmountEpsilon > 0 {
		cfg.DuplicateAmountEpsilon = r.DuplicateAmountEpsilon
	}
	if r.Workers > 0 {
		cfg.Workers = r.Workers
	}
	if c.OpenAI.TimeoutSeconds > 0 {
		cfg.SemanticTimeout = time.Duration(c.OpenAI.TimeoutSeconds) * time.Second
	}
	return cfg
}

// Load reads and parses the config file, expanding ${VAR} references.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvInt("PORT", 8080),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("LEDGERLENS_DB_PATH", "ledgerlens.db"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         os.Getenv("OPENAI_API_KEY"),
			Model:          getEnv("OPENAI_MODEL", "gpt-4o"),
			TimeoutSeconds: getEnvInt("OPENAI_TIMEOUT_SECONDS", 10),
		},
		Observability: ObservabilityConfig{
			Logging: logging.Config{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadOrEnv tries config.yaml first, then falls back to environment
// variables.
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries the given path first, then falls back to
// environment variables.
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = "ledgerlens.db"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o"
	}
	if c.OpenAI.TimeoutSeconds == 0 {
		c.OpenAI.TimeoutSeconds = 10
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}
