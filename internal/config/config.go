// Package config provides configuration loading and validation for team composition.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/team-composer/internal/constraints"
	"github.com/jonathan/team-composer/internal/scoring"
	"github.com/jonathan/team-composer/internal/selection"
	"github.com/jonathan/team-composer/internal/snapshots"
	"github.com/jonathan/team-composer/internal/types"
	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// ScoringConfig groups every weight used to score candidates and teams
type ScoringConfig struct {
	RoleFit   scoring.RoleFitWeights     `json:"role_fit" yaml:"role_fit"`
	Balance   scoring.BalanceWeights     `json:"balance" yaml:"balance"`
	Objective selection.ObjectiveWeights `json:"objective" yaml:"objective"`
}

// OptimizerConfig tunes the greedy and exchange passes
type OptimizerConfig struct {
	SeniorityDeviationSlack int `json:"seniority_slack" yaml:"seniority_slack"`
	MaxExchangeIterations   int `json:"max_exchange_iterations" yaml:"max_exchange_iterations"`
}

// RetentionConfig bounds the pool snapshots kept for what-if runs
type RetentionConfig struct {
	MaxSnapshots int    `json:"max_snapshots" yaml:"max_snapshots"`
	TTL          string `json:"ttl" yaml:"ttl"` // Go duration, e.g. "30m"; empty keeps snapshots until evicted by count
}

// StorageConfig selects where snapshots and feedback live
type StorageConfig struct {
	Backend     string `json:"backend" yaml:"backend"`
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"`
	RedisAddr   string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
	RedisPrefix string `json:"redis_prefix,omitempty" yaml:"redis_prefix,omitempty"`
}

// LLMConfig configures the optional explanation generator
type LLMConfig struct {
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Model  string `json:"model,omitempty" yaml:"model,omitempty"`
}

// Config is the complete, explicit configuration of a composer instance.
// It is passed at construction; nothing reads it from globals.
type Config struct {
	Scoring     ScoringConfig             `json:"scoring" yaml:"scoring"`
	Seniority   types.SeniorityThresholds `json:"seniority" yaml:"seniority"`
	Constraints constraints.Policy        `json:"constraints" yaml:"constraints"`
	Optimizer   OptimizerConfig           `json:"optimizer" yaml:"optimizer"`
	Retention   RetentionConfig           `json:"retention" yaml:"retention"`
	Cost        scoring.RateTable         `json:"cost" yaml:"cost"`
	Storage     StorageConfig             `json:"storage" yaml:"storage"`
	LLM         LLMConfig                 `json:"llm" yaml:"llm"`
	LogMode     string                    `json:"log_mode,omitempty" yaml:"log_mode,omitempty"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	weights := scoring.DefaultWeights()
	opts := selection.DefaultOptions()
	retention := snapshots.DefaultRetentionPolicy()
	return Config{
		Scoring: ScoringConfig{
			RoleFit:   weights.RoleFit,
			Balance:   weights.Balance,
			Objective: opts.Objective,
		},
		Seniority:   types.DefaultSeniorityThresholds(),
		Constraints: constraints.DefaultPolicy(),
		Optimizer: OptimizerConfig{
			SeniorityDeviationSlack: opts.SeniorityDeviationSlack,
			MaxExchangeIterations:   opts.MaxExchangeIterations,
		},
		Retention: RetentionConfig{
			MaxSnapshots: retention.MaxEntries,
			TTL:          retention.TTL.String(),
		},
		Cost:    scoring.DefaultRateTable(),
		Storage: StorageConfig{Backend: BackendMemory, RedisPrefix: snapshots.DefaultRedisPrefix},
		LLM:     LLMConfig{Model: "gemini-2.5-flash-lite"},
		LogMode: "dev",
	}
}

// LoadConfig loads configuration from a JSON or YAML file (chosen by
// extension) on top of Default, so a file only needs the values it changes.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// FromEnv returns a Config holding only the values set in the environment.
// It is meant as the defaults argument of MergeWithDefaults.
func FromEnv() Config {
	cfg := Config{
		Storage: StorageConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			RedisAddr:   os.Getenv("REDIS_ADDR"),
		},
		LLM:     LLMConfig{APIKey: os.Getenv("GEMINI_API_KEY")},
		LogMode: os.Getenv("LOG_MODE"),
	}
	return cfg
}

// MergeWithDefaults returns a new Config with empty string fields filled from defaults.
// Numeric fields are never merged since zero is a meaningful weight.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Storage.Backend == "" {
		result.Storage.Backend = defaults.Storage.Backend
	}
	if result.Storage.DatabaseURL == "" {
		result.Storage.DatabaseURL = defaults.Storage.DatabaseURL
	}
	if result.Storage.RedisAddr == "" {
		result.Storage.RedisAddr = defaults.Storage.RedisAddr
	}
	if result.Storage.RedisPrefix == "" {
		result.Storage.RedisPrefix = defaults.Storage.RedisPrefix
	}
	if result.LLM.APIKey == "" {
		result.LLM.APIKey = defaults.LLM.APIKey
	}
	if result.LLM.Model == "" {
		result.LLM.Model = defaults.LLM.Model
	}
	if result.LogMode == "" {
		result.LogMode = defaults.LogMode
	}

	return result
}

// Validate checks that the configuration has valid values
func (c *Config) Validate() error {
	if err := c.Weights().Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := c.OptimizerOptions().Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := c.Seniority.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := c.Constraints.Validate(); err != nil {
		return fmt.Errorf("config error: constraints: %w", err)
	}
	if err := c.Cost.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	policy, err := c.RetentionPolicy()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := policy.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	switch c.Storage.Backend {
	case "", BackendMemory:
	case BackendPostgres:
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("config error: storage backend 'postgres' requires 'database_url'")
		}
	case BackendRedis:
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("config error: storage backend 'redis' requires 'redis_addr'")
		}
	default:
		return fmt.Errorf("config error: unknown storage backend %q", c.Storage.Backend)
	}

	return nil
}

// Weights returns the scoring weights
func (c *Config) Weights() scoring.Weights {
	return scoring.Weights{RoleFit: c.Scoring.RoleFit, Balance: c.Scoring.Balance}
}

// Scorer builds the scorer described by the configuration
func (c *Config) Scorer() *scoring.Scorer {
	return scoring.NewScorer(c.Weights(), c.Seniority, c.Cost.Cost)
}

// OptimizerOptions returns the optimizer options described by the configuration
func (c *Config) OptimizerOptions() selection.Options {
	return selection.Options{
		Objective:               c.Scoring.Objective,
		SeniorityDeviationSlack: c.Optimizer.SeniorityDeviationSlack,
		MaxExchangeIterations:   c.Optimizer.MaxExchangeIterations,
	}
}

// RetentionPolicy parses the retention section
func (c *Config) RetentionPolicy() (snapshots.RetentionPolicy, error) {
	policy := snapshots.RetentionPolicy{MaxEntries: c.Retention.MaxSnapshots}
	if c.Retention.TTL != "" {
		ttl, err := time.ParseDuration(c.Retention.TTL)
		if err != nil {
			return policy, fmt.Errorf("retention: invalid ttl %q: %w", c.Retention.TTL, err)
		}
		policy.TTL = ttl
	}
	return policy, nil
}
