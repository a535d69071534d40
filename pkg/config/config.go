// Package config manages lexnav configuration.
package config

import (
	"time"

	"github.com/coolbeans/lexnav/pkg/relevance"
)

// Config represents the application configuration.
type Config struct {
	Log        LogConfig        `yaml:"log"`
	Registry   RegistryConfig   `yaml:"registry"`
	EURLex     EURLexConfig     `yaml:"eurlex"`
	Cache      CacheConfig      `yaml:"cache"`
	Relevance  RelevanceConfig  `yaml:"relevance"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// RegistryConfig locates the law catalogue and local copies.
type RegistryConfig struct {
	// Catalogue is a YAML catalogue file; empty means the built-in catalogue.
	Catalogue string `yaml:"catalogue,omitempty"`
	// BaseDir resolves relative source paths.
	BaseDir string `yaml:"base_dir"`
	// SnapshotDir stores parsed JSON snapshots; empty disables snapshots.
	SnapshotDir string `yaml:"snapshot_dir,omitempty"`
	// Remote enables fetching from EUR-Lex when no local copy exists.
	Remote bool `yaml:"remote"`
}

// EURLexConfig configures the EUR-Lex client.
type EURLexConfig struct {
	RateLimit       time.Duration `yaml:"rate_limit"`
	Timeout         time.Duration `yaml:"timeout"`
	CacheTTL        time.Duration `yaml:"cache_ttl"`
	UserAgent       string        `yaml:"user_agent"`
	BreakerFailures uint32        `yaml:"breaker_failures"`
	BreakerTimeout  time.Duration `yaml:"breaker_timeout"`
}

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// CacheConfig selects the result cache.
type CacheConfig struct {
	Backend string        `yaml:"backend"`
	TTL     time.Duration `yaml:"ttl"`
	Redis   RedisConfig   `yaml:"redis"`
}

// RedisConfig configures the Redis cache backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// RelevanceConfig mirrors relevance.Options.
type RelevanceConfig struct {
	Threshold    float64 `yaml:"threshold"`
	Exclusive    bool    `yaml:"exclusive"`
	TitleWeight  int     `yaml:"title_weight"`
	KeywordCount int     `yaml:"keyword_count"`
}

// Options converts the section to relevance options.
func (c RelevanceConfig) Options() relevance.Options {
	return relevance.Options{
		Threshold:    c.Threshold,
		Exclusive:    c.Exclusive,
		TitleWeight:  c.TitleWeight,
		KeywordCount: c.KeywordCount,
	}
}

// SummarizerConfig selects a summarization provider.
type SummarizerConfig struct {
	Provider     string  `yaml:"provider"`
	Model        string  `yaml:"model,omitempty"`
	APIKey       string  `yaml:"api_key,omitempty"`
	Endpoint     string  `yaml:"endpoint,omitempty"`
	MaxTokens    int     `yaml:"max_tokens"`
	Temperature  float64 `yaml:"temperature"`
	MaxSentences int     `yaml:"max_sentences"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	defaults := relevance.DefaultOptions()
	return &Config{
		Log: LogConfig{Level: "info"},
		Registry: RegistryConfig{
			BaseDir: ".",
			Remote:  true,
		},
		EURLex: EURLexConfig{
			RateLimit:       time.Second,
			Timeout:         30 * time.Second,
			CacheTTL:        time.Hour,
			UserAgent:       "lexnav-eurlex-connector/1.0",
			BreakerFailures: 5,
			BreakerTimeout:  time.Minute,
		},
		Cache: CacheConfig{
			Backend: CacheMemory,
			TTL:     time.Hour,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "lexnav:",
			},
		},
		Relevance: RelevanceConfig{
			Threshold:    defaults.Threshold,
			Exclusive:    defaults.Exclusive,
			TitleWeight:  defaults.TitleWeight,
			KeywordCount: defaults.KeywordCount,
		},
		Summarizer: SummarizerConfig{
			Provider:     "extractive",
			MaxTokens:    512,
			Temperature:  0.2,
			MaxSentences: 3,
		},
	}
}
