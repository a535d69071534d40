package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Relevance.Threshold != 0.1 || !cfg.Relevance.Exclusive {
		t.Errorf("relevance defaults: got %+v", cfg.Relevance)
	}
	if cfg.Relevance.TitleWeight != 3 || cfg.Relevance.KeywordCount != 3 {
		t.Errorf("relevance weights: got %+v", cfg.Relevance)
	}
	if cfg.Cache.Backend != CacheMemory {
		t.Errorf("cache backend: got %q", cfg.Cache.Backend)
	}
	if cfg.Summarizer.Provider != "extractive" {
		t.Errorf("summarizer provider: got %q", cfg.Summarizer.Provider)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	loader := NewLoaderWithPath(filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.EURLex.RateLimit != time.Second {
		t.Errorf("rate limit: got %v", cfg.EURLex.RateLimit)
	}
}

func TestLoader_OverlaysDefaultsAndExpandsEnv(t *testing.T) {
	t.Setenv("LEXNAV_TEST_OPENAI_KEY", "sk-from-env")
	t.Setenv("LEXNAV_TEST_EMPTY", "")

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `log:
  level: debug
cache:
  backend: redis
  ttl: 10m
  redis:
    addr: ${LEXNAV_TEST_REDIS:-redis.internal:6380}
relevance:
  threshold: 0.25
  exclusive: false
summarizer:
  provider: openai
  api_key: ${LEXNAV_TEST_OPENAI_KEY}
  endpoint: ${LEXNAV_TEST_EMPTY}
eurlex:
  rate_limit: 500ms
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := NewLoaderWithPath(configPath).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("log level: got %q", cfg.Log.Level)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("cache: got %+v", cfg.Cache)
	}
	if cfg.Cache.Redis.Addr != "redis.internal:6380" {
		t.Errorf("redis addr default expansion: got %q", cfg.Cache.Redis.Addr)
	}
	if cfg.Cache.Redis.Prefix != "lexnav:" {
		t.Errorf("unset keys should keep defaults, prefix got %q", cfg.Cache.Redis.Prefix)
	}
	if cfg.Relevance.Threshold != 0.25 || cfg.Relevance.Exclusive {
		t.Errorf("relevance: got %+v", cfg.Relevance)
	}
	if cfg.Relevance.TitleWeight != 3 {
		t.Errorf("title weight should keep default, got %d", cfg.Relevance.TitleWeight)
	}
	if cfg.Summarizer.APIKey != "sk-from-env" || cfg.Summarizer.Endpoint != "" {
		t.Errorf("summarizer: got %+v", cfg.Summarizer)
	}
	if cfg.EURLex.RateLimit != 500*time.Millisecond {
		t.Errorf("rate limit: got %v", cfg.EURLex.RateLimit)
	}

	options := cfg.Relevance.Options()
	if options.Threshold != 0.25 || options.KeywordCount != 3 {
		t.Errorf("Options: got %+v", options)
	}
}

func TestLoader_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"backend":   "cache:\n  backend: memcached\n",
		"threshold": "relevance:\n  threshold: 1.5\n",
		"syntax":    "log: [unclosed\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			os.WriteFile(configPath, []byte(content), 0644)
			if _, err := NewLoaderWithPath(configPath).Load(); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestLoader_SaveRoundTrip(t *testing.T) {
	loader := NewLoaderWithPath(filepath.Join(t.TempDir(), "nested", "config.yaml"))
	if loader.Exists() {
		t.Fatal("config should not exist yet")
	}

	cfg := DefaultConfig()
	cfg.Registry.BaseDir = "/var/lib/lexnav"
	if err := loader.Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !loader.Exists() {
		t.Fatal("config should exist after Save")
	}

	loaded, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Registry.BaseDir != "/var/lib/lexnav" || loaded.EURLex.Timeout != 30*time.Second {
		t.Errorf("round trip: got %+v / %+v", loaded.Registry, loaded.EURLex)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("LEXNAV_TEST_SET", "value")

	cases := map[string]string{
		"${LEXNAV_TEST_SET}":             "value",
		"${LEXNAV_TEST_UNSET}":           "",
		"${LEXNAV_TEST_UNSET:-fallback}": "fallback",
		"${LEXNAV_TEST_SET:-fallback}":   "value",
		"prefix-${LEXNAV_TEST_SET}-tail": "prefix-value-tail",
	}
	for input, expected := range cases {
		if got := expandEnvVars(input); got != expected {
			t.Errorf("expandEnvVars(%q): got %q, want %q", input, got, expected)
		}
	}
}
