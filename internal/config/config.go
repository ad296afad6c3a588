// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Search   SearchConfig   `mapstructure:"search"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Prefetch PrefetchConfig `mapstructure:"prefetch"`
	Extract  ExtractConfig  `mapstructure:"extract"`
	Verify   VerifyConfig   `mapstructure:"verify"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port           int `mapstructure:"port"`
	RequestTimeout int `mapstructure:"request_timeout_seconds"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// SearchConfig governs the provider router.
type SearchConfig struct {
	SerperAPIKey        string  `mapstructure:"serper_api_key"`
	BraveAPIKey         string  `mapstructure:"brave_api_key"`
	CacheTTLSeconds     int     `mapstructure:"cache_ttl_seconds"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	DefaultMaxResults   int     `mapstructure:"default_max_results"`
	UserAgent           string  `mapstructure:"user_agent"`
}

// CacheConfig sizes the in-memory stores.
type CacheConfig struct {
	SearchMaxEntries   int `mapstructure:"search_max_entries"`
	SearchTTLSeconds   int `mapstructure:"search_ttl_seconds"`
	ContentMaxEntries  int `mapstructure:"content_max_entries"`
	ContentTTLSeconds  int `mapstructure:"content_ttl_seconds"`
	PatternMaxPatterns int `mapstructure:"pattern_max_patterns"`
}

// PrefetchConfig tunes the background cache warmer.
type PrefetchConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalMinutes int  `mapstructure:"interval_minutes"`
	WindowHours     int  `mapstructure:"window_hours"`
	MaxQueries      int  `mapstructure:"max_queries"`
	MinObservations int  `mapstructure:"min_observations"`
}

// ExtractConfig governs the content extraction engine.
type ExtractConfig struct {
	TimeoutSeconds   int            `mapstructure:"timeout_seconds"`
	MinContentLength int            `mapstructure:"min_content_length"`
	MaxContentLength int            `mapstructure:"max_content_length"`
	BlockedDomains   []string       `mapstructure:"blocked_domains"`
	Headless         HeadlessConfig `mapstructure:"headless"`
}

// HeadlessConfig configures the headless rendering strategy.
type HeadlessConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxParallel   int  `mapstructure:"max_parallel"`
	NavTimeoutSec int  `mapstructure:"nav_timeout_seconds"`
}

// VerifyConfig bounds the claim verification orchestrator.
type VerifyConfig struct {
	MaxConcurrentClaims     int     `mapstructure:"max_concurrent_claims"`
	MaxConcurrentFetches    int     `mapstructure:"max_concurrent_fetches"`
	MaxQueriesPerClaim      int     `mapstructure:"max_queries_per_claim"`
	MaxResultsPerQuery      int     `mapstructure:"max_results_per_query"`
	MaxSources              int     `mapstructure:"max_sources"`
	MinCredibility          float64 `mapstructure:"min_credibility"`
	ExtractionBudgetSeconds int     `mapstructure:"extraction_budget_seconds"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CLAIMSIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_seconds", 120)
	v.SetDefault("logging.development", true)
	v.SetDefault("search.cache_ttl_seconds", 3600)
	v.SetDefault("search.similarity_threshold", 0.3)
	v.SetDefault("search.default_max_results", 10)
	v.SetDefault("search.user_agent", "Mozilla/5.0 (compatible; claimsift/1.0)")
	v.SetDefault("cache.search_max_entries", 1000)
	v.SetDefault("cache.search_ttl_seconds", 3600)
	v.SetDefault("cache.content_max_entries", 500)
	v.SetDefault("cache.content_ttl_seconds", 3600)
	v.SetDefault("cache.pattern_max_patterns", 1000)
	v.SetDefault("prefetch.enabled", true)
	v.SetDefault("prefetch.interval_minutes", 10)
	v.SetDefault("prefetch.window_hours", 24)
	v.SetDefault("prefetch.max_queries", 5)
	v.SetDefault("prefetch.min_observations", 3)
	v.SetDefault("extract.timeout_seconds", 10)
	v.SetDefault("extract.min_content_length", 100)
	v.SetDefault("extract.max_content_length", 10000)
	v.SetDefault("extract.headless.enabled", false)
	v.SetDefault("extract.headless.max_parallel", 1)
	v.SetDefault("extract.headless.nav_timeout_seconds", 25)
	v.SetDefault("verify.max_concurrent_claims", 10)
	v.SetDefault("verify.max_concurrent_fetches", 20)
	v.SetDefault("verify.max_queries_per_claim", 2)
	v.SetDefault("verify.max_results_per_query", 10)
	v.SetDefault("verify.max_sources", 10)
	v.SetDefault("verify.min_credibility", 0.4)
	v.SetDefault("verify.extraction_budget_seconds", 30)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Search.SimilarityThreshold <= 0 || c.Search.SimilarityThreshold > 1 {
		return fmt.Errorf("search.similarity_threshold must be in (0, 1]")
	}
	if c.Extract.TimeoutSeconds <= 0 {
		return fmt.Errorf("extract.timeout_seconds must be > 0")
	}
	if c.Extract.Headless.Enabled && c.Extract.Headless.MaxParallel <= 0 {
		return fmt.Errorf("extract.headless.max_parallel must be > 0 when headless is enabled")
	}
	if c.Verify.MaxConcurrentClaims <= 0 {
		return fmt.Errorf("verify.max_concurrent_claims must be > 0")
	}
	if c.Verify.MinCredibility < 0 || c.Verify.MinCredibility > 1 {
		return fmt.Errorf("verify.min_credibility must be in [0, 1]")
	}
	if c.Verify.ExtractionBudgetSeconds <= 0 {
		return fmt.Errorf("verify.extraction_budget_seconds must be > 0")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	return nil
}

// SearchCacheTTL converts the configured TTL into a duration.
func (c Config) SearchCacheTTL() time.Duration {
	return time.Duration(c.Cache.SearchTTLSeconds) * time.Second
}

// ContentCacheTTL converts the configured TTL into a duration.
func (c Config) ContentCacheTTL() time.Duration {
	return time.Duration(c.Cache.ContentTTLSeconds) * time.Second
}

// ExtractTimeout converts the configured race deadline into a duration.
func (c Config) ExtractTimeout() time.Duration {
	return time.Duration(c.Extract.TimeoutSeconds) * time.Second
}

// ExtractionBudget converts the per-claim extraction stage budget into a
// duration.
func (c Config) ExtractionBudget() time.Duration {
	return time.Duration(c.Verify.ExtractionBudgetSeconds) * time.Second
}
