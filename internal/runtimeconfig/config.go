package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrDefaultLocaleRequired = errors.New("polyglot config: default locale is required")
var ErrDefaultLocaleNotListed = errors.New("polyglot config: default locale must be part of locales")
var ErrStorageProviderUnknown = errors.New("polyglot config: storage provider is invalid")
var ErrStorageDSNRequired = errors.New("polyglot config: storage dsn is required")
var ErrCacheTTLInvalid = errors.New("polyglot config: cache ttl must be positive when cache is enabled")
var ErrMergeRetriesInvalid = errors.New("polyglot config: merge max retries must be zero or positive")
var ErrLoggingProviderRequired = errors.New("polyglot config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("polyglot config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("polyglot config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("polyglot config: logging format is invalid")

// Config aggregates storage, locale, merge and logging settings.
type Config struct {
	DefaultLocale string        `yaml:"default_locale" env:"DEFAULT_LOCALE"`
	Locales       []string      `yaml:"locales" env:"LOCALES" envSeparator:","`
	Storage       StorageConfig `yaml:"storage" envPrefix:"STORAGE_"`
	Cache         CacheConfig   `yaml:"cache" envPrefix:"CACHE_"`
	Merge         MergeConfig   `yaml:"merge" envPrefix:"MERGE_"`
	Logging       LoggingConfig `yaml:"logging" envPrefix:"LOGGING_"`
	Features      Features      `yaml:"features" envPrefix:"FEATURES_"`
}

// StorageConfig selects the database backing translations and owners.
type StorageConfig struct {
	Provider string `yaml:"provider" env:"PROVIDER"`
	DSN      string `yaml:"dsn" env:"DSN"`
	Debug    bool   `yaml:"debug" env:"DEBUG"`
}

// CacheConfig captures read-cache behaviour.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" env:"ENABLED"`
	TTL     time.Duration `yaml:"ttl" env:"TTL"`
}

// MergeConfig tunes the merge engine.
type MergeConfig struct {
	// MaxRetries bounds destroy-and-retry rounds per relocated translation.
	MaxRetries int `yaml:"max_retries" env:"MAX_RETRIES"`
	// DryRun makes merges preview-only unless a caller explicitly commits.
	DryRun bool `yaml:"dry_run" env:"DRY_RUN"`
}

// Features toggles optional wiring.
type Features struct {
	Logger bool `yaml:"logger" env:"LOGGER"`
	Cache  bool `yaml:"cache" env:"CACHE"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider" env:"PROVIDER"`
	Level     string   `yaml:"level" env:"LEVEL"`
	Format    string   `yaml:"format" env:"FORMAT"`
	AddSource bool     `yaml:"add_source" env:"ADD_SOURCE"`
	Focus     []string `yaml:"focus" env:"FOCUS" envSeparator:","`
}

// DefaultConfig returns defaults suitable for local use with sqlite.
func DefaultConfig() Config {
	return Config{
		DefaultLocale: "en",
		Locales:       []string{"en", "ja", "fr", "de", "es", "it", "ko", "zh"},
		Storage: StorageConfig{
			Provider: "sqlite",
			DSN:      "file:polyglot.db?cache=shared",
		},
		Cache: CacheConfig{
			Enabled: false,
			TTL:     time.Minute,
		},
		Merge: MergeConfig{
			MaxRetries: 3,
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "console",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	locale := strings.ToLower(strings.TrimSpace(cfg.DefaultLocale))
	if locale == "" {
		return ErrDefaultLocaleRequired
	}
	if len(cfg.Locales) > 0 && !containsFold(cfg.Locales, locale) {
		return fmt.Errorf("%w: %s", ErrDefaultLocaleNotListed, locale)
	}
	switch normalizeProvider(cfg.Storage.Provider) {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}
	if strings.TrimSpace(cfg.Storage.DSN) == "" {
		return ErrStorageDSNRequired
	}
	if (cfg.Cache.Enabled || cfg.Features.Cache) && cfg.Cache.TTL <= 0 {
		return ErrCacheTTLInvalid
	}
	if cfg.Merge.MaxRetries < 0 {
		return ErrMergeRetriesInvalid
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// CacheEnabled reports whether the read cache should be wired.
func (cfg Config) CacheEnabled() bool {
	return cfg.Cache.Enabled || cfg.Features.Cache
}

func containsFold(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(strings.TrimSpace(value), target) {
			return true
		}
	}
	return false
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "gologger", "noop":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
