package runtimeconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-polyglot/internal/runtimeconfig"
)

func TestConfigValidate_DefaultsAreValid(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RequiresDefaultLocaleInLocales(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.DefaultLocale = "pt"

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrDefaultLocaleNotListed) {
		t.Fatalf("expected ErrDefaultLocaleNotListed, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownStorageProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "mysql"

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrStorageProviderUnknown) {
		t.Fatalf("expected ErrStorageProviderUnknown, got %v", err)
	}
}

func TestConfigValidate_RequiresCacheTTL(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Cache = true
	cfg.Cache.TTL = 0

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrCacheTTLInvalid) {
		t.Fatalf("expected ErrCacheTTLInvalid, got %v", err)
	}
}

func TestConfigValidate_RejectsNegativeRetries(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Merge.MaxRetries = -1

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrMergeRetriesInvalid) {
		t.Fatalf("expected ErrMergeRetriesInvalid, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLogging(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "syslog"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}

	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}

func TestLoad_LayersYAMLThenEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "polyglot.yaml")
	yamlDoc := []byte("default_locale: ja\nlocales: [ja, en]\nmerge:\n  max_retries: 5\ncache:\n  ttl: 30s\n")
	if err := os.WriteFile(path, yamlDoc, 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	cfg, err := runtimeconfig.Load(runtimeconfig.LoadOptions{
		Path: path,
		Environment: map[string]string{
			"POLYGLOT_MERGE_MAX_RETRIES": "7",
			"POLYGLOT_STORAGE_PROVIDER":  "postgres",
			"POLYGLOT_STORAGE_DSN":       "postgres://localhost/polyglot",
			"POLYGLOT_LOGGING_FOCUS":     "polyglot.merge,polyglot.translations",
		},
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DefaultLocale != "ja" || len(cfg.Locales) != 2 {
		t.Fatalf("expected yaml locales, got %q %v", cfg.DefaultLocale, cfg.Locales)
	}
	if cfg.Merge.MaxRetries != 7 {
		t.Fatalf("expected env to override retries, got %d", cfg.Merge.MaxRetries)
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Fatalf("expected yaml ttl, got %v", cfg.Cache.TTL)
	}
	if cfg.Storage.Provider != "postgres" {
		t.Fatalf("expected postgres provider, got %q", cfg.Storage.Provider)
	}
	if len(cfg.Logging.Focus) != 2 {
		t.Fatalf("expected focus list from env, got %v", cfg.Logging.Focus)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := runtimeconfig.Load(runtimeconfig.LoadOptions{
		Path:        filepath.Join(t.TempDir(), "absent.yaml"),
		Environment: map[string]string{},
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Provider != "sqlite" {
		t.Fatalf("expected default provider, got %q", cfg.Storage.Provider)
	}
}
