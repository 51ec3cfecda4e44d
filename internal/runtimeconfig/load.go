package runtimeconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "POLYGLOT_"

// LoadOptions controls where Load reads from.
type LoadOptions struct {
	// Path is an optional YAML file; a missing file is not an error.
	Path string
	// DotEnv lists .env files to preload; missing files are skipped.
	DotEnv []string
	// Environment replaces os.Environ when set.
	Environment map[string]string
}

// Load layers defaults, the YAML file, .env files and the environment, then validates.
func Load(opts LoadOptions) (Config, error) {
	cfg := DefaultConfig()

	if path := strings.TrimSpace(opts.Path); path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("polyglot config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("polyglot config: parse %s: %w", path, err)
			}
		}
	}

	for _, file := range opts.DotEnv {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return Config{}, fmt.Errorf("polyglot config: load %s: %w", file, err)
		}
	}

	envOpts := env.Options{Prefix: EnvPrefix}
	if opts.Environment != nil {
		envOpts.Environment = opts.Environment
	}
	if err := env.ParseWithOptions(&cfg, envOpts); err != nil {
		return Config{}, fmt.Errorf("polyglot config: environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
