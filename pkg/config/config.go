// Package config loads the optional per-project .shipit.yaml file.
//
// Configuration precedence (highest to lowest):
//  1. Command-line flags (applied by the caller)
//  2. Environment variables prefixed SHIPIT_ (SHIPIT_REMOTE, SHIPIT_LOG_LEVEL, ...)
//  3. The YAML config file
//  4. Defaults
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/holon-run/shipit/pkg/log"
	"github.com/holon-run/shipit/pkg/registry"
)

// FileName is the project config file looked up in the project root.
const FileName = ".shipit.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SHIPIT_"

const maxConfigFileSize = 1024 * 1024 // 1MB

// Hosting provider names accepted in hosting.providers.
const (
	ProviderGH        = "gh"
	ProviderGlab      = "glab"
	ProviderGitHubAPI = "github-api"
)

// Config is the project configuration.
type Config struct {
	// Remote is the remote to publish to.
	Remote     string           `koanf:"remote" yaml:"remote"`
	Git        GitConfig        `koanf:"git" yaml:"git"`
	Registries RegistriesConfig `koanf:"registries" yaml:"registries"`
	Hosting    HostingConfig    `koanf:"hosting" yaml:"hosting"`
	Log        LogConfig        `koanf:"log" yaml:"log"`
}

// GitConfig holds identity defaults offered when git has none configured.
type GitConfig struct {
	AuthorName  string `koanf:"author_name" yaml:"author_name,omitempty"`
	AuthorEmail string `koanf:"author_email" yaml:"author_email,omitempty"`
}

// RegistriesConfig narrows registry publishing.
type RegistriesConfig struct {
	// Skip disables registry publishing.
	Skip bool `koanf:"skip" yaml:"skip"`
	// Only restricts publishing to these registries without asking.
	Only []string `koanf:"only" yaml:"only,omitempty"`
}

// HostingConfig controls remote repository creation.
type HostingConfig struct {
	// Providers are probed in order when a remote must be created.
	Providers []string `koanf:"providers" yaml:"providers"`
	// SSH prefers SSH clone URLs for repositories created through the API.
	SSH bool `koanf:"ssh" yaml:"ssh"`
}

// LogConfig selects the log level and format.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Path returns the default config file path for a project directory.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Load reads configuration for the project in dir. An explicit path must
// exist; the default .shipit.yaml is optional.
func Load(dir, path string) (*Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		path = Path(dir)
	}

	content, err := readConfigFile(path)
	switch {
	case err == nil:
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, err
	}

	// SHIPIT_REMOTE -> remote, SHIPIT_GIT_AUTHOR_NAME -> git.author_name
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		section, field, ok := strings.Cut(lower, "_")
		if !ok {
			return lower
		}
		return section + "." + field
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Remote == "" {
		cfg.Remote = "origin"
	}
	if len(cfg.Hosting.Providers) == 0 {
		cfg.Hosting.Providers = []string{ProviderGH, ProviderGlab, ProviderGitHubAPI}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = string(log.LevelProgress)
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "cli"
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Remote) == "" {
		return fmt.Errorf("remote must not be empty")
	}
	if strings.ContainsAny(c.Remote, " \t/:") {
		return fmt.Errorf("invalid remote name %q", c.Remote)
	}
	for _, name := range c.Registries.Only {
		if _, err := registry.ParseKind(name); err != nil {
			return fmt.Errorf("registries.only: %w", err)
		}
	}
	for _, p := range c.Hosting.Providers {
		switch p {
		case ProviderGH, ProviderGlab, ProviderGitHubAPI:
		default:
			return fmt.Errorf("hosting.providers: unknown provider %q (expected %s, %s or %s)", p, ProviderGH, ProviderGlab, ProviderGitHubAPI)
		}
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "console", "cli":
	default:
		return fmt.Errorf("log.format: unknown format %q (expected console or cli)", c.Log.Format)
	}
	return nil
}

// RegistryKinds parses Registries.Only. Validate has already rejected
// unknown names.
func (c *Config) RegistryKinds() []registry.Kind {
	var kinds []registry.Kind
	for _, name := range c.Registries.Only {
		if k, err := registry.ParseKind(name); err == nil {
			kinds = append(kinds, k)
		}
	}
	return kinds
}
