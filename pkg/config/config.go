// Package config loads the layered blueprint configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/ritzau/blueprint/pkg/classify"
	"github.com/ritzau/blueprint/pkg/expander"
	"github.com/ritzau/blueprint/pkg/generate"
	"github.com/ritzau/blueprint/pkg/logging"
	"github.com/ritzau/blueprint/pkg/policy"
)

// DefaultFile is the optional config file read from the working directory.
const DefaultFile = "blueprint.toml"

// EnvPrefix prefixes environment overrides, e.g. BLUEPRINT_AI_MODEL sets ai.model.
const EnvPrefix = "BLUEPRINT_"

// AI configures mind-map expansion.
type AI struct {
	Provider  string        `koanf:"provider" validate:"oneof=openai anthropic"`
	Model     string        `koanf:"model"`
	Key       string        `koanf:"key"`
	BaseURL   string        `koanf:"baseurl" validate:"omitempty,url"`
	TTL       time.Duration `koanf:"ttl" validate:"gte=0"`
	MaxTokens int           `koanf:"maxtokens" validate:"gte=0"`
}

// Config holds all configuration for the application
type Config struct {
	Project    string `koanf:"project"`
	Diagram    string `koanf:"diagram" validate:"required"`
	Out        string `koanf:"out" validate:"required"`
	Format     string `koanf:"format" validate:"oneof=yaml yml markdown md"`
	Anti       string `koanf:"anti" validate:"oneof=legacy structured"`
	Phases     string `koanf:"phases" validate:"oneof=table contiguous"`
	Port       int    `koanf:"port" validate:"gte=0,lte=65535"`
	Watch      bool   `koanf:"watch"`
	DB         string `koanf:"db"`
	Verbosity  string `koanf:"verbosity" validate:"omitempty,oneof=trace debug info warn warning error"`
	VerboseCnt int    `koanf:"verbose"`
	AI         AI     `koanf:"ai"`

	// File is the config file that was read, empty when none was found.
	File string `koanf:"-"`
}

// Defaults are the values used when nothing else sets a key.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"project":   generate.DefaultProjectName,
		"diagram":   "diagram.json",
		"out":       ".",
		"format":    "yaml",
		"anti":      "legacy",
		"phases":    "table",
		"port":      8080,
		"watch":     false,
		"db":        "",
		"verbosity": "",
		"verbose":   0,
		"ai": map[string]interface{}{
			"provider":  expander.ProviderOpenAI,
			"model":     "",
			"key":       "",
			"baseurl":   "",
			"ttl":       expander.DefaultCacheTTL.String(),
			"maxtokens": expander.DefaultMaxTokens,
		},
	}
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
//
// An empty path reads DefaultFile if it exists. A non-empty path must exist.
func Load(f *pflag.FlagSet, path string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(Defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	loaded := ""
	switch {
	case path != "":
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		loaded = path
	default:
		if _, err := os.Stat(DefaultFile); err == nil {
			if err := k.Load(file.Provider(DefaultFile), toml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", DefaultFile, err)
			}
			loaded = DefaultFile
		}
	}

	// 3. Environment variables
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags. Only flags the user changed override lower layers, and
	// dashes map to nesting (--ai-model sets ai.model).
	if f != nil {
		if err := k.Load(posflag.ProviderWithFlag(f, ".", k, func(fl *pflag.Flag) (string, interface{}) {
			return strings.ReplaceAll(fl.Name, "-", "."), posflag.FlagVal(f, fl)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.File = loaded

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// GenerateOptions converts the document settings for the generators.
func (c *Config) GenerateOptions() (generate.Options, error) {
	format, err := generate.ParseFormat(c.Format)
	if err != nil {
		return generate.Options{}, err
	}
	anti, err := policy.ParseRenderMode(c.Anti)
	if err != nil {
		return generate.Options{}, err
	}
	numbering, err := classify.ParseNumbering(c.Phases)
	if err != nil {
		return generate.Options{}, err
	}

	opts := generate.DefaultOptions(c.Project)
	opts.Format = format
	opts.Anti = anti
	opts.Numbering = numbering
	return opts, nil
}

// CompleterConfig converts the AI settings for the expander.
func (c *Config) CompleterConfig() expander.CompleterConfig {
	return expander.CompleterConfig{
		Provider:  c.AI.Provider,
		Model:     c.AI.Model,
		APIKey:    c.AI.Key,
		BaseURL:   c.AI.BaseURL,
		MaxTokens: c.AI.MaxTokens,
	}
}

// LogLevel resolves the effective log level. An explicit verbosity wins over
// the -v count; one -v selects debug and two or more select trace.
func (c *Config) LogLevel() slog.Level {
	if c.Verbosity != "" {
		return logging.ParseLevel(c.Verbosity)
	}
	switch {
	case c.VerboseCnt >= 2:
		return logging.LevelTrace
	case c.VerboseCnt == 1:
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
