package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/ritzau/blueprint/pkg/classify"
	"github.com/ritzau/blueprint/pkg/generate"
	"github.com/ritzau/blueprint/pkg/logging"
	"github.com/ritzau/blueprint/pkg/policy"
)

func flagSet() *pflag.FlagSet {
	f := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.String("project", "", "")
	f.String("format", "yaml", "")
	f.Int("port", 8080, "")
	f.String("ai-model", "", "")
	f.CountP("verbose", "v", "")
	return f
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(nil, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Project != generate.DefaultProjectName || cfg.Diagram != "diagram.json" || cfg.Port != 8080 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.AI.TTL != time.Hour {
		t.Errorf("ttl = %v", cfg.AI.TTL)
	}
	if cfg.File != "" {
		t.Errorf("no config file expected, got %q", cfg.File)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	toml := "project = \"From File\"\nport = 9000\nformat = \"markdown\"\n\n[ai]\nprovider = \"anthropic\"\nmodel = \"file-model\"\n"
	if err := os.WriteFile(filepath.Join(dir, DefaultFile), []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BLUEPRINT_PORT", "9100")
	t.Setenv("BLUEPRINT_AI_MODEL", "env-model")

	f := flagSet()
	if err := f.Parse([]string{"--ai-model", "flag-model", "-vv"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(f, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.File != DefaultFile {
		t.Errorf("file = %q", cfg.File)
	}
	if cfg.Project != "From File" {
		t.Errorf("project = %q", cfg.Project)
	}
	// An unchanged flag default must not override the file.
	if cfg.Format != "markdown" {
		t.Errorf("format = %q", cfg.Format)
	}
	if cfg.Port != 9100 {
		t.Errorf("env should override file, port = %d", cfg.Port)
	}
	if cfg.AI.Provider != "anthropic" {
		t.Errorf("provider = %q", cfg.AI.Provider)
	}
	if cfg.AI.Model != "flag-model" {
		t.Errorf("flag should override env, model = %q", cfg.AI.Model)
	}
	if cfg.LogLevel() != logging.LevelTrace {
		t.Errorf("level = %v", cfg.LogLevel())
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(nil, filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for a missing explicit config file")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BLUEPRINT_FORMAT", "pdf")
	if _, err := Load(nil, ""); err == nil {
		t.Error("expected validation error for format=pdf")
	}
}

func TestGenerateOptions(t *testing.T) {
	cfg := &Config{Project: "Shop", Format: "md", Anti: "structured", Phases: "contiguous"}
	opts, err := cfg.GenerateOptions()
	if err != nil {
		t.Fatalf("GenerateOptions: %v", err)
	}
	if opts.ProjectName != "Shop" || opts.Format != generate.FormatMarkdown ||
		opts.Anti != policy.RenderStructured || opts.Numbering != classify.NumberContiguous {
		t.Errorf("unexpected options %+v", opts)
	}
}

func TestLogLevel(t *testing.T) {
	cases := []struct {
		cfg  Config
		want slog.Level
	}{
		{Config{}, slog.LevelInfo},
		{Config{VerboseCnt: 1}, slog.LevelDebug},
		{Config{Verbosity: "error", VerboseCnt: 2}, slog.LevelError},
	}
	for _, c := range cases {
		if got := c.cfg.LogLevel(); got != c.want {
			t.Errorf("%+v: level = %v, want %v", c.cfg, got, c.want)
		}
	}
}
