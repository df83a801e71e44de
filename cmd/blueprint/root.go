package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ritzau/blueprint/pkg/config"
	"github.com/ritzau/blueprint/pkg/logging"
)

var (
	// configPath is the --config flag value
	configPath string

	// cfg is loaded before any subcommand runs
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "blueprint",
	Short: "Blueprint - architecture diagrams to agent-ready documents",
	Long: `Blueprint turns an architecture diagram into the documents a coding agent
needs: a project rules file, an agent protocol and one component spec per node.

Configuration is read from blueprint.toml, BLUEPRINT_* environment variables
and flags, in increasing order of precedence.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&configPath, "config", "", "Config file (default: ./blueprint.toml if present)")
	f.String("project", "", "Project name used in generated documents")
	f.StringP("diagram", "d", "diagram.json", "Diagram file")
	f.StringP("out", "o", ".", "Output directory for generated documents")
	f.String("format", "yaml", "Component spec format: yaml or markdown")
	f.String("anti", "legacy", "Anti-responsibility rendering: legacy or structured")
	f.String("phases", "table", "Build phase numbering: table or contiguous")
	f.String("verbosity", "", "Log level: trace, debug, info, warn or error")
	f.CountP("verbose", "v", "Increase log verbosity (-v debug, -vv trace)")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(cmd.Flags(), configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	cfg = loaded
	logging.SetLevel(cfg.LogLevel())
	if cfg.File != "" {
		logging.Debug("loaded config file", "path", cfg.File)
	}
	return nil
}
