package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ritzau/blueprint/pkg/config"
	"github.com/ritzau/blueprint/pkg/logging"
	"github.com/ritzau/blueprint/pkg/output"
	"github.com/ritzau/blueprint/pkg/pipeline"
	"github.com/ritzau/blueprint/pkg/watcher"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate rules, protocol and component specs from the diagram",
	Long: `Generate reads the diagram file and writes PROJECT_RULES.md, AGENT_PROTOCOL.md
and specs/<component>.<ext> into the output directory.

A component that fails to generate does not stop the others; the command
then exits with an error after writing everything that succeeded.`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().Bool("watch", false, "Regenerate whenever the diagram or config file changes")
}

func newGenerator(c *config.Config) (pipeline.Generator, error) {
	opts, err := c.GenerateOptions()
	if err != nil {
		return pipeline.Generator{}, err
	}
	return pipeline.Generator{Options: opts}, nil
}

func generateOnce(c *config.Config) (pipeline.Bundle, error) {
	gen, err := newGenerator(c)
	if err != nil {
		return pipeline.Bundle{}, err
	}
	g, err := pipeline.FileSource{Path: c.Diagram}.Load(context.Background())
	if err != nil {
		return pipeline.Bundle{}, err
	}

	b := gen.Generate(g)
	written, err := pipeline.Write(c.Out, b)
	output.PrintGenerationReport(os.Stdout, c.Out, b, written)
	if err != nil {
		return b, err
	}
	return b, b.Err()
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if _, err := generateOnce(cfg); !cfg.Watch {
		return err
	} else if err != nil {
		logging.Warn("generation incomplete", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fw, err := watcher.NewFileWatcher(cfg.Diagram, cfg.File)
	if err != nil {
		return fmt.Errorf("watching files: %w", err)
	}
	fw.Start(ctx)
	debouncer := watcher.NewDebouncer(fw.Events(), 300*time.Millisecond, 2*time.Second)
	debouncer.Start(ctx)

	fmt.Println("Watching for changes. Press Ctrl+C to stop")
	for event := range debouncer.Output() {
		analysis := watcher.AnalyzeChanges(event)
		if analysis.NeedConfigReload {
			reloaded, err := config.Load(cmd.Flags(), configPath)
			if err != nil {
				logging.Error("config reload failed, keeping previous configuration", "error", err)
			} else {
				cfg = reloaded
				logging.SetLevel(cfg.LogLevel())
			}
		}
		if !analysis.NeedRegenerate {
			continue
		}
		logging.Info("regenerating", "trigger", event.Type.String(), "files", analysis.ChangedFiles)
		if _, err := generateOnce(cfg); err != nil {
			logging.Warn("generation incomplete", "error", err)
		}
	}
	return nil
}
