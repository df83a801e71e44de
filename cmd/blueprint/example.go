package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ritzau/blueprint/pkg/diagram"
)

var forceExample bool

var exampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Write the built-in SaaS Starter example diagram",
	RunE:  runExample,
}

func init() {
	rootCmd.AddCommand(exampleCmd)
	exampleCmd.Flags().BoolVarP(&forceExample, "force", "f", false, "Overwrite an existing diagram file")
}

func runExample(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(cfg.Diagram); err == nil && !forceExample {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfg.Diagram)
	}
	if err := diagram.ExportFile(cfg.Diagram, *diagram.Example(time.Now())); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", cfg.Diagram)
	fmt.Printf("Next: blueprint generate --project %q\n", diagram.ExampleProjectName)
	return nil
}
