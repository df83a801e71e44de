package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/ritzau/blueprint/pkg/cycles"
	"github.com/ritzau/blueprint/pkg/diagram"
	"github.com/ritzau/blueprint/pkg/output"
)

var strictValidate bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the diagram for errors and structural problems",
	Long: `Validate imports the diagram file and reports dropped edges, dependency
cycles, isolated components and mind-map hierarchy problems.

Findings are warnings unless --strict is given.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&strictValidate, "strict", false, "Exit with an error when anything is reported")
}

var errFindings = errors.New("diagram has findings")

func runValidate(cmd *cobra.Command, args []string) error {
	g, report, err := diagram.ImportFile(cfg.Diagram)
	if err != nil {
		return err
	}

	d := cycles.Diagnose(*g)
	output.PrintDiagnostics(os.Stdout, cfg.Diagram, *g, report, d)

	if strictValidate && !(report.Clean() && d.Empty()) {
		return errFindings
	}
	return nil
}
