// Package output prints colored console reports.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/ritzau/blueprint/pkg/cycles"
	"github.com/ritzau/blueprint/pkg/diagram"
	"github.com/ritzau/blueprint/pkg/model"
	"github.com/ritzau/blueprint/pkg/pipeline"
)

var (
	bold   = color.New(color.Bold)
	red    = color.New(color.FgRed)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
)

// PrintGenerationReport prints the artifacts of a generation pass and any
// failures. written lists the files that reached the disk.
func PrintGenerationReport(w io.Writer, outDir string, b pipeline.Bundle, written []string) {
	bold.Fprintln(w, "Blueprint - Generation Report")
	bold.Fprintln(w, "=============================")
	fmt.Fprintf(w, "Output: %s\n", outDir)
	fmt.Fprintf(w, "Generated: %d artifact(s)\n", len(b.Artifacts))
	fmt.Fprintln(w)

	for _, a := range b.Artifacts {
		green.Fprintf(w, "  ✓ %s", a.Path)
		if a.NodeID != "" {
			cyan.Fprintf(w, " (%s)", a.NodeID)
		}
		fmt.Fprintln(w)
	}

	if len(b.Failures) > 0 {
		fmt.Fprintln(w)
		red.Fprintln(w, "FAILED ARTIFACTS:")
		for _, f := range b.Failures {
			yellow.Fprintf(w, "  ✗ %s\n", f.Path)
			fmt.Fprintf(w, "    Error: %v\n", f.Err)
		}
	}

	fmt.Fprintln(w)
	switch {
	case len(b.Failures) == 0:
		green.Fprintf(w, "Summary: wrote %d file(s)\n", len(written))
	case len(b.Artifacts) == 0:
		red.Fprintf(w, "Summary: all %d artifact(s) failed\n", len(b.Failures))
	default:
		yellow.Fprintf(w, "Summary: wrote %d file(s), %d failed\n", len(written), len(b.Failures))
	}
}

// PrintDiagnostics prints import repairs and structural findings.
func PrintDiagnostics(w io.Writer, path string, g model.Graph, report diagram.Report, d cycles.Diagnostics) {
	arch := g.ArchitectureView()

	bold.Fprintln(w, "Blueprint - Diagram Check")
	bold.Fprintln(w, "=========================")
	fmt.Fprintf(w, "Diagram: %s\n", path)
	fmt.Fprintf(w, "Components: %d, connections: %d, mind-map nodes: %d\n",
		len(arch.Nodes), len(arch.Edges), len(g.Nodes)-len(arch.Nodes))
	fmt.Fprintln(w)

	if len(report.DroppedEdges) > 0 {
		yellow.Fprintf(w, "DROPPED EDGES (%d):\n", len(report.DroppedEdges))
		for _, e := range report.DroppedEdges {
			fmt.Fprintf(w, "  %s: %s → %s\n", e.ID, e.Source, e.Target)
		}
		fmt.Fprintln(w)
	}
	if len(report.Warnings) > 0 {
		yellow.Fprintln(w, "WARNINGS:")
		for _, msg := range report.Warnings {
			fmt.Fprintf(w, "  %s\n", msg)
		}
		fmt.Fprintln(w)
	}

	if len(d.Cycles) > 0 {
		red.Fprintf(w, "DEPENDENCY CYCLES (%d):\n", len(d.Cycles))
		for _, c := range d.Cycles {
			fmt.Fprintf(w, "  %s → %s\n", strings.Join(c.Labels, " → "), c.Labels[0])
		}
		fmt.Fprintln(w)
	}
	if len(d.Isolated) > 0 {
		yellow.Fprintln(w, "ISOLATED COMPONENTS:")
		for _, id := range d.Isolated {
			n, _ := g.Node(id)
			fmt.Fprintf(w, "  %s", n.Label)
			cyan.Fprintf(w, " (%s)\n", id)
		}
		fmt.Fprintln(w)
	}
	if len(d.HierarchyLoops) > 0 {
		red.Fprintln(w, "MIND-MAP PARENT LOOPS:")
		for _, c := range d.HierarchyLoops {
			fmt.Fprintf(w, "  %s\n", strings.Join(c.Labels, ", "))
		}
		fmt.Fprintln(w)
	}
	if len(d.MissingParents) > 0 {
		yellow.Fprintln(w, "MIND-MAP NODES WITH MISSING PARENT:")
		for _, id := range d.MissingParents {
			fmt.Fprintf(w, "  %s\n", id)
		}
		fmt.Fprintln(w)
	}

	if report.Clean() && d.Empty() {
		green.Fprintln(w, "✓ No problems found")
	}
	if len(d.DependencyOrder) > 0 {
		labels := make([]string, 0, len(d.DependencyOrder))
		for _, id := range d.DependencyOrder {
			n, _ := g.Node(id)
			labels = append(labels, n.Label)
		}
		cyan.Fprintf(w, "Dependency order: %s\n", strings.Join(labels, ", "))
	}
}

// PrintSuggestions lists the suggestions stored on a mind-map node.
func PrintSuggestions(w io.Writer, n model.Node) {
	bold.Fprintf(w, "Suggestions for %s", n.Label)
	cyan.Fprintf(w, " (%s)\n", n.ID)

	if len(n.Meta.Suggestions) == 0 {
		fmt.Fprintln(w, "  none")
		return
	}
	for _, s := range n.Meta.Suggestions {
		status := yellow
		switch s.Status {
		case model.StatusAccepted:
			status = green
		case model.StatusRejected:
			status = red
		}
		status.Fprintf(w, "  [%s]", s.Status)
		fmt.Fprintf(w, " %s %s: %s\n", s.ID, s.Kind, s.Content)
		for _, c := range s.Children {
			fmt.Fprintf(w, "    - %s", c.Label)
			if c.Description != "" {
				fmt.Fprintf(w, ": %s", c.Description)
			}
			fmt.Fprintln(w)
		}
	}
}
