package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/ritzau/blueprint/pkg/cycles"
	"github.com/ritzau/blueprint/pkg/diagram"
	"github.com/ritzau/blueprint/pkg/model"
	"github.com/ritzau/blueprint/pkg/pipeline"
)

func init() {
	color.NoColor = true
}

func TestPrintGenerationReport(t *testing.T) {
	b := pipeline.Bundle{
		Artifacts: []pipeline.Artifact{
			{Kind: pipeline.KindRules, Path: "PROJECT_RULES.md"},
			{Kind: pipeline.KindComponent, Path: "specs/web-app.yaml", NodeID: "n1"},
		},
		Failures: []pipeline.ArtifactFailure{
			{Kind: pipeline.KindComponent, Path: "specs/api.yaml", NodeID: "n2", Err: errors.New("boom")},
		},
	}
	var buf bytes.Buffer
	PrintGenerationReport(&buf, "out", b, []string{"out/PROJECT_RULES.md", "out/specs/web-app.yaml"})

	got := buf.String()
	for _, want := range []string{
		"Output: out",
		"✓ specs/web-app.yaml (n1)",
		"✗ specs/api.yaml",
		"Error: boom",
		"wrote 2 file(s), 1 failed",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q:\n%s", want, got)
		}
	}
}

func TestPrintDiagnosticsClean(t *testing.T) {
	g := diagram.Example(time.Time{})
	var buf bytes.Buffer
	PrintDiagnostics(&buf, "diagram.json", *g, diagram.Report{}, cycles.Diagnose(*g))

	got := buf.String()
	if !strings.Contains(got, "No problems found") {
		t.Errorf("expected clean report:\n%s", got)
	}
	if !strings.Contains(got, "Components: 4, connections: 4") {
		t.Errorf("unexpected counts:\n%s", got)
	}
}

func TestPrintDiagnosticsFindings(t *testing.T) {
	g := model.NewGraph(time.Time{})
	g.AddNode(model.Node{ID: "a", Category: model.CategoryBackend, Label: "A"})
	g.AddNode(model.Node{ID: "b", Category: model.CategoryBackend, Label: "B"})
	g.AddEdge(model.Edge{ID: "e1", Source: "a", Target: "b"})
	g.AddEdge(model.Edge{ID: "e2", Source: "b", Target: "a"})
	report := diagram.Report{DroppedEdges: []model.Edge{{ID: "e3", Source: "a", Target: "gone"}}}

	var buf bytes.Buffer
	PrintDiagnostics(&buf, "d.json", *g, report, cycles.Diagnose(*g))

	got := buf.String()
	for _, want := range []string{"DROPPED EDGES (1)", "e3: a → gone", "DEPENDENCY CYCLES (1)", "A → B → A"} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "No problems found") {
		t.Error("report should not claim to be clean")
	}
}

func TestPrintSuggestions(t *testing.T) {
	n := model.Node{ID: "m1", Label: "Checkout", Meta: model.NodeMeta{Suggestions: []model.Suggestion{{
		ID:       "suggestion_1",
		Kind:     model.SuggestionAddChildren,
		Status:   model.StatusPending,
		Content:  "Add 1 child nodes",
		Children: []model.ChildProposal{{Label: "Cart", Description: "Holds items"}},
	}}}}

	var buf bytes.Buffer
	PrintSuggestions(&buf, n)
	got := buf.String()
	for _, want := range []string{"Suggestions for Checkout (m1)", "[pending] suggestion_1 add_children", "- Cart: Holds items"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}
