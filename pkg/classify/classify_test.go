package classify

import (
	"errors"
	"slices"
	"testing"

	"github.com/ritzau/blueprint/pkg/model"
)

func nodes(categories ...model.Category) []model.Node {
	out := make([]model.Node, 0, len(categories))
	for i, c := range categories {
		out = append(out, model.Node{ID: string(c) + string(rune('a'+i)), Category: c, Label: string(c)})
	}
	return out
}

func TestDetectProjectType(t *testing.T) {
	cases := []struct {
		categories []model.Category
		want       string
	}{
		{[]model.Category{model.CategoryFrontend, model.CategoryBackend}, FullStackWebApp},
		{[]model.Category{model.CategoryFrontend, model.CategoryStorage}, FrontendWebApp},
		{[]model.Category{model.CategoryStorage, model.CategoryBackend}, BackendAPIService},
		{[]model.Category{model.CategoryBackend, model.CategoryBackground}, BackendService},
		{[]model.Category{model.CategoryBackground, model.CategoryStorage}, BackgroundService},
		{[]model.Category{model.CategoryAuth}, GenericApp},
		{nil, GenericApp},
	}
	for _, tc := range cases {
		if got := DetectProjectType(nodes(tc.categories...)); got != tc.want {
			t.Errorf("DetectProjectType(%v) = %q, want %q", tc.categories, got, tc.want)
		}
	}
}

func TestBoundariesSingleCategory(t *testing.T) {
	absentChecked := map[model.Category]string{
		model.CategoryFrontend:   "A user-facing UI (backend/API only)",
		model.CategoryBackground: "A background job processing system (synchronous only)",
		model.CategoryExternal:   "A system with extensive third-party integrations",
	}

	for _, c := range model.ArchitectureCategories {
		b, err := ComputeBoundaries(nodes(c))
		if err != nil {
			t.Fatalf("%s: %v", c, err)
		}
		if len(b.Is) != 1 {
			t.Errorf("%s: expected exactly one IS statement, got %v", c, b.Is)
		}
		for absent, statement := range absentChecked {
			has := slices.Contains(b.IsNot, statement)
			if absent == c && has {
				t.Errorf("%s: IS NOT must not mention a present category", c)
			}
			if absent != c && !has {
				t.Errorf("%s: missing IS NOT statement %q", c, statement)
			}
		}
	}
}

func TestBoundariesBackendStorage(t *testing.T) {
	b, err := ComputeBoundaries(nodes(model.CategoryStorage, model.CategoryBackend))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"An API service handling business logic and data access",
		"A system with persistent data storage",
	}
	if !slices.Equal(b.Is, want) {
		t.Errorf("IS = %v, want %v (canonical order, not input order)", b.Is, want)
	}
	if !slices.Contains(b.IsNot, "A user-facing UI (backend/API only)") {
		t.Errorf("IS NOT = %v", b.IsNot)
	}
}

func TestInferCommunicationPattern(t *testing.T) {
	if got := InferCommunicationPattern(model.CategoryBackground, model.CategoryStorage); got != "Direct DB access" {
		t.Errorf("Unexpected pattern %q", got)
	}
	if got := InferCommunicationPattern(model.CategoryStorage, model.CategoryFrontend); got != "# AI: Define pattern" {
		t.Errorf("Expected placeholder, got %q", got)
	}
}

func TestBuildOrderPhase(t *testing.T) {
	p, err := BuildOrderPhase(model.CategoryAuth)
	if err != nil {
		t.Fatal(err)
	}
	if p.Label() != "Phase 3: Authentication" {
		t.Errorf("Unexpected label %q", p.Label())
	}
	if _, err := BuildOrderPhase(model.CategoryMindMap); !errors.Is(err, model.ErrUnknownCategory) {
		t.Errorf("Expected ErrUnknownCategory, got %v", err)
	}
}

func labels(phases []PlannedPhase) []string {
	out := make([]string, len(phases))
	for i, p := range phases {
		out[i] = p.Label()
	}
	return out
}

func TestBuildPhasesEmpty(t *testing.T) {
	phases, err := BuildPhases(nil, NumberByTable)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Phase 1: Foundation", "Phase 2: Polish"}
	if got := labels(phases); !slices.Equal(got, want) {
		t.Errorf("Got %v, want %v", got, want)
	}
}

func TestBuildPhasesTableNumbering(t *testing.T) {
	phases, err := BuildPhases(nodes(model.CategoryBackend, model.CategoryStorage), NumberByTable)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Phase 1: Foundation", "Phase 2: Storage", "Phase 4: Backend", "Phase 4: Polish"}
	if got := labels(phases); !slices.Equal(got, want) {
		t.Errorf("Got %v, want %v", got, want)
	}
}

func TestBuildPhasesContiguousNumbering(t *testing.T) {
	phases, err := BuildPhases(nodes(model.CategoryBackend, model.CategoryStorage), NumberContiguous)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Phase 1: Foundation", "Phase 2: Storage", "Phase 3: Backend", "Phase 4: Polish"}
	if got := labels(phases); !slices.Equal(got, want) {
		t.Errorf("Got %v, want %v", got, want)
	}
}

func TestBuildPhasesAllCategories(t *testing.T) {
	phases, err := BuildPhases(nodes(model.ArchitectureCategories...), NumberByTable)
	if err != nil {
		t.Fatal(err)
	}
	if len(phases) != 8 {
		t.Fatalf("Expected 8 phases, got %d", len(phases))
	}
	if phases[7].Label() != "Phase 8: Polish" {
		t.Errorf("Unexpected polish label %q", phases[7].Label())
	}
	if phases[1].Name != "Storage" || phases[6].Name != "Background Jobs" {
		t.Errorf("Unexpected order %v", labels(phases))
	}
}
