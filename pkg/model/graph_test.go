package model

import (
	"errors"
	"testing"
	"time"
)

func sampleGraph() *Graph {
	g := NewGraph(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	g.AddNode(Node{ID: "fe", Category: CategoryFrontend, Label: "Web App"})
	g.AddNode(Node{ID: "be", Category: CategoryBackend, Label: "API Server"})
	g.AddNode(Node{ID: "db", Category: CategoryStorage, Label: "Database"})
	g.AddNode(Node{ID: "fe2", Category: CategoryFrontend, Label: "Admin"})
	g.AddEdge(Edge{ID: "e1", Source: "fe", Target: "be", Label: "REST API calls"})
	g.AddEdge(Edge{ID: "e2", Source: "be", Target: "db"})
	g.AddEdge(Edge{ID: "e3", Source: "fe2", Target: "be"})
	return g
}

func TestGroupByCategory(t *testing.T) {
	g := sampleGraph()
	groups := GroupByCategory(g.Nodes)

	if len(groups) != 3 {
		t.Fatalf("Expected 3 groups, got %d", len(groups))
	}
	fe := groups[CategoryFrontend]
	if len(fe) != 2 || fe[0].ID != "fe" || fe[1].ID != "fe2" {
		t.Errorf("Expected frontend group [fe fe2] in input order, got %v", fe)
	}
	if _, ok := groups[CategoryAuth]; ok {
		t.Error("Expected absent category to have no key")
	}
}

func TestEdgesTouching(t *testing.T) {
	g := sampleGraph()

	touching := EdgesTouching("be", g.Edges)
	if len(touching) != 3 {
		t.Fatalf("Expected 3 edges touching be, got %d", len(touching))
	}
	for i, want := range []string{"e1", "e2", "e3"} {
		if touching[i].ID != want {
			t.Errorf("Edge %d: expected %s, got %s", i, want, touching[i].ID)
		}
	}

	if got := EdgesTouching("missing", g.Edges); len(got) != 0 {
		t.Errorf("Expected no edges for unknown node, got %d", len(got))
	}
}

func TestResolveOtherEndpoint(t *testing.T) {
	g := sampleGraph()
	idx := NewNodeIndex(g.Nodes)

	other, err := ResolveOtherEndpoint(g.Edges[0], "fe", idx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if other.ID != "be" {
		t.Errorf("Expected be, got %s", other.ID)
	}
	if d := g.Edges[0].DirectionFrom("fe"); d != Outbound {
		t.Errorf("Expected outbound, got %s", d)
	}

	other, err = ResolveOtherEndpoint(g.Edges[0], "be", idx)
	if err != nil || other.ID != "fe" {
		t.Errorf("Expected fe, got %s (err %v)", other.ID, err)
	}
	if d := g.Edges[0].DirectionFrom("be"); d != Inbound {
		t.Errorf("Expected inbound, got %s", d)
	}

	dangling := Edge{ID: "bad", Source: "fe", Target: "ghost"}
	if _, err := ResolveOtherEndpoint(dangling, "fe", idx); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Expected ErrNodeNotFound, got %v", err)
	}
}

func TestArchitectureViewDropsMindMap(t *testing.T) {
	g := sampleGraph()
	g.AddNode(Node{ID: "mm", Category: CategoryMindMap, Label: "Ideas"})
	g.AddEdge(Edge{ID: "e4", Source: "mm", Target: "fe"})

	view := g.ArchitectureView()
	if len(view.Nodes) != 4 {
		t.Errorf("Expected 4 nodes, got %d", len(view.Nodes))
	}
	if len(view.Edges) != 3 {
		t.Errorf("Expected 3 edges, got %d", len(view.Edges))
	}
	if len(g.Nodes) != 5 {
		t.Error("ArchitectureView must not mutate the graph")
	}
}

func TestCloneIsDeep(t *testing.T) {
	g := sampleGraph()
	g.Nodes[0].Meta.TechStack = []string{"React"}

	c := g.Clone()
	c.Nodes[0].Meta.TechStack[0] = "Vue"
	c.Edges[0].Label = "changed"

	if g.Nodes[0].Meta.TechStack[0] != "React" {
		t.Error("Clone shares tech stack slice")
	}
	if g.Edges[0].Label != "REST API calls" {
		t.Error("Clone shares edge slice")
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range append(ArchitectureCategories, CategoryMindMap) {
		if _, err := ParseCategory(string(c)); err != nil {
			t.Errorf("ParseCategory(%q) failed: %v", c, err)
		}
	}
	if _, err := ParseCategory("database"); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("Expected ErrUnknownCategory, got %v", err)
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Web App":          "web-app",
		"API  Server":      "api-server",
		"Auth\tService":    "auth-service",
		"already-slugged":  "already-slugged",
		" Padded Label ":   "-padded-label-",
		"MixedCase\nLines": "mixedcase-lines",
	}
	for in, want := range cases {
		got := Slug(in)
		if got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
		if Slug(got) != got {
			t.Errorf("Slug is not idempotent for %q", in)
		}
	}
}

func TestNewIDs(t *testing.T) {
	a, b := NewNodeID(), NewNodeID()
	if a == b {
		t.Errorf("ids collide: %s", a)
	}
	if len(a) != len("node_")+10 || a[:5] != "node_" {
		t.Errorf("unexpected node id %q", a)
	}
	if e := NewEdgeID(); e[:5] != "edge_" {
		t.Errorf("unexpected edge id %q", e)
	}
}
