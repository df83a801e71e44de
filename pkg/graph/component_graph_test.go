package graph

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/ritzau/blueprint/pkg/model"
)

func node(id string, c model.Category) model.Node {
	return model.Node{ID: id, Category: c, Label: id}
}

func TestAddDependency(t *testing.T) {
	cg := NewComponentGraph()
	cg.AddComponent(node("web", model.CategoryFrontend))
	cg.AddComponent(node("api", model.CategoryBackend))
	cg.AddComponent(node("db", model.CategoryStorage))

	if err := cg.AddDependency("web", "api", "REST"); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}
	if err := cg.AddDependency("api", "db", ""); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}
	// Parallel edges collapse, their labels are kept.
	if err := cg.AddDependency("web", "api", "WebSocket"); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}

	if got := cg.Dependencies("web"); !slices.Equal(got, []string{"api"}) {
		t.Errorf("Dependencies(web) = %v", got)
	}
	if got := cg.Dependents("db"); !slices.Equal(got, []string{"api"}) {
		t.Errorf("Dependents(db) = %v", got)
	}
	if got := cg.EdgeLabels("web", "api"); !slices.Equal(got, []string{"REST", "WebSocket"}) {
		t.Errorf("EdgeLabels = %v", got)
	}
	if got := len(cg.Edges()); got != 2 {
		t.Errorf("expected 2 edges, got %d", got)
	}
}

func TestAddDependencyUnknownNode(t *testing.T) {
	cg := NewComponentGraph()
	cg.AddComponent(node("web", model.CategoryFrontend))

	err := cg.AddDependency("web", "missing", "")
	if !errors.Is(err, model.ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
	err = cg.AddDependency("missing", "web", "")
	if !errors.Is(err, model.ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestSelfLoopIgnored(t *testing.T) {
	cg := NewComponentGraph()
	cg.AddComponent(node("api", model.CategoryBackend))
	if err := cg.AddDependency("api", "api", ""); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}
	if len(cg.Edges()) != 0 {
		t.Errorf("self loop should not create an edge")
	}
}

func TestIsolated(t *testing.T) {
	cg := NewComponentGraph()
	cg.AddComponent(node("web", model.CategoryFrontend))
	cg.AddComponent(node("api", model.CategoryBackend))
	cg.AddComponent(node("mail", model.CategoryExternal))
	_ = cg.AddDependency("web", "api", "")

	if got := cg.Isolated(); !slices.Equal(got, []string{"mail"}) {
		t.Errorf("Isolated = %v", got)
	}
}

func TestBuildComponentGraphSkipsMindMap(t *testing.T) {
	g := model.NewGraph(time.Time{})
	g.AddNode(node("web", model.CategoryFrontend))
	g.AddNode(node("api", model.CategoryBackend))
	g.AddNode(node("idea", model.CategoryMindMap))
	g.AddEdge(model.Edge{ID: "e1", Source: "web", Target: "api"})
	g.AddEdge(model.Edge{ID: "e2", Source: "api", Target: "idea"})
	g.AddEdge(model.Edge{ID: "e3", Source: "api", Target: "gone"})

	cg := BuildComponentGraph(*g)
	if got := len(cg.Nodes()); got != 2 {
		t.Fatalf("expected 2 nodes, got %d", got)
	}
	if _, ok := cg.GetNode("idea"); ok {
		t.Error("mind-map node should not be indexed")
	}
	if got := cg.Edges(); len(got) != 1 || got[0] != [2]string{"web", "api"} {
		t.Errorf("Edges = %v", got)
	}
}

func TestBuildHierarchyGraph(t *testing.T) {
	g := model.NewGraph(time.Time{})
	root := node("root", model.CategoryMindMap)
	child := node("child", model.CategoryMindMap)
	child.Meta.ParentID = "root"
	g.AddNode(root)
	g.AddNode(child)
	g.AddNode(node("api", model.CategoryBackend))

	hg := BuildHierarchyGraph(*g)
	if got := len(hg.Nodes()); got != 2 {
		t.Fatalf("expected 2 nodes, got %d", got)
	}
	if got := hg.Dependencies("root"); !slices.Equal(got, []string{"child"}) {
		t.Errorf("Dependencies(root) = %v", got)
	}
}
