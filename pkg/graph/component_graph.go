// Package graph indexes a diagram as a gonum directed graph so structural
// questions (cycles, isolated components, hierarchy) can be answered.
package graph

import (
	"fmt"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/ritzau/blueprint/pkg/model"
)

// ComponentGraph is a directed graph over diagram node ids. Parallel diagram
// edges collapse into one graph edge.
type ComponentGraph struct {
	graph  *simple.DirectedGraph
	ids    map[string]int64 // node id -> graph id
	nodes  []model.Node     // indexed by graph id
	labels map[[2]string][]string
}

// NewComponentGraph creates an empty graph
func NewComponentGraph() *ComponentGraph {
	return &ComponentGraph{
		graph:  simple.NewDirectedGraph(),
		ids:    make(map[string]int64),
		labels: make(map[[2]string][]string),
	}
}

// AddComponent adds a node. Adding the same id twice keeps the first.
func (cg *ComponentGraph) AddComponent(n model.Node) {
	if _, exists := cg.ids[n.ID]; exists {
		return
	}
	id := int64(len(cg.nodes))
	cg.ids[n.ID] = id
	cg.nodes = append(cg.nodes, n)
	cg.graph.AddNode(simple.Node(id))
}

// AddDependency adds an edge from source to target. Both must already exist;
// self loops are ignored.
func (cg *ComponentGraph) AddDependency(source, target, label string) error {
	sourceID, ok := cg.ids[source]
	if !ok {
		return fmt.Errorf("source %s: %w", source, model.ErrNodeNotFound)
	}
	targetID, ok := cg.ids[target]
	if !ok {
		return fmt.Errorf("target %s: %w", target, model.ErrNodeNotFound)
	}
	if sourceID == targetID {
		return nil
	}
	if !cg.graph.HasEdgeFromTo(sourceID, targetID) {
		cg.graph.SetEdge(cg.graph.NewEdge(cg.graph.Node(sourceID), cg.graph.Node(targetID)))
	}
	if label != "" {
		key := [2]string{source, target}
		cg.labels[key] = append(cg.labels[key], label)
	}
	return nil
}

// GetNode returns a node by diagram id
func (cg *ComponentGraph) GetNode(id string) (model.Node, bool) {
	gid, ok := cg.ids[id]
	if !ok {
		return model.Node{}, false
	}
	return cg.nodes[gid], true
}

// GetNodeByID returns a node by its graph id
func (cg *ComponentGraph) GetNodeByID(id int64) (model.Node, bool) {
	if id < 0 || id >= int64(len(cg.nodes)) {
		return model.Node{}, false
	}
	return cg.nodes[id], true
}

// GraphID returns the gonum id of a diagram node.
func (cg *ComponentGraph) GraphID(id string) (int64, bool) {
	gid, ok := cg.ids[id]
	return gid, ok
}

// Graph returns the underlying directed graph
func (cg *ComponentGraph) Graph() *simple.DirectedGraph {
	return cg.graph
}

// Nodes returns all nodes in insertion order
func (cg *ComponentGraph) Nodes() []model.Node {
	return append([]model.Node(nil), cg.nodes...)
}

// Edges returns every distinct [source, target] pair in node insertion order.
func (cg *ComponentGraph) Edges() [][2]string {
	var edges [][2]string
	for _, n := range cg.nodes {
		for _, dep := range cg.Dependencies(n.ID) {
			edges = append(edges, [2]string{n.ID, dep})
		}
	}
	return edges
}

// EdgeLabels returns the labels of all diagram edges from source to target.
func (cg *ComponentGraph) EdgeLabels(source, target string) []string {
	return cg.labels[[2]string{source, target}]
}

// Dependencies returns the ids the given node has edges to, in insertion order.
func (cg *ComponentGraph) Dependencies(id string) []string {
	gid, ok := cg.ids[id]
	if !ok {
		return nil
	}
	var out []string
	for i, n := range cg.nodes {
		if cg.graph.HasEdgeFromTo(gid, int64(i)) {
			out = append(out, n.ID)
		}
	}
	return out
}

// Dependents returns the ids that have edges to the given node, in insertion order.
func (cg *ComponentGraph) Dependents(id string) []string {
	gid, ok := cg.ids[id]
	if !ok {
		return nil
	}
	var out []string
	for i, n := range cg.nodes {
		if cg.graph.HasEdgeFromTo(int64(i), gid) {
			out = append(out, n.ID)
		}
	}
	return out
}

// Isolated returns the ids of nodes without any edge.
func (cg *ComponentGraph) Isolated() []string {
	var out []string
	for i, n := range cg.nodes {
		if cg.graph.From(int64(i)).Len() == 0 && cg.graph.To(int64(i)).Len() == 0 {
			out = append(out, n.ID)
		}
	}
	return out
}

// BuildComponentGraph indexes the architecture part of g. Mind-map nodes and
// edges with a missing endpoint are left out.
func BuildComponentGraph(g model.Graph) *ComponentGraph {
	arch := g.ArchitectureView()
	cg := NewComponentGraph()
	for _, n := range arch.Nodes {
		cg.AddComponent(n)
	}
	for _, e := range arch.Edges {
		_ = cg.AddDependency(e.Source, e.Target, e.Label)
	}
	return cg
}

// BuildHierarchyGraph indexes the mind-map nodes of g with an edge from each
// parent to its child, following meta.parentId.
func BuildHierarchyGraph(g model.Graph) *ComponentGraph {
	cg := NewComponentGraph()
	for _, n := range g.Nodes {
		if n.Category == model.CategoryMindMap {
			cg.AddComponent(n)
		}
	}
	for _, n := range g.Nodes {
		if n.Category == model.CategoryMindMap && n.Meta.ParentID != "" {
			_ = cg.AddDependency(n.Meta.ParentID, n.ID, "")
		}
	}
	return cg
}
