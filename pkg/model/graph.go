package model

import (
	"slices"
	"time"
)

// FormatVersion is the only diagram format version understood by this package.
const FormatVersion = "1.0"

// Graph is the complete diagram: an ordered list of nodes plus an ordered list of edges.
// Generators treat it as read-only.
type Graph struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	Nodes     []Node    `json:"nodes"`
	Edges     []Edge    `json:"edges"`
}

// NewGraph creates a new empty graph stamped with the given creation time.
func NewGraph(createdAt time.Time) *Graph {
	return &Graph{
		Version:   FormatVersion,
		CreatedAt: createdAt,
		Nodes:     make([]Node, 0),
		Edges:     make([]Edge, 0),
	}
}

// Position is the canvas location of a node. Only the editor cares about it.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeMeta is the free-form metadata bag of a node. The mind-map fields are only
// meaningful for CategoryMindMap nodes.
type NodeMeta struct {
	Description string       `json:"description,omitempty"`
	TechStack   []string     `json:"techStack,omitempty"`
	ParentID    string       `json:"parentId,omitempty"`
	ChildIDs    []string     `json:"childIds,omitempty"`
	Level       int          `json:"level,omitempty"`
	IsExpanded  bool         `json:"isExpanded,omitempty"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
	Comments    []string     `json:"comments,omitempty"`
}

// Node is a typed component of the architecture diagram.
type Node struct {
	ID       string   `json:"id"`
	Category Category `json:"type"`
	Label    string   `json:"label"`
	Position Position `json:"position"`
	Meta     NodeMeta `json:"meta"`
}

// Edge is a directed relationship from Source to Target.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	Label        string `json:"label,omitempty"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// AddNode appends a node to the graph. If a node with the same ID exists, it is replaced in place.
func (g *Graph) AddNode(node Node) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == node.ID {
			g.Nodes[i] = node
			return
		}
	}
	g.Nodes = append(g.Nodes, node)
}

// AddEdge appends an edge to the graph. Parallel edges are allowed.
func (g *Graph) AddEdge(edge Edge) {
	g.Edges = append(g.Edges, edge)
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Clone returns a deep copy so callers can hand out snapshots without sharing slices.
func (g *Graph) Clone() Graph {
	out := Graph{
		Version:   g.Version,
		CreatedAt: g.CreatedAt,
		Nodes:     make([]Node, len(g.Nodes)),
		Edges:     slices.Clone(g.Edges),
	}
	if out.Edges == nil {
		out.Edges = make([]Edge, 0)
	}
	for i, n := range g.Nodes {
		out.Nodes[i] = n.Clone()
	}
	return out
}

// Clone returns a deep copy of the node, including its metadata slices.
func (n Node) Clone() Node {
	n.Meta.TechStack = slices.Clone(n.Meta.TechStack)
	n.Meta.ChildIDs = slices.Clone(n.Meta.ChildIDs)
	n.Meta.Comments = slices.Clone(n.Meta.Comments)
	if n.Meta.Suggestions != nil {
		suggestions := make([]Suggestion, len(n.Meta.Suggestions))
		for i, s := range n.Meta.Suggestions {
			s.Children = slices.Clone(s.Children)
			suggestions[i] = s
		}
		n.Meta.Suggestions = suggestions
	}
	return n
}

// ArchitectureView returns a copy of the graph without mind-map nodes and without
// any edge that touches one. This is the input the document generators work on.
func (g *Graph) ArchitectureView() Graph {
	out := Graph{
		Version:   g.Version,
		CreatedAt: g.CreatedAt,
		Nodes:     make([]Node, 0, len(g.Nodes)),
		Edges:     make([]Edge, 0, len(g.Edges)),
	}
	skipped := make(map[string]bool)
	for _, n := range g.Nodes {
		if n.Category == CategoryMindMap {
			skipped[n.ID] = true
			continue
		}
		out.Nodes = append(out.Nodes, n.Clone())
	}
	for _, e := range g.Edges {
		if skipped[e.Source] || skipped[e.Target] {
			continue
		}
		out.Edges = append(out.Edges, e)
	}
	return out
}
