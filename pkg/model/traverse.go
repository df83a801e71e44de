package model

import (
	"errors"
	"fmt"
)

// ErrNodeNotFound means an edge endpoint does not resolve to a node of the graph.
var ErrNodeNotFound = errors.New("node not found")

// Direction is the side of an edge a node sits on, seen from that node.
type Direction string

const (
	Outbound Direction = "outbound"
	Inbound  Direction = "inbound"
)

// NodeIndex looks nodes up by id.
type NodeIndex map[string]Node

// NewNodeIndex indexes nodes by id. Later duplicates win.
func NewNodeIndex(nodes []Node) NodeIndex {
	idx := make(NodeIndex, len(nodes))
	for _, n := range nodes {
		idx[n.ID] = n
	}
	return idx
}

// GroupByCategory partitions nodes by category, keeping input order within each group.
// Categories without nodes are absent from the result.
func GroupByCategory(nodes []Node) map[Category][]Node {
	groups := make(map[Category][]Node)
	for _, n := range nodes {
		groups[n.Category] = append(groups[n.Category], n)
	}
	return groups
}

// CategoriesInOrder returns the distinct categories of nodes in order of first appearance.
func CategoriesInOrder(nodes []Node) []Category {
	seen := make(map[Category]bool)
	var out []Category
	for _, n := range nodes {
		if !seen[n.Category] {
			seen[n.Category] = true
			out = append(out, n.Category)
		}
	}
	return out
}

// EdgesTouching returns the edges that have nodeID as source or target, in input order.
func EdgesTouching(nodeID string, edges []Edge) []Edge {
	var out []Edge
	for _, e := range edges {
		if e.Touches(nodeID) {
			out = append(out, e)
		}
	}
	return out
}

// Touches reports whether the edge starts or ends at nodeID.
func (e Edge) Touches(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}

// DirectionFrom reports whether the edge leaves or enters nodeID.
func (e Edge) DirectionFrom(nodeID string) Direction {
	if e.Source == nodeID {
		return Outbound
	}
	return Inbound
}

// ResolveOtherEndpoint returns the node at the opposite end of e from nodeID.
// A miss means the graph is inconsistent; callers skip the edge.
func ResolveOtherEndpoint(e Edge, nodeID string, idx NodeIndex) (Node, error) {
	otherID := e.Target
	if e.Source != nodeID {
		otherID = e.Source
	}
	n, ok := idx[otherID]
	if !ok {
		return Node{}, fmt.Errorf("edge %s: %w: %s", e.ID, ErrNodeNotFound, otherID)
	}
	return n, nil
}
