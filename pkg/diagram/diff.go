package diagram

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ritzau/blueprint/pkg/model"
)

// GraphDiff represents the difference between two diagram states.
type GraphDiff struct {
	AddedNodes    []string `json:"addedNodes"`
	RemovedNodes  []string `json:"removedNodes"`
	ModifiedNodes []string `json:"modifiedNodes"` // content changed
	MovedNodes    []string `json:"movedNodes"`    // only the position changed
	AddedEdges    []string `json:"addedEdges"`
	RemovedEdges  []string `json:"removedEdges"` // source|target|label
}

// Empty reports whether the two states are identical.
func (d GraphDiff) Empty() bool {
	return len(d.AddedNodes) == 0 && len(d.RemovedNodes) == 0 &&
		len(d.ModifiedNodes) == 0 && len(d.MovedNodes) == 0 &&
		len(d.AddedEdges) == 0 && len(d.RemovedEdges) == 0
}

// Structural reports whether anything besides node positions changed.
func (d GraphDiff) Structural() bool {
	return len(d.AddedNodes) > 0 || len(d.RemovedNodes) > 0 ||
		len(d.ModifiedNodes) > 0 || len(d.AddedEdges) > 0 || len(d.RemovedEdges) > 0
}

// Diff compares two graphs by node ID and edge endpoints. Edge IDs are
// ignored since editors regenerate them freely. Results follow the order of
// the graph they were found in.
func Diff(old, updated model.Graph) GraphDiff {
	diff := GraphDiff{
		AddedNodes:    []string{},
		RemovedNodes:  []string{},
		ModifiedNodes: []string{},
		MovedNodes:    []string{},
		AddedEdges:    []string{},
		RemovedEdges:  []string{},
	}

	oldNodes := make(map[string]model.Node, len(old.Nodes))
	for _, n := range old.Nodes {
		oldNodes[n.ID] = n
	}
	newNodes := make(map[string]bool, len(updated.Nodes))
	for _, n := range updated.Nodes {
		newNodes[n.ID] = true
		prev, exists := oldNodes[n.ID]
		switch {
		case !exists:
			diff.AddedNodes = append(diff.AddedNodes, n.ID)
		case !nodesEqual(prev, n):
			diff.ModifiedNodes = append(diff.ModifiedNodes, n.ID)
		case prev.Position != n.Position:
			diff.MovedNodes = append(diff.MovedNodes, n.ID)
		}
	}
	for _, n := range old.Nodes {
		if !newNodes[n.ID] {
			diff.RemovedNodes = append(diff.RemovedNodes, n.ID)
		}
	}

	oldEdges := make(map[string]bool, len(old.Edges))
	for _, e := range old.Edges {
		oldEdges[edgeKey(e)] = true
	}
	newEdges := make(map[string]bool, len(updated.Edges))
	for _, e := range updated.Edges {
		key := edgeKey(e)
		if newEdges[key] {
			continue
		}
		newEdges[key] = true
		if !oldEdges[key] {
			diff.AddedEdges = append(diff.AddedEdges, e.ID)
		}
	}
	seen := make(map[string]bool, len(old.Edges))
	for _, e := range old.Edges {
		key := edgeKey(e)
		if !newEdges[key] && !seen[key] {
			diff.RemovedEdges = append(diff.RemovedEdges, key)
		}
		seen[key] = true
	}

	return diff
}

func edgeKey(e model.Edge) string {
	return fmt.Sprintf("%s|%s|%s", e.Source, e.Target, e.Label)
}

// nodesEqual compares everything except the position, which editors change
// on every drag. Metadata is compared in its wire form so that nil and empty
// lists are the same.
func nodesEqual(a, b model.Node) bool {
	if a.Category != b.Category || a.Label != b.Label {
		return false
	}
	am, errA := json.Marshal(a.Meta)
	bm, errB := json.Marshal(b.Meta)
	return errA == nil && errB == nil && bytes.Equal(am, bm)
}
