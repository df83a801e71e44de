package cycles

import (
	"slices"

	gonumgraph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/ritzau/blueprint/pkg/graph"
	"github.com/ritzau/blueprint/pkg/logging"
	"github.com/ritzau/blueprint/pkg/model"
)

var log = logging.New("cycles")

// Cycle is a set of nodes that reach each other through edges.
type Cycle struct {
	IDs    []string `json:"ids"`
	Labels []string `json:"labels"`
}

// FindComponentCycles returns the dependency cycles of a component graph,
// ordered by their first node in insertion order.
func FindComponentCycles(cg *graph.ComponentGraph) []Cycle {
	sccs := NewTarjanSCC(cg.Graph()).FindSCCs()

	cycles := make([]Cycle, 0, len(sccs))
	for _, scc := range sccs {
		var c Cycle
		for _, gid := range scc {
			n, ok := cg.GetNodeByID(gid)
			if !ok {
				continue
			}
			c.IDs = append(c.IDs, n.ID)
			c.Labels = append(c.Labels, n.Label)
		}
		cycles = append(cycles, c)
	}
	slices.SortFunc(cycles, func(a, b Cycle) int {
		ga, _ := cg.GraphID(a.IDs[0])
		gb, _ := cg.GraphID(b.IDs[0])
		return int(ga - gb)
	})
	return cycles
}

// DependencyOrder returns component ids so that every node comes after the
// nodes it has edges to. It reports false when the graph has a cycle.
func DependencyOrder(cg *graph.ComponentGraph) ([]string, bool) {
	sorted, err := topo.SortStabilized(cg.Graph(), func(nodes []gonumgraph.Node) {
		slices.SortFunc(nodes, func(a, b gonumgraph.Node) int {
			return int(a.ID() - b.ID())
		})
	})
	if err != nil {
		return nil, false
	}

	order := make([]string, 0, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		if n, ok := cg.GetNodeByID(sorted[i].ID()); ok {
			order = append(order, n.ID)
		}
	}
	return order, true
}

// Diagnostics collects structural findings about a diagram. None of them
// prevent document generation.
type Diagnostics struct {
	Cycles          []Cycle  `json:"cycles"`
	Isolated        []string `json:"isolated"`
	HierarchyLoops  []Cycle  `json:"hierarchyLoops"`
	MissingParents  []string `json:"missingParents"`
	DependencyOrder []string `json:"dependencyOrder,omitempty"`
}

// Empty reports whether there is nothing to warn about.
func (d Diagnostics) Empty() bool {
	return len(d.Cycles) == 0 && len(d.Isolated) == 0 &&
		len(d.HierarchyLoops) == 0 && len(d.MissingParents) == 0
}

// Diagnose inspects the architecture and mind-map parts of g.
func Diagnose(g model.Graph) Diagnostics {
	var d Diagnostics

	components := graph.BuildComponentGraph(g)
	d.Cycles = FindComponentCycles(components)
	if len(components.Nodes()) > 1 {
		d.Isolated = components.Isolated()
	}
	if order, ok := DependencyOrder(components); ok {
		d.DependencyOrder = order
	}

	hierarchy := graph.BuildHierarchyGraph(g)
	d.HierarchyLoops = FindComponentCycles(hierarchy)
	for _, n := range hierarchy.Nodes() {
		if n.Meta.ParentID == "" {
			continue
		}
		if _, ok := hierarchy.GetNode(n.Meta.ParentID); !ok {
			d.MissingParents = append(d.MissingParents, n.ID)
		}
	}

	log.Debug("diagnosed diagram",
		"cycles", len(d.Cycles),
		"isolated", len(d.Isolated),
		"hierarchy_loops", len(d.HierarchyLoops))
	return d
}
