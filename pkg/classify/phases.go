package classify

import (
	"fmt"

	"github.com/ritzau/blueprint/pkg/model"
	"github.com/ritzau/blueprint/pkg/policy"
)

// Numbering selects how build phases are numbered.
type Numbering string

const (
	// NumberByTable keeps each category's fixed phase number, leaving gaps for
	// absent categories. Polish is numbered one past the count of emitted phases.
	NumberByTable Numbering = "table"
	// NumberContiguous renumbers the emitted phases 1..n.
	NumberContiguous Numbering = "contiguous"
)

// ParseNumbering accepts "table" or "contiguous"; empty selects table.
func ParseNumbering(s string) (Numbering, error) {
	switch Numbering(s) {
	case "", NumberByTable:
		return NumberByTable, nil
	case NumberContiguous:
		return NumberContiguous, nil
	}
	return "", fmt.Errorf("unknown phase numbering %q", s)
}

// PhaseKind distinguishes the bookend phases from category phases.
type PhaseKind int

const (
	PhaseFoundation PhaseKind = iota
	PhaseCategory
	PhasePolish
)

// PlannedPhase is one section of the build order.
type PlannedPhase struct {
	Kind      PhaseKind
	Number    int
	Name      string
	Rationale string
	Nodes     []model.Node
}

// Label renders the phase heading.
func (p PlannedPhase) Label() string {
	return fmt.Sprintf("Phase %d: %s", p.Number, p.Name)
}

// BuildPhases lays out the build order: Foundation, one phase per populated
// category in build order, then Polish.
func BuildPhases(nodes []model.Node, numbering Numbering) ([]PlannedPhase, error) {
	groups := model.GroupByCategory(nodes)

	phases := []PlannedPhase{{
		Kind:   PhaseFoundation,
		Number: policy.FoundationPhase.Number,
		Name:   policy.FoundationPhase.Name,
	}}

	for _, c := range policy.BuildOrder {
		members := groups[c]
		if len(members) == 0 {
			continue
		}
		phase, err := BuildOrderPhase(c)
		if err != nil {
			return nil, err
		}
		number := phase.Number
		if numbering == NumberContiguous {
			number = len(phases) + 1
		}
		phases = append(phases, PlannedPhase{
			Kind:      PhaseCategory,
			Number:    number,
			Name:      phase.Name,
			Rationale: phase.Rationale,
			Nodes:     members,
		})
	}

	phases = append(phases, PlannedPhase{
		Kind:   PhasePolish,
		Number: len(phases) + 1,
		Name:   "Polish",
	})
	return phases, nil
}
