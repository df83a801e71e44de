package generate

import (
	"slices"
	"strings"

	"github.com/ritzau/blueprint/pkg/model"
	"github.com/ritzau/blueprint/pkg/policy"
)

// ProtocolDocument assembles AGENT_PROTOCOL.md.
func ProtocolDocument(g model.Graph) string {
	arch := g.ArchitectureView()
	return policy.ProtocolPreamble + sectionSeparator + ProtocolCodeStandards(arch.Nodes) + "\n"
}

// Technologies returns the distinct technology names across all nodes, trimmed
// and sorted. Names differing only in case stay distinct.
func Technologies(nodes []model.Node) []string {
	seen := make(map[string]bool)
	var techs []string
	for _, n := range nodes {
		for _, t := range n.Meta.TechStack {
			t = strings.TrimSpace(t)
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			techs = append(techs, t)
		}
	}
	slices.Sort(techs)
	return techs
}

// ProtocolCodeStandards renders the per-technology standards table followed by the
// general principles. Without technologies only the principles are emitted.
func ProtocolCodeStandards(nodes []model.Node) string {
	techs := Technologies(nodes)
	if len(techs) == 0 {
		return "## Code Standards\n\n" + policy.GeneralPrinciples
	}

	var b strings.Builder
	b.WriteString("## Code Standards\n\n")
	b.WriteString("Apply dynamically based on `tech_stack.primary`:\n\n")
	b.WriteString("| Stack | Standards |\n")
	b.WriteString("|-------|-----------|\n")
	emitted := make(map[string]bool)
	for _, t := range techs {
		row := "| " + t + " | " + policy.StandardFor(t) + " |"
		if emitted[row] {
			continue
		}
		emitted[row] = true
		b.WriteString(row + "\n")
	}
	b.WriteString("\n")
	b.WriteString(policy.GeneralPrinciples)
	return b.String()
}
