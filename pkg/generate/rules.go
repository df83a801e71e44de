package generate

import (
	"fmt"
	"strings"

	"github.com/ritzau/blueprint/pkg/classify"
	"github.com/ritzau/blueprint/pkg/model"
	"github.com/ritzau/blueprint/pkg/policy"
)

const sectionSeparator = "\n\n---\n\n"

// RulesDocument assembles PROJECT_RULES.md.
func RulesDocument(g model.Graph, opts Options) (string, error) {
	opts = opts.withDefaults()
	arch := g.ArchitectureView()

	overview, err := SystemOverview(opts.ProjectName, arch.Nodes)
	if err != nil {
		return "", fmt.Errorf("system overview: %w", err)
	}
	constraints, err := ArchitectureConstraints(arch.Nodes)
	if err != nil {
		return "", fmt.Errorf("architecture constraints: %w", err)
	}
	buildOrder, err := BuildOrder(arch.Nodes, opts.Numbering)
	if err != nil {
		return "", fmt.Errorf("build order: %w", err)
	}

	sections := []string{
		overview,
		policy.DevelopmentWorkflow,
		policy.DependencyPolicy,
		policy.DecisionGuidelines,
		ComponentRegistry(arch.Nodes, opts),
		constraints,
		CodeStandards(arch.Nodes),
		buildOrder,
		IntegrationRules(arch),
		policy.QualityGates,
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s - System Rules\n\n", opts.ProjectName)
	b.WriteString("> **Load this file FIRST** before any component specs.\n")
	fmt.Fprintf(&b, "> Component specs in `specs/*.%s` extend these rules.\n\n", opts.Format.Extension())
	b.WriteString(strings.Join(sections, sectionSeparator))
	b.WriteString("\n")
	return b.String(), nil
}

// bullets renders each item as a "- " line.
func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, s := range items {
		lines[i] = "- " + s
	}
	return strings.Join(lines, "\n")
}

// StackSummary concatenates the fixed stack phrases of the present categories.
func StackSummary(nodes []model.Node) string {
	groups := model.GroupByCategory(nodes)
	var parts []string
	for _, c := range []model.Category{model.CategoryFrontend, model.CategoryBackend} {
		if len(groups[c]) > 0 {
			parts = append(parts, policy.StackPhrases[c])
		}
	}
	if storage := groups[model.CategoryStorage]; len(storage) > 0 {
		labels := make([]string, len(storage))
		for i, n := range storage {
			labels[i] = n.Label
		}
		parts = append(parts, strings.Join(labels, ", "))
	}
	if len(parts) == 0 {
		return "# AI: Detect from component types"
	}
	return strings.Join(parts, " + ")
}

// SystemOverview renders the project identity and the IS / IS NOT boundaries.
func SystemOverview(projectName string, nodes []model.Node) (string, error) {
	boundaries, err := classify.ComputeBoundaries(nodes)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("## System Overview\n\n")
	fmt.Fprintf(&b, "**Project**: %s\n", projectName)
	fmt.Fprintf(&b, "**Type**: %s\n", classify.DetectProjectType(nodes))
	fmt.Fprintf(&b, "**Stack**: %s\n\n", StackSummary(nodes))
	b.WriteString("# AI: Add 2-3 sentence description based on components and their relationships.\n\n")
	b.WriteString("### Boundaries\n\n")
	b.WriteString("This system IS:\n")
	b.WriteString(bullets(boundaries.Is))
	b.WriteString("\n- # AI: Add more explicit inclusions based on component analysis\n\n")
	b.WriteString("This system IS NOT:\n")
	b.WriteString(bullets(boundaries.IsNot))
	b.WriteString("\n- # AI: Add more explicit exclusions to prevent scope creep")
	return b.String(), nil
}

// ComponentRegistry lists every component with its spec file.
func ComponentRegistry(nodes []model.Node, opts Options) string {
	opts = opts.withDefaults()
	if len(nodes) == 0 {
		return "## Component Registry\n\nNo components defined yet."
	}

	var b strings.Builder
	b.WriteString("## Component Registry\n\n")
	b.WriteString("| ID | Component | Type | Spec File | Status |\n")
	b.WriteString("|----|-----------|------|-----------|--------|")
	for _, n := range nodes {
		fmt.Fprintf(&b, "\n| %s | %s | %s | `%s` | active |", n.ID, n.Label, n.Category, opts.SpecPath(n.Label))
	}
	b.WriteString("\n\n### Loading Instructions\n\n")
	b.WriteString("Load component specs **only when working on that component**. Do not preload all specs.\n\n")
	fmt.Fprintf(&b, "Cross-reference format: `[component-id]` (e.g., [%s] references %s)", nodes[0].ID, nodes[0].Label)
	return b.String()
}

// AlwaysRules returns the universal ALWAYS rules followed by up to two security
// constraints of each present category, in order of first appearance, without
// duplicates.
func AlwaysRules(nodes []model.Node) ([]string, error) {
	seen := make(map[string]bool)
	var rules []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			rules = append(rules, s)
		}
	}
	for _, s := range policy.AlwaysRules {
		add(s)
	}
	for _, c := range model.CategoriesInOrder(nodes) {
		p, err := policy.Lookup(c)
		if err != nil {
			return nil, err
		}
		sec := p.Constraints.Security
		if len(sec) > policy.SecurityConstraintsPerCategory {
			sec = sec[:policy.SecurityConstraintsPerCategory]
		}
		for _, s := range sec {
			add(s)
		}
	}
	return rules, nil
}

// NeverRules returns the universal NEVER rules plus one per present category that
// carries an extra rule.
func NeverRules(nodes []model.Node) []string {
	groups := model.GroupByCategory(nodes)
	rules := append([]string(nil), policy.NeverRules...)
	for _, r := range policy.NeverRuleFor {
		if len(groups[r.Category]) > 0 {
			rules = append(rules, r.Statement)
		}
	}
	return rules
}

// ArchitectureConstraints renders the ALWAYS / NEVER / PREFER lists.
func ArchitectureConstraints(nodes []model.Node) (string, error) {
	always, err := AlwaysRules(nodes)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("## Architecture Constraints\n\n")
	b.WriteString("### ALWAYS (Required)\n\n")
	b.WriteString(bullets(always))
	b.WriteString("\n- # AI: Add project-specific constraints based on domain requirements\n\n")
	b.WriteString("### NEVER (Forbidden)\n\n")
	b.WriteString(bullets(NeverRules(nodes)))
	b.WriteString("\n- # AI: Add project-specific anti-patterns to avoid\n\n")
	b.WriteString("### PREFER (Encouraged)\n\n")
	b.WriteString(bullets(policy.PreferRules))
	b.WriteString("\n- # AI: Add project-specific best practices")
	return b.String(), nil
}

// CodeStandards renders naming, layout, pattern and dependency guidance. The
// TypeScript-specific lines appear when a frontend or backend is present.
func CodeStandards(nodes []model.Node) string {
	groups := model.GroupByCategory(nodes)
	hasFrontend := len(groups[model.CategoryFrontend]) > 0
	hasBackend := len(groups[model.CategoryBackend]) > 0
	typed := hasFrontend || hasBackend

	var naming strings.Builder
	naming.WriteString("### Naming Conventions\n\n")
	naming.WriteString("- Files: `kebab-case.ts` for utilities")
	if hasFrontend {
		naming.WriteString(", `PascalCase.tsx` for components")
	}
	naming.WriteString("\n- Functions: `camelCase` with verb prefix (e.g., `getUserData`, `validateInput`)")
	if typed {
		naming.WriteString("\n- Constants: `SCREAMING_SNAKE_CASE` for true constants")
		naming.WriteString("\n- Types: `PascalCase` with descriptive suffix (e.g., `UserDTO`, `CreateOrderInput`)")
	}
	naming.WriteString("\n- # AI: Add domain-specific naming patterns")

	var patterns strings.Builder
	patterns.WriteString("### Patterns\n\n# AI: Add stack-specific patterns. Examples:")
	if hasFrontend {
		patterns.WriteString("\n\n" + policy.FrontendPatterns)
	}
	if hasBackend {
		patterns.WriteString("\n\n" + policy.BackendPatterns)
	}

	var deps strings.Builder
	deps.WriteString("### Dependencies Policy\n\n")
	deps.WriteString("- Prefer: Established packages with active maintenance and good documentation\n")
	deps.WriteString("- Avoid: Packages with no updates in 12+ months or security vulnerabilities\n")
	deps.WriteString("- Before adding: Check bundle size impact")
	if typed {
		deps.WriteString(", verify TypeScript support")
	}
	deps.WriteString("\n- # AI: Add project-specific dependency guidelines")

	// The file organization block keeps its trailing newline, which leaves an
	// extra blank line before the patterns.
	return strings.Join([]string{
		"## Code Standards",
		naming.String(),
		policy.FileOrganization + "\n",
		patterns.String(),
		deps.String(),
	}, "\n\n")
}

// BuildOrder renders the planned phases as checklists.
func BuildOrder(nodes []model.Node, numbering classify.Numbering) (string, error) {
	phases, err := classify.BuildPhases(nodes, numbering)
	if err != nil {
		return "", err
	}

	sections := make([]string, 0, len(phases))
	for _, p := range phases {
		var items []string
		switch p.Kind {
		case classify.PhaseFoundation:
			items = []string{policy.FoundationItem}
		case classify.PhaseCategory:
			for _, n := range p.Nodes {
				items = append(items, fmt.Sprintf("- [ ] [%s] %s — %s", n.ID, n.Label, p.Rationale))
			}
		case classify.PhasePolish:
			for _, item := range policy.PolishItems {
				items = append(items, "- [ ] "+item)
			}
		}
		sections = append(sections, "### "+p.Label()+"\n"+strings.Join(items, "\n"))
	}

	return "## Build Order\n\nImplementation sequence based on dependency graph:\n\n" +
		strings.Join(sections, "\n\n"), nil
}

// IntegrationRow is one line of the communication pattern table.
type IntegrationRow struct {
	From, To string
	Pattern  string
	Notes    string
}

// IntegrationRows resolves every edge into a table row. Edges whose endpoints
// are not in the graph are skipped.
func IntegrationRows(g model.Graph) []IntegrationRow {
	idx := model.NewNodeIndex(g.Nodes)
	rows := make([]IntegrationRow, 0, len(g.Edges))
	for _, e := range g.Edges {
		src, okSrc := idx[e.Source]
		tgt, okTgt := idx[e.Target]
		if !okSrc || !okTgt {
			log.Debug("skipping integration row", "edge", e.ID, "source", e.Source, "target", e.Target)
			continue
		}
		notes := e.Label
		if notes == "" {
			notes = "# AI: Describe integration details"
		}
		rows = append(rows, IntegrationRow{
			From:    src.Label,
			To:      tgt.Label,
			Pattern: classify.InferCommunicationPattern(src.Category, tgt.Category),
			Notes:   notes,
		})
	}
	return rows
}

// IntegrationRules renders the communication table with the shared contract and
// forbidden integration guidance, or a placeholder when there are no edges.
func IntegrationRules(g model.Graph) string {
	if len(g.Edges) == 0 {
		return "## Integration Rules\n\nNo component integrations defined yet.\n\n" +
			"# AI: Define how components should communicate once edges are added."
	}

	rows := IntegrationRows(g)
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = fmt.Sprintf("| %s | %s | %s | %s |", r.From, r.To, r.Pattern, r.Notes)
	}

	var b strings.Builder
	b.WriteString("## Integration Rules\n\n")
	b.WriteString("### Communication Patterns\n\n")
	b.WriteString("| From | To | Pattern | Notes |\n")
	b.WriteString("|------|----|---------|-------|\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n# AI: Review and refine integration patterns based on actual requirements.")
	b.WriteString("\n\n" + policy.SharedContracts)
	b.WriteString("\n\n" + policy.ForbiddenIntegrations)
	return b.String()
}
