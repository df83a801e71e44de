package generate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ritzau/blueprint/pkg/model"
	"github.com/ritzau/blueprint/pkg/policy"
	"github.com/ritzau/blueprint/pkg/render"
)

// ErrNotDocumented is returned for mind-map nodes, which never get a spec.
var ErrNotDocumented = errors.New("mind-map nodes have no component spec")

// SpecVersion is the schema version stamped on every component spec.
const SpecVersion = "1.0"

// IntegrationPoint is one edge seen from the component's side.
type IntegrationPoint struct {
	Component string
	Direction model.Direction
	Purpose   string
	Request   string
	Response  string
}

// BaselineDep is a pinned dependency in the component's tech stack.
type BaselineDep struct {
	Name    string
	Version string
	Purpose string
}

type TechStack struct {
	Primary      string
	BaselineDeps []BaselineDep
	References   []string
}

type Validation struct {
	ExitCriteria      []string
	SmokeTests        []string
	IntegrationChecks []string
}

// ComponentSpec is the assembled spec of a single node before serialization.
type ComponentSpec struct {
	ID                   string
	Name                 string
	Category             model.Category
	Description          string
	Responsibilities     []string
	AntiResponsibilities []policy.AntiResponsibility
	IntegrationPoints    []IntegrationPoint
	TechStack            TechStack
	Validation           Validation
	Extra                ExtraFields
}

const (
	purposePlaceholder  = "# AI: Why this integration exists"
	requestPlaceholder  = "# AI: Request shape"
	responsePlaceholder = "# AI: Response shape"
)

// BuildComponentSpec assembles the spec of node. g supplies the edges and the
// nodes they connect to; edges whose other end is missing are skipped.
func BuildComponentSpec(node model.Node, g model.Graph) (ComponentSpec, error) {
	if node.Category == model.CategoryMindMap {
		return ComponentSpec{}, ErrNotDocumented
	}
	profile, err := policy.Lookup(node.Category)
	if err != nil {
		return ComponentSpec{}, err
	}
	extra, err := ExtraFieldsFor(node.Category)
	if err != nil {
		return ComponentSpec{}, err
	}

	spec := ComponentSpec{
		ID:                   node.ID,
		Name:                 node.Label,
		Category:             node.Category,
		Description:          node.Meta.Description,
		Responsibilities:     append(profile.Responsibilities, "# AI: Elaborate based on project context and integrations"),
		AntiResponsibilities: profile.AntiResponsibilities,
		Extra:                extra,
	}
	if spec.Description == "" {
		spec.Description = "# AI: Add 2-3 sentence description based on component name and type.\n" +
			fmt.Sprintf("This is a %s component responsible for %s.", profile.Label, strings.ToLower(profile.Description))
	}

	idx := model.NewNodeIndex(g.Nodes)
	for _, e := range model.EdgesTouching(node.ID, g.Edges) {
		other, err := model.ResolveOtherEndpoint(e, node.ID, idx)
		if err != nil {
			log.Debug("skipping integration point", "node", node.ID, "error", err)
			continue
		}
		purpose := e.Label
		if purpose == "" {
			purpose = purposePlaceholder
		}
		spec.IntegrationPoints = append(spec.IntegrationPoints, IntegrationPoint{
			Component: other.Label,
			Direction: e.DirectionFrom(node.ID),
			Purpose:   purpose,
			Request:   requestPlaceholder,
			Response:  responsePlaceholder,
		})
	}

	spec.TechStack = buildTechStack(node.Meta.TechStack, profile.DefaultTechStack)

	spec.Validation = Validation{
		ExitCriteria: []string{
			"# AI: Define based on tech_stack and responsibilities",
			"Status file updated with component completion",
		},
		SmokeTests: []string{"# AI: Define minimal verification steps"},
	}
	for _, ip := range spec.IntegrationPoints {
		spec.Validation.IntegrationChecks = append(spec.Validation.IntegrationChecks, "# AI: Verify contract with "+ip.Component)
	}
	if len(spec.Validation.IntegrationChecks) == 0 {
		spec.Validation.IntegrationChecks = []string{"# AI: Define based on integration_points"}
	}

	// A component without edges still gets one record to fill in.
	if len(spec.IntegrationPoints) == 0 {
		spec.IntegrationPoints = []IntegrationPoint{{
			Component: "# AI: Add connected components",
			Direction: model.Outbound,
			Purpose:   purposePlaceholder,
			Request:   requestPlaceholder,
			Response:  responsePlaceholder,
		}}
	}
	return spec, nil
}

// buildTechStack joins the declared technologies and seeds baseline deps and
// references from the known package table, falling back to placeholders.
func buildTechStack(techs []string, defaultStack string) TechStack {
	ts := TechStack{
		Primary: "# AI: Specify primary technologies (e.g., " + defaultStack + ")",
	}
	if len(techs) > 0 {
		ts.Primary = strings.Join(techs, ", ")
	}

	lang := policy.DetectLanguage(techs)
	seenDep := make(map[string]bool)
	seenRef := make(map[string]bool)
	for _, t := range techs {
		for _, p := range policy.PackagesFor(t, lang) {
			if !seenDep[p.Name] {
				seenDep[p.Name] = true
				ts.BaselineDeps = append(ts.BaselineDeps, BaselineDep{Name: p.Name, Version: p.Version, Purpose: p.Purpose})
			}
			if p.Docs != "" && !seenRef[p.Docs] {
				seenRef[p.Docs] = true
				ts.References = append(ts.References, p.Docs)
			}
		}
	}
	if len(ts.BaselineDeps) == 0 {
		ts.BaselineDeps = []BaselineDep{{
			Name:    "# AI: Package name",
			Version: "# AI: Semver constraint",
			Purpose: "# AI: Why needed",
		}}
	}
	if len(ts.References) == 0 {
		ts.References = []string{"# AI: Official docs URL"}
	}
	return ts
}

// Record flattens the spec into an ordered record. mode selects how the
// anti-responsibilities are rendered.
func (s ComponentSpec) Record(mode policy.RenderMode) render.Record {
	var anti any
	switch mode {
	case policy.RenderStructured:
		rules := make([]render.Record, len(s.AntiResponsibilities))
		for i, a := range s.AntiResponsibilities {
			r := render.Record{{Key: "pattern", Value: a.Pattern}, {Key: "reason", Value: a.Reason}}
			if a.Instead != "" {
				r = r.Set("instead", a.Instead)
			}
			rules[i] = r
		}
		anti = rules
	default:
		lines := make([]string, 0, len(s.AntiResponsibilities)+1)
		for _, a := range s.AntiResponsibilities {
			lines = append(lines, a.Legacy())
		}
		anti = append(lines, policy.AntiResponsibilityPlaceholder)
	}

	points := make([]render.Record, len(s.IntegrationPoints))
	for i, ip := range s.IntegrationPoints {
		points[i] = render.Record{
			{Key: "component", Value: ip.Component},
			{Key: "direction", Value: string(ip.Direction)},
			{Key: "purpose", Value: ip.Purpose},
			{Key: "contract", Value: render.Record{
				{Key: "request", Value: ip.Request},
				{Key: "response", Value: ip.Response},
			}},
		}
	}

	deps := make([]render.Record, len(s.TechStack.BaselineDeps))
	for i, d := range s.TechStack.BaselineDeps {
		deps[i] = render.Record{
			{Key: "name", Value: d.Name},
			{Key: "version", Value: d.Version},
			{Key: "purpose", Value: d.Purpose},
		}
	}

	r := render.Record{
		{Key: "spec_version", Value: SpecVersion},
		{Key: "component_id", Value: s.ID},
		{Key: "name", Value: s.Name},
		{Key: "type", Value: string(s.Category)},
		{Key: "description", Value: s.Description},
		{Key: "responsibilities", Value: s.Responsibilities},
		{Key: "anti_responsibilities", Value: anti},
		{Key: "integration_points", Value: points},
		{Key: "tech_stack", Value: render.Record{
			{Key: "primary", Value: s.TechStack.Primary},
			{Key: "baseline_deps", Value: deps},
			{Key: "references", Value: s.TechStack.References},
		}},
		{Key: "validation", Value: render.Record{
			{Key: "exit_criteria", Value: s.Validation.ExitCriteria},
			{Key: "smoke_tests", Value: s.Validation.SmokeTests},
			{Key: "integration_checks", Value: s.Validation.IntegrationChecks},
		}},
	}
	if s.Extra != nil {
		r = r.Merge(s.Extra.Record())
	}
	return r
}

// YAML renders the spec as a YAML document.
func (s ComponentSpec) YAML(mode policy.RenderMode) (string, error) {
	return render.YAML(s.Record(mode))
}

// Markdown renders the spec as a narrative document. Anti-responsibilities keep
// their structured form so the suggested alternative is not lost.
func (s ComponentSpec) Markdown() (string, error) {
	return render.Markdown(s.Name, s.Record(policy.RenderStructured))
}

// ComponentDocument assembles and renders the spec of node in the configured format.
func ComponentDocument(node model.Node, g model.Graph, opts Options) (string, error) {
	opts = opts.withDefaults()
	spec, err := BuildComponentSpec(node, g.ArchitectureView())
	if err != nil {
		return "", fmt.Errorf("component %s: %w", node.ID, err)
	}
	var out string
	if opts.Format == FormatMarkdown {
		out, err = spec.Markdown()
	} else {
		out, err = spec.YAML(opts.Anti)
	}
	if err != nil {
		return "", fmt.Errorf("component %s: %w", node.ID, err)
	}
	return out, nil
}
