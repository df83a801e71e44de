package policy

import (
	"embed"
	"strings"

	"github.com/ritzau/blueprint/pkg/model"
)

//go:embed sections/*.md
var sectionFiles embed.FS

// Fixed document sections. They carry no graph-derived content.
var (
	DevelopmentWorkflow   = mustSection("development_workflow")
	DependencyPolicy      = mustSection("dependency_policy")
	DecisionGuidelines    = mustSection("decision_guidelines")
	QualityGates          = mustSection("quality_gates")
	FileOrganization      = mustSection("file_organization")
	FrontendPatterns      = mustSection("frontend_patterns")
	BackendPatterns       = mustSection("backend_patterns")
	SharedContracts       = mustSection("shared_contracts")
	ForbiddenIntegrations = mustSection("forbidden_integrations")
	ProtocolPreamble      = mustSection("protocol")
	GeneralPrinciples     = mustSection("general_principles")
)

// mustSection loads an embedded section without its final newline. The files are
// compiled in, so a missing one is a build defect.
func mustSection(name string) string {
	data, err := sectionFiles.ReadFile("sections/" + name + ".md")
	if err != nil {
		panic("policy: missing section " + name + ": " + err.Error())
	}
	return strings.TrimSuffix(string(data), "\n")
}

// Universal architecture constraints.
var (
	AlwaysRules = []string{
		"Validate all inputs at system boundaries (API endpoints, form submissions)",
		"Use environment variables for all configuration (never hardcode secrets)",
		"Log structured data for all errors (timestamp, level, message, context)",
	}
	NeverRules = []string{
		"Store secrets in code or version control",
		"Trust client-side validation alone (always re-validate server-side)",
		"Expose internal error details to clients (log internally, return safe messages)",
	}
	PreferRules = []string{
		"Composition over inheritance — easier to test and modify",
		"Named exports over default exports — better refactoring support",
		"Early returns over nested conditionals — clearer control flow",
		"Explicit dependencies over global imports — aids testing",
	}
)

// NeverRuleFor adds one forbidden pattern when its category is present.
var NeverRuleFor = []CategoryStatement{
	{model.CategoryBackend, "Use 'any' type in TypeScript (use 'unknown' + type guards)"},
	{model.CategoryStorage, "Make direct database connections from frontend"},
}

// SecurityConstraintsPerCategory caps how many security constraints each present
// category contributes to the ALWAYS list.
const SecurityConstraintsPerCategory = 2
