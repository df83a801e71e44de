package policy

import "github.com/ritzau/blueprint/pkg/model"

// FallbackStandard applies to technologies without a known standard.
const FallbackStandard = "General best practices"

var stackStandards = map[string]string{
	"Python":     "PEP 8, type hints, docstrings",
	"FastAPI":    "PEP 8, type hints, docstrings",
	"Django":     "PEP 8, type hints, docstrings",
	"TypeScript": "ESLint, strict mode, explicit types",
	"Node.js":    "ESLint, strict mode, explicit types",
	"Express":    "ESLint, strict mode, explicit types",
	"React":      "ESLint, strict mode, explicit types",
	"Next.js":    "ESLint, strict mode, explicit types",
	"Go":         "gofmt, effective go",
	"Golang":     "gofmt, effective go",
	"Rust":       "rustfmt, clippy",
	"Java":       "Google Java Style",
	"Spring":     "Google Java Style",
}

// StandardFor maps a technology name to its code-standards phrase. Matching is exact.
func StandardFor(tech string) string {
	if s, ok := stackStandards[tech]; ok {
		return s
	}
	return FallbackStandard
}

// PatternPlaceholder is used for caller/callee pairs without a known pattern.
const PatternPlaceholder = "# AI: Define pattern"

type categoryPair struct {
	source, target model.Category
}

var communicationPatterns = map[categoryPair]string{
	{model.CategoryFrontend, model.CategoryBackend}:   "HTTP REST/GraphQL",
	{model.CategoryBackend, model.CategoryStorage}:    "ORM/Query builder",
	{model.CategoryBackend, model.CategoryAuth}:       "Middleware/SDK",
	{model.CategoryBackend, model.CategoryExternal}:   "HTTP/SDK",
	{model.CategoryBackend, model.CategoryBackground}: "Job queue",
	{model.CategoryBackground, model.CategoryStorage}: "Direct DB access",
}

// CommunicationPattern looks up the pattern for a directed category pair.
func CommunicationPattern(source, target model.Category) (string, bool) {
	p, ok := communicationPatterns[categoryPair{source, target}]
	return p, ok
}
