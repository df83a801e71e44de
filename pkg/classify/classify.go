// Package classify derives the project archetype, system boundaries, build phases
// and communication patterns from the categories present in a graph.
package classify

import (
	"fmt"

	"github.com/ritzau/blueprint/pkg/model"
	"github.com/ritzau/blueprint/pkg/policy"
)

// Project types, in decision order.
const (
	FullStackWebApp   = "Full-stack web application"
	FrontendWebApp    = "Frontend web application"
	BackendAPIService = "Backend API service"
	BackendService    = "Backend service"
	BackgroundService = "Background processing service"
	GenericApp        = "Application"
)

type presence map[model.Category]bool

func present(nodes []model.Node) presence {
	p := make(presence)
	for _, n := range nodes {
		p[n.Category] = true
	}
	return p
}

// DetectProjectType returns the first matching archetype label.
func DetectProjectType(nodes []model.Node) string {
	has := present(nodes)
	switch {
	case has[model.CategoryFrontend] && has[model.CategoryBackend]:
		return FullStackWebApp
	case has[model.CategoryFrontend]:
		return FrontendWebApp
	case has[model.CategoryBackend] && has[model.CategoryStorage]:
		return BackendAPIService
	case has[model.CategoryBackend]:
		return BackendService
	case has[model.CategoryBackground]:
		return BackgroundService
	default:
		return GenericApp
	}
}

// Boundaries lists what the system is and is not.
type Boundaries struct {
	Is    []string
	IsNot []string
}

// ComputeBoundaries emits one IS sentence per present category, in canonical category
// order, and the fixed IS NOT sentences for absent frontend, background and external.
func ComputeBoundaries(nodes []model.Node) (Boundaries, error) {
	has := present(nodes)
	var b Boundaries
	for _, c := range model.ArchitectureCategories {
		if !has[c] {
			continue
		}
		p, err := policy.Lookup(c)
		if err != nil {
			return Boundaries{}, err
		}
		b.Is = append(b.Is, p.IsStatement)
	}
	for _, a := range policy.AbsenceStatements {
		if !has[a.Category] {
			b.IsNot = append(b.IsNot, a.Statement)
		}
	}
	return b, nil
}

// InferCommunicationPattern labels the interaction of a source category calling a
// target category. Unknown pairs get a placeholder, never an error.
func InferCommunicationPattern(source, target model.Category) string {
	if p, ok := policy.CommunicationPattern(source, target); ok {
		return p
	}
	return policy.PatternPlaceholder
}

// BuildOrderPhase returns the fixed build phase of a category.
func BuildOrderPhase(c model.Category) (policy.Phase, error) {
	p, err := policy.Lookup(c)
	if err != nil {
		return policy.Phase{}, fmt.Errorf("build order: %w", err)
	}
	return p.Phase, nil
}
