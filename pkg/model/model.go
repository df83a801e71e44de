package model

import (
	"errors"
	"fmt"
	"time"
)

// Category is the closed classification of a node. It drives every policy lookup.
type Category string

const (
	CategoryFrontend   Category = "frontend"
	CategoryBackend    Category = "backend"
	CategoryStorage    Category = "storage"
	CategoryAuth       Category = "auth"
	CategoryExternal   Category = "external"
	CategoryBackground Category = "background"
	CategoryMindMap    Category = "mindmap" // hierarchical brainstorming, never documented
)

// ArchitectureCategories lists the categories that take part in document generation,
// in their canonical checklist order.
var ArchitectureCategories = []Category{
	CategoryFrontend,
	CategoryBackend,
	CategoryStorage,
	CategoryAuth,
	CategoryExternal,
	CategoryBackground,
}

// ErrUnknownCategory is returned when a string does not name a known category.
var ErrUnknownCategory = errors.New("unknown node category")

// MaxMindMapDepth is the deepest abstraction level a mind-map node may reach.
const MaxMindMapDepth = 10

// Valid reports whether c is one of the closed set of categories.
func (c Category) Valid() bool {
	return c == CategoryMindMap || c.IsArchitecture()
}

// IsArchitecture reports whether c is documented by the generators.
func (c Category) IsArchitecture() bool {
	for _, a := range ArchitectureCategories {
		if a == c {
			return true
		}
	}
	return false
}

// ParseCategory converts a raw string into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// SuggestionKind identifies what an AI suggestion proposes.
type SuggestionKind string

const (
	SuggestionAddChildren     SuggestionKind = "add_children"
	SuggestionEditDescription SuggestionKind = "edit_description"
	SuggestionEditLabel       SuggestionKind = "edit_label"
	SuggestionNewNode         SuggestionKind = "new_node"
	SuggestionEditNode        SuggestionKind = "edit_node"
)

// SuggestionStatus tracks the review state of a suggestion.
type SuggestionStatus string

const (
	StatusPending  SuggestionStatus = "pending"
	StatusAccepted SuggestionStatus = "accepted"
	StatusRejected SuggestionStatus = "rejected"
	StatusEdited   SuggestionStatus = "edited"
)

// ChildProposal is one child node proposed by an add_children suggestion.
type ChildProposal struct {
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// Suggestion is a reviewable proposal attached to a mind-map node.
type Suggestion struct {
	ID          string           `json:"id"`
	Kind        SuggestionKind   `json:"type"`
	Status      SuggestionStatus `json:"status"`
	Content     string           `json:"content"`
	NodeID      string           `json:"nodeId,omitempty"`
	Label       string           `json:"label,omitempty"`
	Description string           `json:"description,omitempty"`
	Children    []ChildProposal  `json:"children,omitempty"`
	CreatedAt   time.Time        `json:"timestamp"`
}
