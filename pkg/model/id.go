package model

import (
	"strings"

	"github.com/google/uuid"
)

const idLength = 10

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:idLength]
}

// NewNodeID returns a fresh node id of the form "node_xxxxxxxxxx".
func NewNodeID() string { return "node_" + shortID() }

// NewEdgeID returns a fresh edge id of the form "edge_xxxxxxxxxx".
func NewEdgeID() string { return "edge_" + shortID() }

// NewSuggestionID returns a fresh suggestion id.
func NewSuggestionID() string { return "suggestion_" + shortID() }
