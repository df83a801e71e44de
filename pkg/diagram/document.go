// Package diagram reads and writes the versioned JSON diagram file and converts
// it to and from the in-memory model.
package diagram

import (
	"time"

	"github.com/ritzau/blueprint/pkg/model"
)

// Document is the serialized diagram as stored on disk and exchanged with the editor.
type Document struct {
	Version   string    `json:"version" validate:"eq=1.0"`
	CreatedAt string    `json:"createdAt" validate:"required,isodatetime"`
	Nodes     []NodeDoc `json:"nodes" validate:"required,dive"`
	Edges     []EdgeDoc `json:"edges" validate:"required,dive"`
}

type NodeDoc struct {
	ID       string      `json:"id" validate:"required"`
	Type     string      `json:"type" validate:"required,category"`
	Position PositionDoc `json:"position"`
	Data     NodeDataDoc `json:"data"`
}

type PositionDoc struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type NodeDataDoc struct {
	Label string  `json:"label" validate:"required"`
	Type  string  `json:"type" validate:"required,category"`
	Meta  MetaDoc `json:"meta"`
}

type MetaDoc struct {
	Description string          `json:"description,omitempty"`
	TechStack   []string        `json:"techStack,omitempty"`
	ParentID    string          `json:"parentId,omitempty"`
	ChildIDs    []string        `json:"childIds,omitempty"`
	IsExpanded  bool            `json:"isExpanded,omitempty"`
	Suggestions []SuggestionDoc `json:"suggestions,omitempty" validate:"omitempty,dive"`
	Comments    []string        `json:"comments,omitempty"`
	Level       *int            `json:"level,omitempty" validate:"omitempty,min=0,max=10"`
}

type SuggestionDoc struct {
	ID        string              `json:"id" validate:"required"`
	Type      string              `json:"type" validate:"required,oneof=new_node edit_node edit_label edit_description add_children"`
	Status    string              `json:"status" validate:"required,oneof=pending accepted rejected edited"`
	Content   string              `json:"content"`
	NodeID    string              `json:"nodeId,omitempty"`
	Metadata  *SuggestionMetadata `json:"metadata,omitempty"`
	Timestamp string              `json:"timestamp" validate:"omitempty,isodatetime"`
}

type SuggestionMetadata struct {
	Label       string             `json:"label,omitempty"`
	Description string             `json:"description,omitempty"`
	Position    *PositionDoc       `json:"position,omitempty"`
	Children    []ChildProposalDoc `json:"children,omitempty"`
}

type ChildProposalDoc struct {
	Label       string `json:"label" validate:"required"`
	Description string `json:"description,omitempty"`
}

type EdgeDoc struct {
	ID           string       `json:"id" validate:"required"`
	Source       string       `json:"source" validate:"required"`
	Target       string       `json:"target" validate:"required"`
	SourceHandle *string      `json:"sourceHandle"`
	TargetHandle *string      `json:"targetHandle"`
	Data         *EdgeDataDoc `json:"data,omitempty"`
}

type EdgeDataDoc struct {
	Label string `json:"label,omitempty"`
}

// timestampLayout matches JavaScript's Date.prototype.toISOString.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// FromGraph converts the model into its serialized form.
func FromGraph(g model.Graph) Document {
	doc := Document{
		Version:   model.FormatVersion,
		CreatedAt: formatTime(g.CreatedAt),
		Nodes:     make([]NodeDoc, 0, len(g.Nodes)),
		Edges:     make([]EdgeDoc, 0, len(g.Edges)),
	}
	for _, n := range g.Nodes {
		doc.Nodes = append(doc.Nodes, NodeDocument(n))
	}
	for _, e := range g.Edges {
		ed := EdgeDoc{ID: e.ID, Source: e.Source, Target: e.Target}
		if e.SourceHandle != "" {
			h := e.SourceHandle
			ed.SourceHandle = &h
		}
		if e.TargetHandle != "" {
			h := e.TargetHandle
			ed.TargetHandle = &h
		}
		if e.Label != "" {
			ed.Data = &EdgeDataDoc{Label: e.Label}
		}
		doc.Edges = append(doc.Edges, ed)
	}
	return doc
}

// NodeDocument converts one node to its serialized form.
func NodeDocument(n model.Node) NodeDoc {
	meta := MetaDoc{
		Description: n.Meta.Description,
		TechStack:   n.Meta.TechStack,
		ParentID:    n.Meta.ParentID,
		ChildIDs:    n.Meta.ChildIDs,
		IsExpanded:  n.Meta.IsExpanded,
		Comments:    n.Meta.Comments,
	}
	if n.Category == model.CategoryMindMap {
		level := n.Meta.Level
		meta.Level = &level
	}
	for _, s := range n.Meta.Suggestions {
		meta.Suggestions = append(meta.Suggestions, SuggestionDocument(s))
	}
	return NodeDoc{
		ID:       n.ID,
		Type:     string(n.Category),
		Position: PositionDoc{X: n.Position.X, Y: n.Position.Y},
		Data: NodeDataDoc{
			Label: n.Label,
			Type:  string(n.Category),
			Meta:  meta,
		},
	}
}

// SuggestionDocument converts one suggestion to its serialized form.
func SuggestionDocument(s model.Suggestion) SuggestionDoc {
	doc := SuggestionDoc{
		ID:        s.ID,
		Type:      string(s.Kind),
		Status:    string(s.Status),
		Content:   s.Content,
		NodeID:    s.NodeID,
		Timestamp: formatTime(s.CreatedAt),
	}
	if s.Label != "" || s.Description != "" || len(s.Children) > 0 {
		md := &SuggestionMetadata{Label: s.Label, Description: s.Description}
		for _, c := range s.Children {
			md.Children = append(md.Children, ChildProposalDoc{Label: c.Label, Description: c.Description})
		}
		doc.Metadata = md
	}
	return doc
}

func (s SuggestionDoc) toModel() model.Suggestion {
	out := model.Suggestion{
		ID:      s.ID,
		Kind:    model.SuggestionKind(s.Type),
		Status:  model.SuggestionStatus(s.Status),
		Content: s.Content,
		NodeID:  s.NodeID,
	}
	if ts, err := parseTime(s.Timestamp); err == nil {
		out.CreatedAt = ts
	}
	if s.Metadata != nil {
		out.Label = s.Metadata.Label
		out.Description = s.Metadata.Description
		for _, c := range s.Metadata.Children {
			out.Children = append(out.Children, model.ChildProposal{Label: c.Label, Description: c.Description})
		}
	}
	return out
}
