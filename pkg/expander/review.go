package expander

import (
	"context"
	"fmt"

	"github.com/ritzau/blueprint/pkg/model"
	"github.com/ritzau/blueprint/pkg/store"
)

// Placement of accepted children relative to their parent on the canvas.
const (
	childOffsetX = 300
	childSpacing = 120
)

func findSuggestion(n *model.Node, suggestionID string) (*model.Suggestion, error) {
	for i := range n.Meta.Suggestions {
		s := &n.Meta.Suggestions[i]
		if s.ID != suggestionID {
			continue
		}
		if s.Status == model.StatusAccepted || s.Status == model.StatusRejected {
			return nil, fmt.Errorf("suggestion %s is %s: %w", s.ID, s.Status, ErrSuggestionResolved)
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s on node %s", ErrSuggestionNotFound, suggestionID, n.ID)
}

func nodeAt(g *model.Graph, id string) (*model.Node, error) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", store.ErrNodeNotFound, id)
}

// Accept applies a pending or edited suggestion. add_children creates one
// mind-map child per proposal, linked by an edge from the parent, in a single
// store transaction. edit_description replaces the node description.
func Accept(ctx context.Context, s *store.Store, nodeID, suggestionID string) (model.Graph, error) {
	var added []string
	err := s.Update(ctx, store.Change{Kind: store.NodeUpdated, ID: nodeID}, func(g *model.Graph) error {
		parent, err := nodeAt(g, nodeID)
		if err != nil {
			return err
		}
		sug, err := findSuggestion(parent, suggestionID)
		if err != nil {
			return err
		}

		switch sug.Kind {
		case model.SuggestionAddChildren:
			level := parent.Meta.Level + 1
			if level > model.MaxMindMapDepth {
				return fmt.Errorf("node %s at level %d: %w", nodeID, parent.Meta.Level, ErrMaxDepth)
			}
			origin := parent.Position
			var childIDs []string
			var children []model.Node
			var edges []model.Edge
			for i, proposal := range sug.Children {
				child := model.Node{
					ID:       model.NewNodeID(),
					Category: model.CategoryMindMap,
					Label:    proposal.Label,
					Position: model.Position{X: origin.X + childOffsetX, Y: origin.Y + float64(i*childSpacing)},
					Meta: model.NodeMeta{
						Description: proposal.Description,
						ParentID:    nodeID,
						Level:       level,
					},
				}
				childIDs = append(childIDs, child.ID)
				children = append(children, child)
				edges = append(edges, model.Edge{ID: model.NewEdgeID(), Source: nodeID, Target: child.ID})
			}
			parent.Meta.ChildIDs = append(parent.Meta.ChildIDs, childIDs...)
			parent.Meta.IsExpanded = true
			sug.Status = model.StatusAccepted
			added = childIDs
			// parent points into g.Nodes; append only after the last write through it.
			g.Nodes = append(g.Nodes, children...)
			g.Edges = append(g.Edges, edges...)

		case model.SuggestionEditDescription:
			desc := sug.Description
			if sug.Status == model.StatusEdited || desc == "" {
				desc = sug.Content
			}
			parent.Meta.Description = desc
			sug.Status = model.StatusAccepted

		default:
			return fmt.Errorf("suggestion %s: cannot apply kind %q", sug.ID, sug.Kind)
		}
		return nil
	})
	if err != nil {
		return model.Graph{}, err
	}
	log.Info("accepted suggestion", "node", nodeID, "suggestion", suggestionID, "children", len(added))
	return s.Snapshot(), nil
}

// Reject marks a suggestion as rejected without changing anything else.
func Reject(ctx context.Context, s *store.Store, nodeID, suggestionID string) error {
	_, err := s.UpdateNode(ctx, nodeID, func(n *model.Node) error {
		sug, err := findSuggestion(n, suggestionID)
		if err != nil {
			return err
		}
		sug.Status = model.StatusRejected
		return nil
	})
	return err
}

// Edit replaces a suggestion's content and marks it edited. An edited
// edit_description suggestion applies the new content when accepted.
func Edit(ctx context.Context, s *store.Store, nodeID, suggestionID, content string) error {
	_, err := s.UpdateNode(ctx, nodeID, func(n *model.Node) error {
		sug, err := findSuggestion(n, suggestionID)
		if err != nil {
			return err
		}
		sug.Content = content
		sug.Status = model.StatusEdited
		return nil
	})
	return err
}
