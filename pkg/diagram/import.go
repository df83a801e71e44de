package diagram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ritzau/blueprint/pkg/logging"
	"github.com/ritzau/blueprint/pkg/model"
)

var log = logging.New("diagram")

// Report lists what Import repaired or found suspicious without rejecting the file.
type Report struct {
	DroppedEdges []model.Edge
	Warnings     []string
}

// Clean reports whether the import needed no repairs.
func (r Report) Clean() bool {
	return len(r.DroppedEdges) == 0 && len(r.Warnings) == 0
}

func (r *Report) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Debug("import warning", "warning", msg)
	r.Warnings = append(r.Warnings, msg)
}

// Import decodes and validates a diagram. Structural violations (bad version,
// unknown types, empty labels, duplicate ids, mind-map depth) are returned as
// ErrInvalidDiagram. Edges pointing at missing nodes are dropped and reported.
func Import(r io.Reader) (*model.Graph, Report, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, Report{}, fmt.Errorf("%w: %v", ErrInvalidDiagram, err)
	}
	return FromDocument(doc)
}

// ImportFile reads a diagram from path.
func ImportFile(path string) (*model.Graph, Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Report{}, fmt.Errorf("opening diagram: %w", err)
	}
	defer f.Close()

	g, report, err := Import(f)
	if err != nil {
		return nil, report, fmt.Errorf("%s: %w", path, err)
	}
	return g, report, nil
}

// FromDocument validates doc and converts it to the model.
func FromDocument(doc Document) (*model.Graph, Report, error) {
	var report Report
	if err := ValidateDocument(doc); err != nil {
		return nil, report, err
	}

	createdAt, err := parseTime(doc.CreatedAt)
	if err != nil {
		return nil, report, fmt.Errorf("%w: createdAt: %v", ErrInvalidDiagram, err)
	}
	g := model.NewGraph(createdAt)

	seen := make(map[string]bool, len(doc.Nodes))
	for i, nd := range doc.Nodes {
		if seen[nd.ID] {
			return nil, report, fmt.Errorf("%w: nodes[%d]: duplicate id %q", ErrInvalidDiagram, i, nd.ID)
		}
		seen[nd.ID] = true

		if nd.Type != nd.Data.Type {
			report.warnf("node %s: type %q differs from data.type %q; using data.type", nd.ID, nd.Type, nd.Data.Type)
		}
		n := model.Node{
			ID:       nd.ID,
			Category: model.Category(nd.Data.Type),
			Label:    nd.Data.Label,
			Position: model.Position{X: nd.Position.X, Y: nd.Position.Y},
			Meta: model.NodeMeta{
				Description: nd.Data.Meta.Description,
				TechStack:   nd.Data.Meta.TechStack,
				ParentID:    nd.Data.Meta.ParentID,
				ChildIDs:    nd.Data.Meta.ChildIDs,
				IsExpanded:  nd.Data.Meta.IsExpanded,
				Comments:    nd.Data.Meta.Comments,
			},
		}
		if nd.Data.Meta.Level != nil {
			n.Meta.Level = *nd.Data.Meta.Level
		}
		for _, s := range nd.Data.Meta.Suggestions {
			n.Meta.Suggestions = append(n.Meta.Suggestions, s.toModel())
		}
		g.Nodes = append(g.Nodes, n)
	}

	if err := checkHierarchy(g, &report); err != nil {
		return nil, report, err
	}

	edgeIDs := make(map[string]bool, len(doc.Edges))
	for i, ed := range doc.Edges {
		if edgeIDs[ed.ID] {
			return nil, report, fmt.Errorf("%w: edges[%d]: duplicate id %q", ErrInvalidDiagram, i, ed.ID)
		}
		edgeIDs[ed.ID] = true

		e := model.Edge{ID: ed.ID, Source: ed.Source, Target: ed.Target}
		if ed.SourceHandle != nil {
			e.SourceHandle = *ed.SourceHandle
		}
		if ed.TargetHandle != nil {
			e.TargetHandle = *ed.TargetHandle
		}
		if ed.Data != nil {
			e.Label = ed.Data.Label
		}
		if !seen[e.Source] || !seen[e.Target] {
			log.Debug("dropping dangling edge", "edge", e.ID, "source", e.Source, "target", e.Target)
			report.DroppedEdges = append(report.DroppedEdges, e)
			continue
		}
		g.Edges = append(g.Edges, e)
	}
	return g, report, nil
}

// checkHierarchy enforces the mind-map depth limit and reports parent links that
// do not resolve to a mind-map node.
func checkHierarchy(g *model.Graph, report *Report) error {
	idx := model.NewNodeIndex(g.Nodes)
	for _, n := range g.Nodes {
		if n.Category != model.CategoryMindMap {
			continue
		}
		if n.Meta.Level > model.MaxMindMapDepth {
			return fmt.Errorf("%w: node %s: level %d exceeds maximum depth %d",
				ErrInvalidDiagram, n.ID, n.Meta.Level, model.MaxMindMapDepth)
		}
		if n.Meta.ParentID == "" {
			continue
		}
		parent, ok := idx[n.Meta.ParentID]
		switch {
		case !ok:
			report.warnf("node %s: parent %s not found", n.ID, n.Meta.ParentID)
		case parent.Category != model.CategoryMindMap:
			report.warnf("node %s: parent %s is not a mind-map node", n.ID, parent.ID)
		case n.Meta.Level != parent.Meta.Level+1:
			report.warnf("node %s: level %d does not follow parent level %d", n.ID, n.Meta.Level, parent.Meta.Level)
		}
	}
	return nil
}

// Export serializes g with two-space indentation.
func Export(g model.Graph) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(FromGraph(g)); err != nil {
		return nil, fmt.Errorf("encoding diagram: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportFile writes g to path, replacing the file atomically.
func ExportFile(path string, g model.Graph) error {
	data, err := Export(g)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing diagram: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing diagram: %w", err)
	}
	return nil
}
