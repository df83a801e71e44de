package web

import (
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/gorilla/mux"

	"github.com/ritzau/blueprint/pkg/cycles"
	"github.com/ritzau/blueprint/pkg/diagram"
	"github.com/ritzau/blueprint/pkg/expander"
	"github.com/ritzau/blueprint/pkg/generate"
	"github.com/ritzau/blueprint/pkg/model"
	"github.com/ritzau/blueprint/pkg/pipeline"
)

// NodeRequest creates a node. Mind-map children name their parent.
type NodeRequest struct {
	Type        string              `json:"type" validate:"required"`
	Label       string              `json:"label" validate:"required"`
	Position    diagram.PositionDoc `json:"position"`
	Description string              `json:"description,omitempty"`
	TechStack   []string            `json:"techStack,omitempty"`
	ParentID    string              `json:"parentId,omitempty"`
	Level       int                 `json:"level,omitempty" validate:"gte=0,lte=10"`
}

// NodePatch updates the mutable fields of a node. Absent fields are kept.
type NodePatch struct {
	Label       *string              `json:"label,omitempty" validate:"omitempty,min=1"`
	Position    *diagram.PositionDoc `json:"position,omitempty"`
	Description *string              `json:"description,omitempty"`
	TechStack   *[]string            `json:"techStack,omitempty"`
	Comments    *[]string            `json:"comments,omitempty"`
}

// EdgeRequest creates an edge.
type EdgeRequest struct {
	Source       string `json:"source" validate:"required"`
	Target       string `json:"target" validate:"required"`
	Label        string `json:"label,omitempty"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// ImportResponse reports what a diagram upload repaired.
type ImportResponse struct {
	Nodes        int               `json:"nodes"`
	Edges        int               `json:"edges"`
	DroppedEdges []string          `json:"droppedEdges"`
	Warnings     []string          `json:"warnings"`
	Changes      diagram.GraphDiff `json:"changes"`
}

func (s *Server) handleGetDiagram(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, diagram.FromGraph(s.store.Snapshot()))
}

func (s *Server) handlePutDiagram(w http.ResponseWriter, r *http.Request) {
	g, report, err := diagram.Import(r.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	changes := diagram.Diff(s.store.Snapshot(), *g)
	if err := s.store.Replace(r.Context(), *g); err != nil {
		writeError(w, r, err)
		return
	}

	resp := ImportResponse{
		Nodes:        len(g.Nodes),
		Edges:        len(g.Edges),
		DroppedEdges: make([]string, 0, len(report.DroppedEdges)),
		Warnings:     report.Warnings,
		Changes:      changes,
	}
	for _, e := range report.DroppedEdges {
		resp.DroppedEdges = append(resp.DroppedEdges, e.ID)
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, cycles.Diagnose(s.store.Snapshot()))
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var req NodeRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	category, err := model.ParseCategory(req.Type)
	if err != nil {
		writeError(w, r, err)
		return
	}

	n := model.Node{
		Category: category,
		Label:    req.Label,
		Position: model.Position{X: req.Position.X, Y: req.Position.Y},
		Meta: model.NodeMeta{
			Description: req.Description,
			TechStack:   req.TechStack,
			ParentID:    req.ParentID,
			Level:       req.Level,
		},
	}
	created, err := s.store.AddNode(r.Context(), n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, diagram.NodeDocument(created))
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.Node(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, diagram.NodeDocument(n))
}

func (s *Server) handlePatchNode(w http.ResponseWriter, r *http.Request) {
	var patch NodePatch
	if err := s.decode(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.store.UpdateNode(r.Context(), mux.Vars(r)["id"], func(n *model.Node) error {
		if patch.Label != nil {
			n.Label = *patch.Label
		}
		if patch.Position != nil {
			n.Position = model.Position{X: patch.Position.X, Y: patch.Position.Y}
		}
		if patch.Description != nil {
			n.Meta.Description = *patch.Description
		}
		if patch.TechStack != nil {
			n.Meta.TechStack = *patch.TechStack
		}
		if patch.Comments != nil {
			n.Meta.Comments = *patch.Comments
		}
		return nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, diagram.NodeDocument(updated))
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RemoveNode(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddEdge(w http.ResponseWriter, r *http.Request) {
	var req EdgeRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.store.AddEdge(r.Context(), model.Edge{
		Source:       req.Source,
		Target:       req.Target,
		Label:        req.Label,
		SourceHandle: req.SourceHandle,
		TargetHandle: req.TargetHandle,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteEdge(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RemoveEdge(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DocumentSummary lists one artifact without its content.
type DocumentSummary struct {
	Kind   pipeline.Kind `json:"kind"`
	Path   string        `json:"path"`
	NodeID string        `json:"nodeId,omitempty"`
	Error  string        `json:"error,omitempty"`
}

func summarize(b pipeline.Bundle) []DocumentSummary {
	out := make([]DocumentSummary, 0, len(b.Artifacts)+len(b.Failures))
	for _, a := range b.Artifacts {
		out = append(out, DocumentSummary{Kind: a.Kind, Path: a.Path, NodeID: a.NodeID})
	}
	for _, f := range b.Failures {
		out = append(out, DocumentSummary{Kind: f.Kind, Path: f.Path, NodeID: f.NodeID, Error: f.Err.Error()})
	}
	return out
}

// bundle returns the latest generation result, generating from the current
// diagram when no runner is configured.
func (s *Server) bundle() pipeline.Bundle {
	if s.runner != nil {
		return s.runner.Last()
	}
	return s.generator.Generate(s.store.Snapshot())
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		writeJSON(w, http.StatusOK, summarize(s.bundle()))
		return
	}
	b, err := s.runner.Run(r.Context(), "api")
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summarize(b))
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, summarize(s.bundle()))
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	p := path.Clean(mux.Vars(r)["path"])
	a, ok := s.bundle().Artifact(p)
	if !ok {
		http.Error(w, "document not found: "+p, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", contentType(a.Path))
	w.Write([]byte(a.Content))
}

func contentType(p string) string {
	if strings.HasSuffix(p, ".yaml") {
		return "application/yaml; charset=utf-8"
	}
	return "text/markdown; charset=utf-8"
}

func (s *Server) handleNodeSpec(w http.ResponseWriter, r *http.Request) {
	g := s.store.Snapshot()
	n, ok := g.Node(mux.Vars(r)["id"])
	if !ok {
		writeError(w, r, model.ErrNodeNotFound)
		return
	}
	opts := s.generator.Options
	content, err := generate.ComponentDocument(n, g, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType(opts.SpecPath(n.Label)))
	w.Write([]byte(content))
}

// ExpandRequest carries optional user guidance for an expansion.
type ExpandRequest struct {
	Instructions string `json:"instructions,omitempty"`
}

// EditRequest replaces the content of a suggestion.
type EditRequest struct {
	Content string `json:"content" validate:"required"`
}

var errExpansionDisabled = errors.New("mind-map expansion is not configured")

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	if s.expander == nil {
		http.Error(w, errExpansionDisabled.Error(), http.StatusServiceUnavailable)
		return
	}
	var req ExpandRequest
	if r.ContentLength != 0 {
		if err := s.decode(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}
	result, err := s.expander.ExpandNode(r.Context(), s.store, mux.Vars(r)["id"], req.Instructions)
	if err != nil {
		writeError(w, r, err)
		return
	}

	docs := make([]diagram.SuggestionDoc, 0, len(result.Suggestions))
	for _, sg := range result.Suggestions {
		docs = append(docs, diagram.SuggestionDocument(sg))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": docs,
		"reasoning":   result.Reasoning,
	})
}

func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	g, err := expander.Accept(r.Context(), s.store, vars["id"], vars["sid"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, diagram.FromGraph(g))
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := expander.Reject(r.Context(), s.store, vars["id"], vars["sid"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEditSuggestion(w http.ResponseWriter, r *http.Request) {
	var req EditRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	vars := mux.Vars(r)
	if err := expander.Edit(r.Context(), s.store, vars["id"], vars["sid"], req.Content); err != nil {
		writeError(w, r, err)
		return
	}
	n, err := s.store.Node(vars["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, diagram.NodeDocument(n))
}
