// Package store holds the live diagram and serializes every mutation through a
// single lock. Changes can be persisted and observed.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ritzau/blueprint/pkg/logging"
	"github.com/ritzau/blueprint/pkg/model"
)

var log = logging.New("store")

var (
	ErrNodeNotFound   = model.ErrNodeNotFound
	ErrEdgeNotFound   = errors.New("edge not found")
	ErrDuplicateID    = errors.New("duplicate id")
	ErrDanglingEdge   = errors.New("edge endpoint does not exist")
	ErrImmutableField = errors.New("node id and type cannot change")
	ErrInvalidParent  = errors.New("invalid mind-map parent")
)

// ChangeKind classifies a committed mutation.
type ChangeKind string

const (
	NodeAdded    ChangeKind = "node_added"
	NodeUpdated  ChangeKind = "node_updated"
	NodeRemoved  ChangeKind = "node_removed"
	EdgeAdded    ChangeKind = "edge_added"
	EdgeRemoved  ChangeKind = "edge_removed"
	GraphChanged ChangeKind = "graph_changed"
)

// Change describes one committed mutation.
type Change struct {
	Kind ChangeKind `json:"kind"`
	ID   string     `json:"id,omitempty"`
}

// Persister saves and restores the diagram.
type Persister interface {
	Load(ctx context.Context) (*model.Graph, error)
	Save(ctx context.Context, g model.Graph) error
}

// ErrNoDiagram is returned by a Persister that has nothing stored yet.
var ErrNoDiagram = errors.New("no stored diagram")

// Store is the concurrency-safe owner of the diagram.
type Store struct {
	mu        sync.RWMutex
	graph     model.Graph
	persister Persister
	listeners []func(Change)
	now       func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithPersister saves the graph after every committed mutation.
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithClock overrides the time source used for new graphs.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a store holding a copy of g. A nil g starts an empty diagram.
func New(g *model.Graph, opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if g == nil {
		g = model.NewGraph(s.now())
	}
	s.graph = g.Clone()
	return s
}

// Open restores the diagram from p, starting empty when nothing is stored.
func Open(ctx context.Context, p Persister, opts ...Option) (*Store, error) {
	g, err := p.Load(ctx)
	if errors.Is(err, ErrNoDiagram) {
		g = nil
	} else if err != nil {
		return nil, fmt.Errorf("loading diagram: %w", err)
	}
	return New(g, append(opts, WithPersister(p))...), nil
}

// OnChange registers fn to be called after every committed mutation. Calls
// happen outside the store lock.
func (s *Store) OnChange(fn func(Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Snapshot returns a deep copy of the current diagram.
func (s *Store) Snapshot() model.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.Clone()
}

// Node returns a copy of the node with the given id.
func (s *Store) Node(id string) (model.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.graph.Node(id)
	if !ok {
		return model.Node{}, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return n.Clone(), nil
}

// Update runs fn against a working copy of the diagram and commits it if fn
// succeeds and the result is consistent. Either all of fn's changes land or none.
func (s *Store) Update(ctx context.Context, change Change, fn func(g *model.Graph) error) error {
	s.mu.Lock()
	work := s.graph.Clone()
	if err := fn(&work); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := checkConsistency(work); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.persister != nil {
		if err := s.persister.Save(ctx, work); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("persisting diagram: %w", err)
		}
	}
	s.graph = work
	listeners := append([]func(Change){}, s.listeners...)
	s.mu.Unlock()

	log.Debug("committed", "kind", change.Kind, "id", change.ID)
	for _, fn := range listeners {
		fn(change)
	}
	return nil
}

// AddNode inserts n, assigning an id when it has none.
func (s *Store) AddNode(ctx context.Context, n model.Node) (model.Node, error) {
	if n.ID == "" {
		n.ID = model.NewNodeID()
	}
	if !n.Category.Valid() {
		return model.Node{}, fmt.Errorf("node %s: %w: %q", n.ID, model.ErrUnknownCategory, n.Category)
	}
	err := s.Update(ctx, Change{Kind: NodeAdded, ID: n.ID}, func(g *model.Graph) error {
		if _, exists := g.Node(n.ID); exists {
			return fmt.Errorf("node %s: %w", n.ID, ErrDuplicateID)
		}
		if err := attachToParent(g, &n); err != nil {
			return err
		}
		g.Nodes = append(g.Nodes, n.Clone())
		return nil
	})
	if err != nil {
		return model.Node{}, err
	}
	return n, nil
}

// attachToParent links a new mind-map node to its parent. The child's level
// is derived from the parent; a level given by the caller must agree with it.
func attachToParent(g *model.Graph, n *model.Node) error {
	if n.Meta.ParentID == "" {
		if n.Meta.Level > model.MaxMindMapDepth {
			return fmt.Errorf("node %s: %w: level %d exceeds maximum depth %d",
				n.ID, ErrInvalidParent, n.Meta.Level, model.MaxMindMapDepth)
		}
		return nil
	}
	if n.Category != model.CategoryMindMap {
		return fmt.Errorf("node %s: %w: only mind-map nodes have a parent", n.ID, ErrInvalidParent)
	}
	i := nodeIndex(g, n.Meta.ParentID)
	if i < 0 {
		return fmt.Errorf("node %s: %w: parent %s not found", n.ID, ErrInvalidParent, n.Meta.ParentID)
	}
	parent := &g.Nodes[i]
	if parent.Category != model.CategoryMindMap {
		return fmt.Errorf("node %s: %w: parent %s is not a mind-map node", n.ID, ErrInvalidParent, parent.ID)
	}

	level := parent.Meta.Level + 1
	switch {
	case n.Meta.Level != 0 && n.Meta.Level != level:
		return fmt.Errorf("node %s: %w: level %d does not follow parent level %d",
			n.ID, ErrInvalidParent, n.Meta.Level, parent.Meta.Level)
	case level > model.MaxMindMapDepth:
		return fmt.Errorf("node %s: %w: level %d exceeds maximum depth %d",
			n.ID, ErrInvalidParent, level, model.MaxMindMapDepth)
	}
	n.Meta.Level = level
	parent.Meta.ChildIDs = append(parent.Meta.ChildIDs, n.ID)
	return nil
}

// UpdateNode applies fn to the node with the given id as one atomic
// read-modify-write. fn must not change the node's id or type.
func (s *Store) UpdateNode(ctx context.Context, id string, fn func(n *model.Node) error) (model.Node, error) {
	var updated model.Node
	err := s.Update(ctx, Change{Kind: NodeUpdated, ID: id}, func(g *model.Graph) error {
		i := nodeIndex(g, id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
		}
		n := g.Nodes[i]
		if err := fn(&n); err != nil {
			return err
		}
		if n.ID != id || n.Category != g.Nodes[i].Category {
			return fmt.Errorf("node %s: %w", id, ErrImmutableField)
		}
		g.Nodes[i] = n
		updated = n.Clone()
		return nil
	})
	return updated, err
}

// RemoveNode deletes a node, every edge touching it and any mind-map links to it.
func (s *Store) RemoveNode(ctx context.Context, id string) error {
	return s.Update(ctx, Change{Kind: NodeRemoved, ID: id}, func(g *model.Graph) error {
		i := nodeIndex(g, id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
		}
		g.Nodes = append(g.Nodes[:i], g.Nodes[i+1:]...)

		edges := g.Edges[:0]
		for _, e := range g.Edges {
			if !e.Touches(id) {
				edges = append(edges, e)
			}
		}
		g.Edges = edges

		for j := range g.Nodes {
			meta := &g.Nodes[j].Meta
			if meta.ParentID == id {
				meta.ParentID = ""
			}
			meta.ChildIDs = removeString(meta.ChildIDs, id)
		}
		return nil
	})
}

// AddEdge inserts e after checking that both endpoints exist.
func (s *Store) AddEdge(ctx context.Context, e model.Edge) (model.Edge, error) {
	if e.ID == "" {
		e.ID = model.NewEdgeID()
	}
	err := s.Update(ctx, Change{Kind: EdgeAdded, ID: e.ID}, func(g *model.Graph) error {
		for _, existing := range g.Edges {
			if existing.ID == e.ID {
				return fmt.Errorf("edge %s: %w", e.ID, ErrDuplicateID)
			}
		}
		g.Edges = append(g.Edges, e)
		return nil
	})
	if err != nil {
		return model.Edge{}, err
	}
	return e, nil
}

// RemoveEdge deletes an edge by id.
func (s *Store) RemoveEdge(ctx context.Context, id string) error {
	return s.Update(ctx, Change{Kind: EdgeRemoved, ID: id}, func(g *model.Graph) error {
		for i, e := range g.Edges {
			if e.ID == id {
				g.Edges = append(g.Edges[:i], g.Edges[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrEdgeNotFound, id)
	})
}

// Replace swaps in a whole new diagram, e.g. after the file changed on disk.
func (s *Store) Replace(ctx context.Context, g model.Graph) error {
	return s.Update(ctx, Change{Kind: GraphChanged}, func(work *model.Graph) error {
		*work = g.Clone()
		return nil
	})
}

func nodeIndex(g *model.Graph, id string) int {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, x := range list {
		if x != s {
			out = append(out, x)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// checkConsistency rejects graphs with duplicate node ids, unknown categories or
// edges pointing at missing nodes.
func checkConsistency(g model.Graph) error {
	ids := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if ids[n.ID] {
			return fmt.Errorf("node %s: %w", n.ID, ErrDuplicateID)
		}
		ids[n.ID] = true
		if !n.Category.Valid() {
			return fmt.Errorf("node %s: %w: %q", n.ID, model.ErrUnknownCategory, n.Category)
		}
	}
	for _, e := range g.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			return fmt.Errorf("edge %s (%s -> %s): %w", e.ID, e.Source, e.Target, ErrDanglingEdge)
		}
	}
	return nil
}
