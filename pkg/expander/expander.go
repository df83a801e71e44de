// Package expander grows mind-map nodes with model-generated suggestions that a
// user later accepts, edits or rejects.
package expander

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/ritzau/blueprint/pkg/cache"
	"github.com/ritzau/blueprint/pkg/logging"
	"github.com/ritzau/blueprint/pkg/metrics"
	"github.com/ritzau/blueprint/pkg/model"
	"github.com/ritzau/blueprint/pkg/store"
)

var log = logging.New("expander")

var (
	ErrMaxDepth           = errors.New("mind-map node is already at maximum depth")
	ErrNotMindMap         = errors.New("only mind-map nodes can be expanded")
	ErrSuggestionNotFound = errors.New("suggestion not found")
	ErrSuggestionResolved = errors.New("suggestion was already accepted or rejected")
)

// DefaultCacheTTL keeps identical prompts from hitting the provider twice within an hour.
const DefaultCacheTTL = time.Hour

// Expander turns mind-map nodes into prompts and completions into suggestions.
type Expander struct {
	completer Completer
	cache     cache.Cache
	cacheTTL  time.Duration
	recorder  metrics.Recorder
	now       func() time.Time
}

// Option configures an Expander.
type Option func(*Expander)

// WithCache stores completions in c for ttl, keyed by provider, model and prompt.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(e *Expander) {
		e.cache = c
		e.cacheTTL = ttl
	}
}

// WithRecorder reports completion and cache metrics to r.
func WithRecorder(r metrics.Recorder) Option {
	return func(e *Expander) { e.recorder = r }
}

// WithClock overrides the time used to stamp suggestions.
func WithClock(now func() time.Time) Option {
	return func(e *Expander) { e.now = now }
}

// WithBreaker guards completions with a circuit breaker.
func WithBreaker(cfg BreakerConfig) Option {
	return func(e *Expander) { e.completer = withBreaker(e.completer, cfg) }
}

// New creates an expander around c.
func New(c Completer, opts ...Option) *Expander {
	e := &Expander{
		completer: c,
		cache:     cache.Nop{},
		cacheTTL:  DefaultCacheTTL,
		recorder:  metrics.Nop{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand asks the model for suggestions about req's node.
func (e *Expander) Expand(ctx context.Context, req Request) (Result, error) {
	if req.Level >= model.MaxMindMapDepth {
		return Result{}, fmt.Errorf("node %s at level %d: %w", req.NodeID, req.Level, ErrMaxDepth)
	}

	prompt := BuildPrompt(req)
	response, err := e.complete(ctx, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("expanding node %s: %w", req.NodeID, err)
	}

	result := ParseResponse(response, req.NodeID, e.now().UTC())
	log.Info("expanded node", "node", req.NodeID, "suggestions", len(result.Suggestions))
	return result, nil
}

func (e *Expander) complete(ctx context.Context, prompt string) (string, error) {
	key := cacheKey(e.completer.Provider(), e.completer.Model(), prompt)
	if cached, ok := e.cache.Get(ctx, key); ok {
		e.recorder.ObserveCache(true)
		log.Debug("completion cache hit", "key", key[:12])
		return string(cached), nil
	}
	e.recorder.ObserveCache(false)

	start := time.Now()
	response, err := e.completer.Complete(ctx, prompt)
	e.recorder.ObserveCompletion(e.completer.Provider(), err == nil, time.Since(start))
	if err != nil {
		return "", err
	}
	e.cache.Put(ctx, key, []byte(response), e.cacheTTL)
	return response, nil
}

func cacheKey(provider, modelName, prompt string) string {
	sum := sha256.Sum256([]byte(provider + "\x00" + modelName + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}

// RequestFor builds the expansion request for nodeID from the current diagram.
func RequestFor(g *model.Graph, nodeID, instructions string) (Request, error) {
	node, ok := g.Node(nodeID)
	if !ok {
		return Request{}, fmt.Errorf("%w: %s", store.ErrNodeNotFound, nodeID)
	}
	if node.Category != model.CategoryMindMap {
		return Request{}, fmt.Errorf("node %s is %s: %w", nodeID, node.Category, ErrNotMindMap)
	}

	req := Request{
		NodeID:       node.ID,
		Label:        node.Label,
		Description:  node.Meta.Description,
		Level:        node.Meta.Level,
		Instructions: instructions,
	}
	if parent, ok := g.Node(node.Meta.ParentID); ok && node.Meta.ParentID != "" {
		req.ParentLabel = parent.Label
	}
	for _, n := range g.Nodes {
		if n.ID != node.ID && n.Category == model.CategoryMindMap && n.Meta.ParentID == node.Meta.ParentID {
			req.SiblingLabels = append(req.SiblingLabels, n.Label)
		}
	}
	return req, nil
}

// ExpandNode expands a node held by s and attaches the resulting suggestions to
// it as pending.
func (e *Expander) ExpandNode(ctx context.Context, s *store.Store, nodeID, instructions string) (Result, error) {
	snap := s.Snapshot()
	req, err := RequestFor(&snap, nodeID, instructions)
	if err != nil {
		return Result{}, err
	}

	result, err := e.Expand(ctx, req)
	if err != nil {
		return Result{}, err
	}
	if len(result.Suggestions) == 0 {
		return result, nil
	}

	_, err = s.UpdateNode(ctx, nodeID, func(n *model.Node) error {
		n.Meta.Suggestions = append(n.Meta.Suggestions, result.Suggestions...)
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("attaching suggestions: %w", err)
	}
	return result, nil
}
