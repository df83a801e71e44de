package expander

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritzau/blueprint/pkg/cache"
	"github.com/ritzau/blueprint/pkg/model"
	"github.com/ritzau/blueprint/pkg/store"
)

const cannedResponse = `Here you go.

CHILDREN:
- [Onboarding Flow]: First-run experience
- Core Interactions: The main loop
  - Settings & Preferences
not a bullet

EDIT_DESCRIPTION:
Everything the user sees and touches

REASONING:
Split by user journey stage.`

type fakeCompleter struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeCompleter) Provider() string { return "fake" }
func (f *fakeCompleter) Model() string    { return "fake-1" }

func (f *fakeCompleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

var stamp = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func mindMapStore(t *testing.T) *store.Store {
	t.Helper()
	g := model.NewGraph(stamp)
	g.AddNode(model.Node{ID: "root", Category: model.CategoryMindMap, Label: "Product",
		Position: model.Position{X: 10, Y: 20}, Meta: model.NodeMeta{ChildIDs: []string{"ux", "infra"}}})
	g.AddNode(model.Node{ID: "ux", Category: model.CategoryMindMap, Label: "User Experience",
		Meta: model.NodeMeta{ParentID: "root", Level: 1, Description: "UX things"}})
	g.AddNode(model.Node{ID: "infra", Category: model.CategoryMindMap, Label: "Infrastructure",
		Meta: model.NodeMeta{ParentID: "root", Level: 1}})
	g.AddNode(model.Node{ID: "api", Category: model.CategoryBackend, Label: "API"})
	return store.New(g)
}

func TestParseResponse(t *testing.T) {
	result := ParseResponse(cannedResponse, "ux", stamp)
	require.Len(t, result.Suggestions, 2)

	children := result.Suggestions[0]
	assert.Equal(t, model.SuggestionAddChildren, children.Kind)
	assert.Equal(t, model.StatusPending, children.Status)
	assert.Equal(t, "Add 3 child nodes", children.Content)
	assert.Equal(t, []model.ChildProposal{
		{Label: "Onboarding Flow", Description: "First-run experience"},
		{Label: "Core Interactions", Description: "The main loop"},
		{Label: "Settings & Preferences"},
	}, children.Children)
	assert.Equal(t, "ux", children.NodeID)
	assert.Equal(t, stamp, children.CreatedAt)

	desc := result.Suggestions[1]
	assert.Equal(t, model.SuggestionEditDescription, desc.Kind)
	assert.Equal(t, "Everything the user sees and touches", desc.Content)
	assert.Equal(t, "Everything the user sees and touches", desc.Description)
	assert.NotEqual(t, children.ID, desc.ID)

	assert.Equal(t, "Split by user journey stage.", result.Reasoning)
}

func TestParseResponseSkipsNoneDescription(t *testing.T) {
	result := ParseResponse("children:\n- A: a\n\nedit_description:\nNone\n\nreasoning:\nok", "n", stamp)
	require.Len(t, result.Suggestions, 1)
	assert.Equal(t, model.SuggestionAddChildren, result.Suggestions[0].Kind)
	assert.Equal(t, "ok", result.Reasoning)
}

func TestParseResponseWithoutSections(t *testing.T) {
	result := ParseResponse("I cannot help with that.", "n", stamp)
	assert.Empty(t, result.Suggestions)
	assert.Empty(t, result.Reasoning)
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(Request{
		Label:         "User Experience",
		Description:   "UX things",
		ParentLabel:   "Product",
		SiblingLabels: []string{"Infrastructure"},
		Level:         1,
		Instructions:  "Focus on mobile",
	})
	for _, want := range []string{
		`- Label: "User Experience"`,
		`- Description: "UX things"`,
		`- This node is a child of: "Product"`,
		"Sibling nodes at the same level: Infrastructure",
		"- Current abstraction level: 1",
		"Level 1: Key capabilities or major features within a theme.",
		"**User Instructions**: Focus on mobile",
		`1. Suggest 3-5 child nodes that break down "User Experience" into logical sub-components`,
		"CHILDREN:\n- [Child 1 Label]: [Brief description]",
	} {
		assert.Contains(t, prompt, want)
	}

	root := BuildPrompt(Request{Label: "Product"})
	assert.Contains(t, root, "- This is a root-level node")
	assert.NotContains(t, root, "**User Instructions**")
	assert.NotContains(t, root, "- Description:")
}

func TestAbstractionGuidance(t *testing.T) {
	assert.True(t, strings.HasPrefix(AbstractionGuidance(0), "Level 0 (Root)"))
	assert.True(t, strings.HasPrefix(AbstractionGuidance(2), "Level 2: Specific features"))
	assert.True(t, strings.HasPrefix(AbstractionGuidance(7), "Level 7: Very specific implementation details"))
}

func TestRequestFor(t *testing.T) {
	snap := mindMapStore(t).Snapshot()

	req, err := RequestFor(&snap, "ux", "more")
	require.NoError(t, err)
	assert.Equal(t, "Product", req.ParentLabel)
	assert.Equal(t, []string{"Infrastructure"}, req.SiblingLabels)
	assert.Equal(t, 1, req.Level)
	assert.Equal(t, "more", req.Instructions)

	_, err = RequestFor(&snap, "api", "")
	assert.ErrorIs(t, err, ErrNotMindMap)
	_, err = RequestFor(&snap, "ghost", "")
	assert.ErrorIs(t, err, store.ErrNodeNotFound)
}

func TestExpandNodeAttachesSuggestions(t *testing.T) {
	s := mindMapStore(t)
	fc := &fakeCompleter{response: cannedResponse}
	e := New(fc, WithClock(func() time.Time { return stamp }))

	result, err := e.ExpandNode(context.Background(), s, "ux", "")
	require.NoError(t, err)
	assert.Len(t, result.Suggestions, 2)

	ux, err := s.Node("ux")
	require.NoError(t, err)
	require.Len(t, ux.Meta.Suggestions, 2)
	assert.Equal(t, model.StatusPending, ux.Meta.Suggestions[0].Status)
	assert.Contains(t, fc.prompts[0], `"User Experience"`)
}

func TestExpandRejectsMaxDepth(t *testing.T) {
	fc := &fakeCompleter{response: cannedResponse}
	_, err := New(fc).Expand(context.Background(), Request{NodeID: "deep", Label: "Deep", Level: model.MaxMindMapDepth})
	assert.ErrorIs(t, err, ErrMaxDepth)
	assert.Zero(t, fc.calls())
}

func TestExpandUsesCache(t *testing.T) {
	fc := &fakeCompleter{response: cannedResponse}
	e := New(fc, WithCache(cache.NewMemory(8), time.Hour))
	req := Request{NodeID: "ux", Label: "User Experience", Level: 1}

	_, err := e.Expand(context.Background(), req)
	require.NoError(t, err)
	second, err := e.Expand(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, fc.calls())
	assert.Len(t, second.Suggestions, 2)

	req.Instructions = "different"
	_, err = e.Expand(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, fc.calls())
}

func TestExpandDoesNotCacheFailures(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("rate limited")}
	e := New(fc, WithCache(cache.NewMemory(8), time.Hour))
	req := Request{NodeID: "ux", Label: "User Experience"}

	_, err := e.Expand(context.Background(), req)
	require.Error(t, err)
	_, err = e.Expand(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, 2, fc.calls())
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("provider down")}
	cfg := DefaultBreakerConfig("test")
	cfg.MinRequests = 2
	e := New(fc, WithBreaker(cfg))

	ctx := context.Background()
	req := Request{NodeID: "n", Label: "Node"}
	for i := 0; i < 2; i++ {
		_, err := e.Expand(ctx, req)
		require.Error(t, err)
	}
	_, err := e.Expand(ctx, req)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, fc.calls())
}

func TestAcceptAddChildren(t *testing.T) {
	s := mindMapStore(t)
	e := New(&fakeCompleter{response: cannedResponse})
	ctx := context.Background()
	result, err := e.ExpandNode(ctx, s, "ux", "")
	require.NoError(t, err)

	g, err := Accept(ctx, s, "ux", result.Suggestions[0].ID)
	require.NoError(t, err)

	ux, _ := g.Node("ux")
	require.Len(t, ux.Meta.ChildIDs, 3)
	assert.True(t, ux.Meta.IsExpanded)
	assert.Equal(t, model.StatusAccepted, ux.Meta.Suggestions[0].Status)

	for i, id := range ux.Meta.ChildIDs {
		child, ok := g.Node(id)
		require.True(t, ok)
		assert.Equal(t, model.CategoryMindMap, child.Category)
		assert.Equal(t, "ux", child.Meta.ParentID)
		assert.Equal(t, 2, child.Meta.Level)
		assert.Equal(t, float64(300), child.Position.X)
		assert.Equal(t, float64(i*120), child.Position.Y)
	}
	first, _ := g.Node(ux.Meta.ChildIDs[0])
	assert.Equal(t, "Onboarding Flow", first.Label)
	assert.Equal(t, "First-run experience", first.Meta.Description)

	edges := model.EdgesTouching("ux", g.Edges)
	assert.Len(t, edges, 3)

	_, err = Accept(ctx, s, "ux", result.Suggestions[0].ID)
	assert.ErrorIs(t, err, ErrSuggestionResolved)
}

func TestAcceptEditedDescription(t *testing.T) {
	s := mindMapStore(t)
	ctx := context.Background()
	result, err := New(&fakeCompleter{response: cannedResponse}).ExpandNode(ctx, s, "ux", "")
	require.NoError(t, err)
	id := result.Suggestions[1].ID

	require.NoError(t, Edit(ctx, s, "ux", id, "Hand-tuned description"))
	_, err = Accept(ctx, s, "ux", id)
	require.NoError(t, err)

	ux, _ := s.Node("ux")
	assert.Equal(t, "Hand-tuned description", ux.Meta.Description)
}

func TestRejectAndMissingSuggestion(t *testing.T) {
	s := mindMapStore(t)
	ctx := context.Background()
	result, err := New(&fakeCompleter{response: cannedResponse}).ExpandNode(ctx, s, "ux", "")
	require.NoError(t, err)

	require.NoError(t, Reject(ctx, s, "ux", result.Suggestions[0].ID))
	ux, _ := s.Node("ux")
	assert.Equal(t, model.StatusRejected, ux.Meta.Suggestions[0].Status)
	assert.Empty(t, ux.Meta.ChildIDs)

	assert.ErrorIs(t, Reject(ctx, s, "ux", "nope"), ErrSuggestionNotFound)
	assert.ErrorIs(t, Edit(ctx, s, "ux", result.Suggestions[0].ID, "x"), ErrSuggestionResolved)
}

func TestAcceptAtMaxDepth(t *testing.T) {
	g := model.NewGraph(stamp)
	g.AddNode(model.Node{ID: "leaf", Category: model.CategoryMindMap, Label: "Leaf",
		Meta: model.NodeMeta{Level: model.MaxMindMapDepth, Suggestions: []model.Suggestion{{
			ID: "s", Kind: model.SuggestionAddChildren, Status: model.StatusPending,
			Children: []model.ChildProposal{{Label: "Too deep"}},
		}}}})
	s := store.New(g)

	_, err := Accept(context.Background(), s, "leaf", "s")
	assert.ErrorIs(t, err, ErrMaxDepth)
	assert.Len(t, s.Snapshot().Nodes, 1)
}

func TestNewCompleter(t *testing.T) {
	_, err := NewCompleter(CompleterConfig{Provider: ProviderOpenAI})
	assert.ErrorIs(t, err, ErrNoAPIKey)

	c, err := NewCompleter(CompleterConfig{Provider: "Anthropic", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, c.Provider())
	assert.Equal(t, DefaultAnthropicModel, c.Model())

	c, err = NewCompleter(CompleterConfig{APIKey: "k", Model: "gpt-4.1"})
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, c.Provider())
	assert.Equal(t, "gpt-4.1", c.Model())

	_, err = NewCompleter(CompleterConfig{Provider: "llama", APIKey: "k"})
	assert.Error(t, err)
}
