package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/ritzau/blueprint/pkg/diagram"
	"github.com/ritzau/blueprint/pkg/model"
	"github.com/ritzau/blueprint/pkg/pubsub"
)

// Source provides the diagram for a generation run.
type Source interface {
	Load(ctx context.Context) (model.Graph, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (model.Graph, error)

func (f SourceFunc) Load(ctx context.Context) (model.Graph, error) { return f(ctx) }

// FileSource imports the diagram from a JSON file on every run.
type FileSource struct {
	Path string
}

func (s FileSource) Load(context.Context) (model.Graph, error) {
	g, report, err := diagram.ImportFile(s.Path)
	if err != nil {
		return model.Graph{}, err
	}
	for _, e := range report.DroppedEdges {
		log.Warn("dropped edge with missing endpoint", "edge", e.ID, "source", e.Source, "target", e.Target)
	}
	for _, w := range report.Warnings {
		log.Warn("diagram warning", "warning", w)
	}
	return *g, nil
}

// Runner orchestrates load, generate and write, publishing progress on
// pubsub.TopicStatus and the result on pubsub.TopicDocuments.
type Runner struct {
	source    Source
	generator Generator
	outDir    string
	publisher pubsub.Publisher

	mu   sync.Mutex // one run at a time
	last Bundle
}

// NewRunner creates a runner. outDir may be empty to skip writing; publisher
// may be nil.
func NewRunner(source Source, generator Generator, outDir string, publisher pubsub.Publisher) *Runner {
	return &Runner{
		source:    source,
		generator: generator,
		outDir:    outDir,
		publisher: publisher,
	}
}

const runSteps = 3

func (r *Runner) publishStatus(state, message string, step int) {
	if r.publisher == nil {
		return
	}
	status := pubsub.GenerationStatus{State: state, Message: message, Step: step, Total: runSteps}
	if err := r.publisher.Publish(pubsub.TopicStatus, state, status); err != nil {
		log.Warn("failed to publish status", "state", state, "error", err)
	}
}

func (r *Runner) publishDocuments(b Bundle) {
	if r.publisher == nil {
		return
	}
	data := pubsub.DocumentsData{Complete: b.OK()}
	for _, a := range b.Artifacts {
		data.Artifacts = append(data.Artifacts, a.Path)
	}
	if !b.OK() {
		data.Failures = make(map[string]string, len(b.Failures))
		for _, f := range b.Failures {
			data.Failures[f.Path] = f.Err.Error()
		}
	}
	if err := r.publisher.Publish(pubsub.TopicDocuments, "generated", data); err != nil {
		log.Warn("failed to publish documents", "error", err)
	}
}

// Run performs one generation pass. The returned error covers loading and
// writing; per-artifact failures are reported in the Bundle.
func (r *Runner) Run(ctx context.Context, reason string) (Bundle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	log.Info("starting generation", "reason", reason)

	r.publishStatus("loading", "Loading diagram...", 1)
	g, err := r.source.Load(ctx)
	if err != nil {
		r.publishStatus("error", fmt.Sprintf("Error loading diagram: %v", err), 1)
		return Bundle{}, fmt.Errorf("loading diagram: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Bundle{}, err
	}

	r.publishStatus("generating", fmt.Sprintf("Generating documents for %d nodes...", len(g.Nodes)), 2)
	b := r.generator.Generate(g)

	if r.outDir != "" {
		r.publishStatus("writing", "Writing documents...", 3)
		if _, err := Write(r.outDir, b); err != nil {
			r.publishStatus("error", fmt.Sprintf("Error writing documents: %v", err), 3)
			return b, err
		}
	}

	r.last = b
	r.publishDocuments(b)
	if b.OK() {
		r.publishStatus("ready", fmt.Sprintf("Generated %d documents", len(b.Artifacts)), runSteps)
	} else {
		r.publishStatus("ready", fmt.Sprintf("Generated %d documents, %d failed", len(b.Artifacts), len(b.Failures)), runSteps)
	}
	log.Info("generation complete", "artifacts", len(b.Artifacts), "failures", len(b.Failures))
	return b, nil
}

// Last returns the bundle of the most recent successful run.
func (r *Runner) Last() Bundle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}
