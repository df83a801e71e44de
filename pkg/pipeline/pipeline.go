// Package pipeline produces the full artifact set for a diagram (rules,
// protocol and one spec per component) and writes it to disk.
package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ritzau/blueprint/pkg/generate"
	"github.com/ritzau/blueprint/pkg/logging"
	"github.com/ritzau/blueprint/pkg/metrics"
	"github.com/ritzau/blueprint/pkg/model"
)

var log = logging.New("pipeline")

// Fixed artifact file names.
const (
	RulesFile    = "PROJECT_RULES.md"
	ProtocolFile = "AGENT_PROTOCOL.md"
)

// ErrPathCollision is recorded when two components map to the same spec file.
var ErrPathCollision = errors.New("spec path already used by another component")

// ErrUnsafePath is recorded when a component label would place its spec
// outside the specs directory.
var ErrUnsafePath = errors.New("label does not map to a file name inside the output directory")

// Kind classifies an artifact.
type Kind string

const (
	KindRules     Kind = "rules"
	KindProtocol  Kind = "protocol"
	KindComponent Kind = "component"
)

// Artifact is one generated document.
type Artifact struct {
	Kind    Kind   `json:"kind"`
	Path    string `json:"path"` // relative to the output directory
	NodeID  string `json:"node_id,omitempty"`
	Content string `json:"content"`
}

// ArtifactFailure records an artifact that could not be generated.
type ArtifactFailure struct {
	Kind   Kind   `json:"kind"`
	Path   string `json:"path"`
	NodeID string `json:"node_id,omitempty"`
	Err    error  `json:"-"`
}

func (f ArtifactFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Path, f.Err)
}

func (f ArtifactFailure) Unwrap() error { return f.Err }

// Bundle is the outcome of one generation pass. A failed artifact never
// prevents the others from being produced.
type Bundle struct {
	Artifacts []Artifact
	Failures  []ArtifactFailure
}

// OK reports whether every artifact was generated.
func (b Bundle) OK() bool { return len(b.Failures) == 0 }

// Err joins all failures, or returns nil.
func (b Bundle) Err() error {
	if b.OK() {
		return nil
	}
	errs := make([]error, len(b.Failures))
	for i, f := range b.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Artifact returns the artifact stored at path.
func (b Bundle) Artifact(path string) (Artifact, bool) {
	for _, a := range b.Artifacts {
		if a.Path == path {
			return a, true
		}
	}
	return Artifact{}, false
}

// Generator runs the assemblers and reports per-artifact metrics.
type Generator struct {
	Options  generate.Options
	Recorder metrics.Recorder
}

// Generate produces N+2 artifacts for a diagram with N architecture nodes
// using opts.
func Generate(g model.Graph, opts generate.Options) Bundle {
	return Generator{Options: opts}.Generate(g)
}

// Generate produces the rules document, the protocol document and one spec per
// architecture node, in that order.
func (gen Generator) Generate(g model.Graph) Bundle {
	opts := gen.Options
	if opts.ProjectName == "" {
		opts.ProjectName = generate.DefaultProjectName
	}
	if opts.Format == "" {
		opts.Format = generate.FormatYAML
	}
	rec := gen.Recorder
	if rec == nil {
		rec = metrics.Nop{}
	}

	var b Bundle
	b.add(rec, KindRules, RulesFile, "", func() (string, error) {
		return generate.RulesDocument(g, opts)
	})
	b.add(rec, KindProtocol, ProtocolFile, "", func() (string, error) {
		return generate.ProtocolDocument(g), nil
	})

	owners := make(map[string]string)
	arch := g.ArchitectureView()
	for _, node := range arch.Nodes {
		path := opts.SpecPath(node.Label)
		if !safeSlug(model.Slug(node.Label)) {
			err := fmt.Errorf("%w: %q", ErrUnsafePath, node.Label)
			log.Warn("artifact failed", "path", path, "node", node.ID, "error", err)
			b.Failures = append(b.Failures, ArtifactFailure{Kind: KindComponent, Path: path, NodeID: node.ID, Err: err})
			continue
		}
		if owner, taken := owners[path]; taken {
			err := fmt.Errorf("%w: %s", ErrPathCollision, owner)
			log.Warn("artifact failed", "path", path, "node", node.ID, "error", err)
			b.Failures = append(b.Failures, ArtifactFailure{Kind: KindComponent, Path: path, NodeID: node.ID, Err: err})
			continue
		}
		owners[path] = node.ID
		b.add(rec, KindComponent, path, node.ID, func() (string, error) {
			return generate.ComponentDocument(node, g, opts)
		})
	}

	log.Debug("generated bundle", "artifacts", len(b.Artifacts), "failures", len(b.Failures))
	return b
}

func safeSlug(slug string) bool {
	return slug != "" && !strings.ContainsAny(slug, `/\`) && !strings.Contains(slug, "..")
}

// add runs build, converting both errors and panics into an ArtifactFailure.
func (b *Bundle) add(rec metrics.Recorder, kind Kind, path, nodeID string, build func() (string, error)) {
	start := time.Now()
	content, err := safely(build)
	rec.ObserveArtifact(string(kind), err == nil, time.Since(start))
	if err != nil {
		log.Warn("artifact failed", "path", path, "node", nodeID, "error", err)
		b.Failures = append(b.Failures, ArtifactFailure{Kind: kind, Path: path, NodeID: nodeID, Err: err})
		return
	}
	b.Artifacts = append(b.Artifacts, Artifact{Kind: kind, Path: path, NodeID: nodeID, Content: content})
}

func safely(build func() (string, error)) (content string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while generating: %v", r)
		}
	}()
	return build()
}

// Write stores every successful artifact under dir and returns the written
// paths. Failed artifacts are not written and leave any previous file in place.
func Write(dir string, b Bundle) ([]string, error) {
	written := make([]string, 0, len(b.Artifacts))
	for _, a := range b.Artifacts {
		full := filepath.Join(dir, filepath.FromSlash(a.Path))
		if rel, err := filepath.Rel(dir, full); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return written, fmt.Errorf("writing %s: %w", a.Path, ErrUnsafePath)
		}
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return written, fmt.Errorf("creating directory for %s: %w", a.Path, err)
		}
		if err := os.WriteFile(full, []byte(a.Content), 0o644); err != nil {
			return written, fmt.Errorf("writing %s: %w", a.Path, err)
		}
		written = append(written, full)
	}
	log.Info("wrote artifacts", "dir", dir, "count", len(written))
	return written, nil
}
