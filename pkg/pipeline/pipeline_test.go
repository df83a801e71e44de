package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ritzau/blueprint/pkg/diagram"
	"github.com/ritzau/blueprint/pkg/generate"
	"github.com/ritzau/blueprint/pkg/metrics"
	"github.com/ritzau/blueprint/pkg/model"
	"github.com/ritzau/blueprint/pkg/pubsub"
)

var created = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func paths(b Bundle) []string {
	out := make([]string, len(b.Artifacts))
	for i, a := range b.Artifacts {
		out[i] = a.Path
	}
	return out
}

func TestGenerateExample(t *testing.T) {
	b := Generate(*diagram.Example(created), generate.DefaultOptions(diagram.ExampleProjectName))
	if !b.OK() {
		t.Fatalf("unexpected failures: %v", b.Err())
	}
	want := []string{
		"PROJECT_RULES.md",
		"AGENT_PROTOCOL.md",
		"specs/web-app.yaml",
		"specs/api-server.yaml",
		"specs/database.yaml",
		"specs/auth-service.yaml",
	}
	if got := paths(b); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("paths = %v, want %v", got, want)
	}
	rules, _ := b.Artifact(RulesFile)
	if !strings.HasPrefix(rules.Content, "# SaaS Starter - System Rules\n") {
		t.Errorf("rules header = %q", strings.SplitN(rules.Content, "\n", 2)[0])
	}
	api, _ := b.Artifact("specs/api-server.yaml")
	if api.NodeID != "backend-1" || api.Kind != KindComponent {
		t.Errorf("api artifact = %+v", api)
	}
}

func TestGenerateSkipsMindMapNodes(t *testing.T) {
	g := diagram.Example(created)
	g.AddNode(model.Node{ID: "idea", Category: model.CategoryMindMap, Label: "Idea"})
	g.AddEdge(model.Edge{ID: "m", Source: "idea", Target: "backend-1"})

	b := Generate(*g, generate.DefaultOptions(""))
	if len(b.Artifacts) != 6 {
		t.Errorf("got %d artifacts, want N+2 = 6", len(b.Artifacts))
	}
	if _, ok := b.Artifact("specs/idea.yaml"); ok {
		t.Error("mind-map node must not get a spec")
	}
}

func TestGenerateIsolatesFailures(t *testing.T) {
	g := model.NewGraph(created)
	g.AddNode(model.Node{ID: "api", Category: model.CategoryBackend, Label: "API"})
	g.AddNode(model.Node{ID: "bad", Category: "database", Label: "Legacy DB"})

	b := Generate(*g, generate.DefaultOptions("Broken"))
	if b.OK() {
		t.Fatal("expected failures")
	}
	if _, ok := b.Artifact("specs/api.yaml"); !ok {
		t.Error("valid component must still be generated")
	}
	if _, ok := b.Artifact(ProtocolFile); !ok {
		t.Error("protocol must still be generated")
	}

	failed := map[string]bool{}
	for _, f := range b.Failures {
		failed[f.Path] = true
		if !errors.Is(f.Err, model.ErrUnknownCategory) {
			t.Errorf("%s failed with %v, want ErrUnknownCategory", f.Path, f.Err)
		}
	}
	if !failed[RulesFile] || !failed["specs/legacy-db.yaml"] {
		t.Errorf("failures = %v", failed)
	}
	if !errors.Is(b.Err(), model.ErrUnknownCategory) {
		t.Errorf("Err() = %v", b.Err())
	}
}

func TestGenerateReportsPathCollision(t *testing.T) {
	g := model.NewGraph(created)
	g.AddNode(model.Node{ID: "a", Category: model.CategoryBackend, Label: "API Server"})
	g.AddNode(model.Node{ID: "b", Category: model.CategoryBackend, Label: "api  server"})

	b := Generate(*g, generate.DefaultOptions(""))
	if len(b.Failures) != 1 || !errors.Is(b.Failures[0].Err, ErrPathCollision) || b.Failures[0].NodeID != "b" {
		t.Fatalf("failures = %+v", b.Failures)
	}
}

func TestGenerateRejectsLabelsLeavingSpecsDir(t *testing.T) {
	g := model.NewGraph(created)
	g.AddNode(model.Node{ID: "ok", Category: model.CategoryBackend, Label: "API Server"})
	g.AddNode(model.Node{ID: "up", Category: model.CategoryBackend, Label: "../../escaped"})
	g.AddNode(model.Node{ID: "win", Category: model.CategoryStorage, Label: `..\escaped`})
	g.AddNode(model.Node{ID: "sub", Category: model.CategoryExternal, Label: "client/server"})

	b := Generate(*g, generate.DefaultOptions(""))
	if len(b.Failures) != 3 {
		t.Fatalf("failures = %+v", b.Failures)
	}
	for _, f := range b.Failures {
		if !errors.Is(f.Err, ErrUnsafePath) {
			t.Errorf("failure for %s = %v, want ErrUnsafePath", f.NodeID, f.Err)
		}
	}
	if _, ok := b.Artifact("specs/api-server.yaml"); !ok {
		t.Errorf("safe component missing: %v", paths(b))
	}

	root := t.TempDir()
	out := filepath.Join(root, "out")
	if _, err := Write(out, b); err != nil {
		t.Fatalf("Write: %v", err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "out" {
		t.Errorf("files written outside the output directory: %v", entries)
	}
}

func TestWriteRefusesPathsOutsideDir(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "out")
	b := Bundle{Artifacts: []Artifact{{Kind: KindComponent, Path: "specs/../../escaped.yaml", Content: "x"}}}

	written, err := Write(out, b)
	if !errors.Is(err, ErrUnsafePath) {
		t.Fatalf("Write error = %v, want ErrUnsafePath", err)
	}
	if len(written) != 0 {
		t.Errorf("written = %v", written)
	}
	if _, err := os.Stat(filepath.Join(root, "escaped.yaml")); !os.IsNotExist(err) {
		t.Errorf("escaped file exists: %v", err)
	}
}

func TestGenerateMarkdownSpecs(t *testing.T) {
	opts := generate.DefaultOptions("")
	opts.Format = generate.FormatMarkdown
	b := Generate(*diagram.Example(created), opts)
	if _, ok := b.Artifact("specs/web-app.md"); !ok {
		t.Errorf("paths = %v", paths(b))
	}
}

func TestGenerateRecordsMetrics(t *testing.T) {
	rec := &countingRecorder{}
	Generator{Options: generate.DefaultOptions(""), Recorder: rec}.Generate(*diagram.Example(created))
	if rec.artifacts != 6 {
		t.Errorf("recorded %d artifacts, want 6", rec.artifacts)
	}
}

type countingRecorder struct {
	metrics.Nop
	artifacts int
}

func (c *countingRecorder) ObserveArtifact(string, bool, time.Duration) { c.artifacts++ }

func TestSafelyRecoversPanics(t *testing.T) {
	var b Bundle
	b.add(metrics.Nop{}, KindRules, RulesFile, "", func() (string, error) { panic("boom") })
	if len(b.Failures) != 1 || !strings.Contains(b.Failures[0].Err.Error(), "boom") {
		t.Errorf("failures = %+v", b.Failures)
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	b := Generate(*diagram.Example(created), generate.DefaultOptions(""))
	written, err := Write(dir, b)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(written) != 6 {
		t.Errorf("wrote %d files", len(written))
	}
	data, err := os.ReadFile(filepath.Join(dir, "specs", "database.yaml"))
	if err != nil {
		t.Fatalf("reading spec: %v", err)
	}
	if !strings.Contains(string(data), "component_id: storage-1") {
		t.Errorf("unexpected spec:\n%s", data)
	}
}

func TestRunnerPublishesProgress(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diagram.json")
	if err := diagram.ExportFile(path, *diagram.Example(created)); err != nil {
		t.Fatalf("ExportFile: %v", err)
	}

	pub := pubsub.NewSSEPublisher()
	defer pub.Close()
	pub.ConfigureTopic(pubsub.TopicStatus, pubsub.TopicConfig{BufferSize: 10, ReplayAll: true})

	out := filepath.Join(dir, "out")
	r := NewRunner(FileSource{Path: path}, Generator{Options: generate.DefaultOptions("")}, out, pub)
	b, err := r.Run(context.Background(), "test")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(b.Artifacts) != 6 || len(r.Last().Artifacts) != 6 {
		t.Errorf("artifacts = %d, last = %d", len(b.Artifacts), len(r.Last().Artifacts))
	}
	if _, err := os.Stat(filepath.Join(out, RulesFile)); err != nil {
		t.Errorf("rules not written: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sub, err := pub.Subscribe(ctx, pubsub.TopicStatus)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	var states []string
	for len(states) < 4 {
		select {
		case e := <-sub.Events():
			states = append(states, e.Type)
		case <-ctx.Done():
			t.Fatalf("states so far: %v", states)
		}
	}
	if strings.Join(states, ",") != "loading,generating,writing,ready" {
		t.Errorf("states = %v", states)
	}
}

func TestRunnerLoadError(t *testing.T) {
	r := NewRunner(FileSource{Path: filepath.Join(t.TempDir(), "missing.json")}, Generator{}, "", nil)
	if _, err := r.Run(context.Background(), "test"); err == nil {
		t.Fatal("expected error for missing diagram")
	}
}

func TestSourceFunc(t *testing.T) {
	src := SourceFunc(func(context.Context) (model.Graph, error) {
		return *diagram.Example(created), nil
	})
	r := NewRunner(src, Generator{}, "", nil)
	b, err := r.Run(context.Background(), "test")
	if err != nil || !b.OK() {
		t.Fatalf("Run: %v / %v", err, b.Err())
	}
}
