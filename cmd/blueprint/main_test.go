package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestExampleThenGenerate(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	diagramPath := filepath.Join(dir, "diagram.json")
	out := filepath.Join(dir, "docs")

	if err := execute(t, "example", "--diagram", diagramPath); err != nil {
		t.Fatalf("example: %v", err)
	}
	if err := execute(t, "example", "--diagram", diagramPath); err == nil {
		t.Error("example should refuse to overwrite without --force")
	}

	if err := execute(t, "generate", "--diagram", diagramPath, "--out", out, "--project", "SaaS Starter"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	rules, err := os.ReadFile(filepath.Join(out, "PROJECT_RULES.md"))
	if err != nil {
		t.Fatalf("reading rules: %v", err)
	}
	if !strings.HasPrefix(string(rules), "# SaaS Starter - System Rules") {
		t.Errorf("unexpected rules header: %.60q", rules)
	}
	for _, name := range []string{"AGENT_PROTOCOL.md", "specs/web-app.yaml", "specs/api-server.yaml", "specs/database.yaml", "specs/auth-service.yaml"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	if err := execute(t, "validate", "--diagram", diagramPath, "--strict"); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestGenerateMissingDiagram(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := execute(t, "generate", "--diagram", filepath.Join(dir, "missing.json"), "--out", dir); err == nil {
		t.Error("expected an error for a missing diagram")
	}
}

func TestInvalidFormatRejected(t *testing.T) {
	t.Chdir(t.TempDir())
	if err := execute(t, "validate", "--format", "pdf"); err == nil {
		t.Error("expected a configuration error")
	}
}
