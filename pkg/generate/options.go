// Package generate assembles the text artifacts derived from a diagram: the rules
// document, the agent protocol document and one component spec per node.
//
// Every assembler is a pure function of its inputs. Mind-map nodes are not part of
// the architecture and are filtered out before any policy lookup.
package generate

import (
	"fmt"

	"github.com/ritzau/blueprint/pkg/classify"
	"github.com/ritzau/blueprint/pkg/logging"
	"github.com/ritzau/blueprint/pkg/model"
	"github.com/ritzau/blueprint/pkg/policy"
)

var log = logging.New("generate")

// Format selects the component spec rendering.
type Format string

const (
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts "yaml" or "markdown" ("md" for short); empty selects yaml.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown spec format %q", s)
}

// Extension is the file extension of a component spec in this format.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return "yaml"
}

// Options controls document assembly.
type Options struct {
	ProjectName string
	Format      Format
	Anti        policy.RenderMode
	Numbering   classify.Numbering
}

// DefaultProjectName is used when no project name is configured.
const DefaultProjectName = "My Project"

// DefaultOptions reproduces the original artifacts: YAML specs, legacy
// anti-responsibility strings and table phase numbering.
func DefaultOptions(projectName string) Options {
	if projectName == "" {
		projectName = DefaultProjectName
	}
	return Options{
		ProjectName: projectName,
		Format:      FormatYAML,
		Anti:        policy.RenderLegacy,
		Numbering:   classify.NumberByTable,
	}
}

// SpecPath is the path of a node's component spec relative to the output root.
func (o Options) SpecPath(label string) string {
	return "specs/" + model.Slug(label) + "." + o.Format.Extension()
}

func (o Options) withDefaults() Options {
	if o.ProjectName == "" {
		o.ProjectName = DefaultProjectName
	}
	if o.Format == "" {
		o.Format = FormatYAML
	}
	if o.Anti == "" {
		o.Anti = policy.RenderLegacy
	}
	if o.Numbering == "" {
		o.Numbering = classify.NumberByTable
	}
	return o
}
