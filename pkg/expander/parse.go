package expander

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ritzau/blueprint/pkg/model"
)

// Result is the parsed outcome of one expansion.
type Result struct {
	Suggestions []model.Suggestion `json:"suggestions"`
	Reasoning   string             `json:"reasoning,omitempty"`
}

var (
	childrenMarker    = regexp.MustCompile(`(?i)CHILDREN:`)
	descriptionMarker = regexp.MustCompile(`(?i)EDIT_DESCRIPTION:`)
	reasoningMarker   = regexp.MustCompile(`(?i)REASONING:`)

	// "- [Label]: description" or "- Label: description"
	childLine = regexp.MustCompile(`^-\s*(?:\[([^\]]+)\]|([^:]+)):\s*(.*)$`)
)

// section returns the text following the first match of marker up to the first
// following terminator, or the end of text.
func section(text string, marker *regexp.Regexp, terminators ...*regexp.Regexp) (string, bool) {
	loc := marker.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	body := text[loc[1]:]
	end := len(body)
	for _, t := range terminators {
		if l := t.FindStringIndex(body); l != nil && l[0] < end {
			end = l[0]
		}
	}
	return strings.TrimSpace(body[:end]), true
}

// ParseResponse turns a completion into pending suggestions for nodeID. Unknown
// text is ignored; a response without recognizable sections yields no
// suggestions.
func ParseResponse(response, nodeID string, now time.Time) Result {
	var result Result

	if body, ok := section(response, childrenMarker, descriptionMarker, reasoningMarker); ok {
		children := parseChildren(body)
		if len(children) > 0 {
			result.Suggestions = append(result.Suggestions, model.Suggestion{
				ID:        model.NewSuggestionID(),
				Kind:      model.SuggestionAddChildren,
				Status:    model.StatusPending,
				Content:   fmt.Sprintf("Add %d child nodes", len(children)),
				NodeID:    nodeID,
				Children:  children,
				CreatedAt: now,
			})
		}
	}

	if desc, ok := section(response, descriptionMarker, reasoningMarker); ok {
		if desc != "" && !strings.EqualFold(desc, "none") {
			result.Suggestions = append(result.Suggestions, model.Suggestion{
				ID:          model.NewSuggestionID(),
				Kind:        model.SuggestionEditDescription,
				Status:      model.StatusPending,
				Content:     desc,
				NodeID:      nodeID,
				Description: desc,
				CreatedAt:   now,
			})
		}
	}

	if reasoning, ok := section(response, reasoningMarker); ok {
		result.Reasoning = reasoning
	}
	return result
}

func parseChildren(body string) []model.ChildProposal {
	var children []model.ChildProposal
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") {
			continue
		}
		var child model.ChildProposal
		if m := childLine.FindStringSubmatch(line); m != nil {
			label := m[1]
			if label == "" {
				label = m[2]
			}
			child.Label = strings.TrimSpace(label)
			child.Description = strings.TrimSpace(m[3])
		} else {
			child.Label = strings.TrimSpace(strings.TrimPrefix(line, "-"))
		}
		if child.Label != "" {
			children = append(children, child)
		}
	}
	return children
}
