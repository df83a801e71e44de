package expander

import (
	"fmt"
	"strings"
)

// Request describes the mind-map node to expand and its surroundings.
type Request struct {
	NodeID        string
	Label         string
	Description   string
	ParentLabel   string
	SiblingLabels []string
	Level         int
	Instructions  string
}

// BuildPrompt renders the completion prompt for req. Children are asked to stay
// one abstraction level below the node.
func BuildPrompt(req Request) string {
	var b strings.Builder

	b.WriteString("You are an AI assistant helping to expand a mind map for project planning and visualization.\n\n")
	b.WriteString("**Task**: Expand the following node by suggesting child nodes and/or edits to the current node.\n\n")

	b.WriteString("**Current Node**:\n")
	fmt.Fprintf(&b, "- Label: %q\n", req.Label)
	if req.Description != "" {
		fmt.Fprintf(&b, "- Description: %q\n", req.Description)
	}

	b.WriteString("\n**Context**:\n")
	if req.ParentLabel != "" {
		fmt.Fprintf(&b, "- This node is a child of: %q", req.ParentLabel)
	} else {
		b.WriteString("- This is a root-level node")
	}
	if len(req.SiblingLabels) > 0 {
		fmt.Fprintf(&b, "\nSibling nodes at the same level: %s", strings.Join(req.SiblingLabels, ", "))
	}
	fmt.Fprintf(&b, "\n- Current abstraction level: %d\n\n", req.Level)

	b.WriteString("**Abstraction Guidance**:\n")
	b.WriteString(AbstractionGuidance(req.Level))
	b.WriteString("\n\n")

	if req.Instructions != "" {
		fmt.Fprintf(&b, "**User Instructions**: %s\n\n", req.Instructions)
	}

	b.WriteString("**Your task**:\n")
	fmt.Fprintf(&b, "1. Suggest 3-5 child nodes that break down %q into logical sub-components\n", req.Label)
	b.WriteString("2. Keep all suggestions at the SAME level of abstraction (one level deeper than current)\n")
	b.WriteString("3. Each child node should be a clear, distinct aspect or phase\n")
	b.WriteString("4. Optionally suggest edits to the current node's description for clarity\n")
	b.WriteString("5. Be concise and actionable\n\n")

	b.WriteString("**Output format** (use exactly this structure):\n\n")
	b.WriteString("CHILDREN:\n")
	b.WriteString("- [Child 1 Label]: [Brief description]\n")
	b.WriteString("- [Child 2 Label]: [Brief description]\n")
	b.WriteString("- [Child 3 Label]: [Brief description]\n\n")
	b.WriteString("EDIT_DESCRIPTION:\n")
	b.WriteString("[Optional: Improved description for the current node]\n\n")
	b.WriteString("REASONING:\n")
	b.WriteString("[Brief explanation of your suggestions]")

	return b.String()
}

// AbstractionGuidance explains what kind of children fit below a node at level.
func AbstractionGuidance(level int) string {
	switch level {
	case 0:
		return "Level 0 (Root): High-level themes, major phases, or core pillars.\n" +
			`Examples: "User Experience", "Technical Infrastructure", "Go-to-Market Strategy"`
	case 1:
		return "Level 1: Key capabilities or major features within a theme.\n" +
			`Examples: If parent is "User Experience", children might be "Onboarding Flow", "Core Interactions", "Settings & Preferences"`
	case 2:
		return "Level 2: Specific features or components.\n" +
			`Examples: If parent is "Onboarding Flow", children might be "Welcome Screen", "Account Creation", "Tutorial Walkthrough"`
	default:
		return fmt.Sprintf("Level %d: Very specific implementation details or sub-tasks.\n", level) +
			"Keep breaking down into concrete, actionable items."
	}
}
