package render

import (
	"fmt"
	"strings"
)

// Markdown renders r as a narrative document. Every top-level field becomes a
// second-level section whose heading is derived from the key.
func Markdown(title string, r Record) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", title)

	for _, f := range r {
		fmt.Fprintf(&b, "\n## %s\n\n", Heading(f.Key))
		if err := writeMarkdownValue(&b, f.Value, 0); err != nil {
			return "", fmt.Errorf("section %q: %w", f.Key, err)
		}
	}
	return b.String(), nil
}

// Heading turns a snake_case key into a title, e.g. "integration_points" into
// "Integration Points".
func Heading(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func writeMarkdownValue(b *strings.Builder, v any, depth int) error {
	indent := strings.Repeat("  ", depth)
	switch x := v.(type) {
	case string:
		if depth == 0 {
			b.WriteString(x)
			b.WriteString("\n")
			return nil
		}
		fmt.Fprintf(b, "%s- %s\n", indent, x)
	case int, bool:
		fmt.Fprintf(b, "%s%v\n", indent, x)
	case []string:
		for _, s := range x {
			fmt.Fprintf(b, "%s- %s\n", indent, s)
		}
	case Record:
		for _, f := range x {
			if err := writeMarkdownField(b, f, depth); err != nil {
				return err
			}
		}
	case []Record:
		for i, r := range x {
			if i > 0 && depth == 0 {
				b.WriteString("\n")
			}
			for j, f := range r {
				prefix, child := indent+"- ", depth+1
				if j > 0 {
					prefix, child = indent+"  - ", depth+2
				}
				if err := writeMarkdownEntry(b, prefix, f, child); err != nil {
					return err
				}
			}
		}
	case []any:
		for _, item := range x {
			if err := writeMarkdownValue(b, item, depth+1); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
	return nil
}

func writeMarkdownField(b *strings.Builder, f Field, depth int) error {
	return writeMarkdownEntry(b, strings.Repeat("  ", depth)+"- ", f, depth+1)
}

// writeMarkdownEntry writes "**Key**: value" for scalars and nests composite values.
func writeMarkdownEntry(b *strings.Builder, prefix string, f Field, depth int) error {
	switch x := f.Value.(type) {
	case string:
		fmt.Fprintf(b, "%s**%s**: %s\n", prefix, Heading(f.Key), inline(x))
		return nil
	case int, bool:
		fmt.Fprintf(b, "%s**%s**: %v\n", prefix, Heading(f.Key), x)
		return nil
	}
	fmt.Fprintf(b, "%s**%s**:\n", prefix, Heading(f.Key))
	return writeMarkdownValue(b, f.Value, depth)
}

// inline folds a multi-line string onto one line for list items.
func inline(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\n", " ")), " ")
}
