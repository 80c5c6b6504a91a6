package types

import "strings"

// Scoped labels namespace a label by a "Scope::" prefix, e.g. "Priority::Normal"
// belongs to the Priority scope. Both GitLab scoped labels and the plain
// naming convention used on GitHub follow this shape.
const scopeSeparator = "::"

// Scope returns the scope prefix of a scoped label, or "" for unscoped labels.
// "Priority::Normal" → "Priority", "bug" → "".
func (l Label) Scope() string {
	idx := strings.Index(l.Name, scopeSeparator)
	if idx <= 0 {
		return ""
	}
	return l.Name[:idx]
}

// LabelNames returns the names of the given labels, in order.
func LabelNames(labels []Label) []string {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Name
	}
	return names
}
