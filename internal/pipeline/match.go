package pipeline

import (
	"strings"

	"go-water-pipeline/internal/model"
)

// normalizeKey lower-cases a key and drops everything outside [a-z0-9]
func normalizeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range strings.ToLower(key) {
		if ('a' <= r && r <= 'z') || ('0' <= r && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FindKey returns the first entry of the mapping, in document order, whose
// normalized key contains any of the aliases
func FindKey(n *model.Node, aliases Aliases) (model.Entry, bool) {
	if n == nil || n.Kind != model.MappingNode {
		return model.Entry{}, false
	}
	for _, e := range n.Entries {
		if aliases.Contains(normalizeKey(e.Key)) {
			return e, true
		}
	}
	return model.Entry{}, false
}

// findExact returns the first entry whose normalized key equals name
func findExact(n *model.Node, name string) (model.Entry, bool) {
	if n == nil || n.Kind != model.MappingNode {
		return model.Entry{}, false
	}
	for _, e := range n.Entries {
		if normalizeKey(e.Key) == name {
			return e, true
		}
	}
	return model.Entry{}, false
}
