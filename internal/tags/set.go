package tags

import "strings"

// Set is an ordered list of known tags without duplicates.
type Set struct {
	items []string
}

// NewSet builds a set keeping the first occurrence of each tag. Empty
// strings are dropped.
func NewSet(tags []string) *Set {
	seen := make(map[string]struct{}, len(tags))
	items := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		items = append(items, t)
	}
	return &Set{items: items}
}

// Len returns the number of tags.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Items returns a copy of the tags in insertion order.
func (s *Set) Items() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.items...)
}

// Match returns the tags starting with prefix, compared case-insensitively.
func (s *Set) Match(prefix string) []string {
	if s == nil {
		return nil
	}
	lower := strings.ToLower(prefix)
	var out []string
	for _, t := range s.items {
		if strings.HasPrefix(strings.ToLower(t), lower) {
			out = append(out, t)
		}
	}
	return out
}
