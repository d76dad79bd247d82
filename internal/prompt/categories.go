package prompt

import (
	"sort"
	"strings"
)

// CompliantCategory is the implicit category for emails that violate no
// policy. It is always part of the enumerated set.
const CompliantCategory = "compliant"

// CategorySet is the enumerated set of compliance categories the parser
// accepts. Lookup is case-insensitive; the canonical spelling is the one
// supplied at construction.
type CategorySet struct {
	canonical map[string]string
	ordered   []string
}

// NewCategorySet builds a category set from the configured category list.
// The compliant category is added if missing.
func NewCategorySet(categories []string) *CategorySet {
	s := &CategorySet{canonical: make(map[string]string, len(categories)+1)}
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		key := strings.ToLower(c)
		if _, ok := s.canonical[key]; ok {
			continue
		}
		s.canonical[key] = c
		s.ordered = append(s.ordered, c)
	}
	if _, ok := s.canonical[CompliantCategory]; !ok {
		s.canonical[CompliantCategory] = CompliantCategory
		s.ordered = append(s.ordered, CompliantCategory)
	}
	return s
}

// Canonical resolves a raw category value to its canonical spelling
func (s *CategorySet) Canonical(raw string) (string, bool) {
	c, ok := s.canonical[strings.ToLower(strings.TrimSpace(raw))]
	return c, ok
}

// List returns the categories in a deterministic order
func (s *CategorySet) List() []string {
	out := make([]string, len(s.ordered))
	copy(out, s.ordered)
	sort.Strings(out)
	return out
}

// Bullets renders the set as a bullet list for the prompt
func (s *CategorySet) Bullets() string {
	var b strings.Builder
	for i, c := range s.ordered {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + c)
	}
	return b.String()
}
