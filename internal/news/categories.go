package news

import "sync"

// GeneralCategory is the unfiltered feed. It is intentionally never sent
// upstream as a category parameter so NewsData.io returns top-of-feed
// results.
const GeneralCategory = "general"

// CategoryMapper translates internal category names into NewsData.io
// category codes.
type CategoryMapper struct {
	mapping map[string]string
}

// NewCategoryMapper creates a mapper over the given name-to-code table.
func NewCategoryMapper(mapping map[string]string) *CategoryMapper {
	return &CategoryMapper{mapping: mapping}
}

// Map returns the upstream category code for a category. The general
// category (and anything unrecognized, which validation rejects before it
// gets here) returns ("", false).
func (m *CategoryMapper) Map(category string) (string, bool) {
	if category == GeneralCategory {
		return "", false
	}
	code, ok := m.mapping[category]
	return code, ok
}

// Known reports whether the category is in the mapping table.
func (m *CategoryMapper) Known(category string) bool {
	_, ok := m.mapping[category]
	return ok
}

// Names returns all recognized category names.
func (m *CategoryMapper) Names() []string {
	names := make([]string, 0, len(m.mapping))
	for name := range m.mapping {
		names = append(names, name)
	}
	return names
}

// ContinuationTable tracks the upstream's opaque pagination token per
// category. At most one token is stored per category; a response without a
// continuation clears the slot. State is process-wide: it resets on restart
// and is not shared across instances.
type ContinuationTable struct {
	mu     sync.Mutex
	tokens map[string]string
}

// NewContinuationTable creates an empty continuation table.
func NewContinuationTable() *ContinuationTable {
	return &ContinuationTable{tokens: make(map[string]string)}
}

// Record stores the continuation token for a category. An empty token clears
// any stored value.
func (t *ContinuationTable) Record(category, token string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if token == "" {
		delete(t.tokens, category)
		return
	}
	t.tokens[category] = token
}

// Lookup returns the stored continuation token for a category, if any.
func (t *ContinuationTable) Lookup(category string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	token, ok := t.tokens[category]
	return token, ok
}
