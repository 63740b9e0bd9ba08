package news

import (
	"fmt"
	"sort"
	"strings"
)

// Validator checks news query parameters before they reach the service. The
// service itself assumes well-formed inputs.
type Validator struct {
	mapper          *CategoryMapper
	maxLimit        int
	maxSearchLength int
}

// NewValidator creates a validator over the category table and limits.
func NewValidator(mapper *CategoryMapper, maxLimit, maxSearchLength int) *Validator {
	return &Validator{
		mapper:          mapper,
		maxLimit:        maxLimit,
		maxSearchLength: maxSearchLength,
	}
}

// ValidateNewsQuery checks the feed query parameters.
func (v *Validator) ValidateNewsQuery(category string, limit int) []string {
	var problems []string

	if !v.mapper.Known(category) {
		problems = append(problems, v.invalidCategory())
	}

	if limit < 1 || limit > v.maxLimit {
		problems = append(problems, fmt.Sprintf("Limit must be a number between 1 and %d", v.maxLimit))
	}

	return problems
}

// ValidateSearchQuery checks the search query parameters.
func (v *Validator) ValidateSearchQuery(query, category string, limit int) []string {
	var problems []string

	trimmed := strings.TrimSpace(query)
	switch {
	case trimmed == "":
		problems = append(problems, "Search query is required")
	case len(trimmed) < 2:
		problems = append(problems, "Search query must be at least 2 characters long")
	case len(query) > v.maxSearchLength:
		problems = append(problems, fmt.Sprintf("Search query cannot exceed %d characters", v.maxSearchLength))
	}

	if !v.mapper.Known(category) {
		problems = append(problems, v.invalidCategory())
	}

	if limit < 1 || limit > v.maxLimit {
		problems = append(problems, fmt.Sprintf("Limit must be a number between 1 and %d", v.maxLimit))
	}

	return problems
}

// SanitizeSearchQuery strips angle brackets and truncates over-long queries.
func (v *Validator) SanitizeSearchQuery(query string) string {
	query = strings.TrimSpace(query)
	query = strings.NewReplacer("<", "", ">", "").Replace(query)
	if len(query) > v.maxSearchLength {
		query = query[:v.maxSearchLength]
	}
	return query
}

func (v *Validator) invalidCategory() string {
	names := v.mapper.Names()
	sort.Strings(names)
	return "Invalid category. Valid categories are: " + strings.Join(names, ", ")
}
