package category

import (
	"strings"

	"estimator-service/pkg/inflow"
)

// Uncategorized is returned when no ancestor matches a top-level bucket
const Uncategorized = "Uncategorized"

// topLevel is the fixed set of top-level catalog buckets
var topLevel = map[string]bool{
	"Account":        true,
	"Finished Goods": true,
	"Bulk":           true,
	"Ingredients":    true,
	"Materials":      true,
}

// ResolveTopLevel maps a leaf category to its top-level bucket by walking
// parent pointers. The visited set guards against cycles in malformed
// category data; a cycle resolves to Uncategorized instead of hanging.
func ResolveTopLevel(categoryID string, categories []inflow.Category) string {
	if categoryID == "" {
		return Uncategorized
	}

	byID := make(map[string]inflow.Category, len(categories))
	for _, c := range categories {
		byID[c.CategoryID] = c
	}

	visited := make(map[string]bool)
	current, ok := byID[categoryID]
	for ok {
		if visited[current.CategoryID] {
			return Uncategorized
		}
		visited[current.CategoryID] = true

		name := strings.TrimSpace(current.Name)
		if topLevel[name] {
			return name
		}
		if current.ParentCategoryID == "" {
			return Uncategorized
		}
		current, ok = byID[current.ParentCategoryID]
	}

	return Uncategorized
}
