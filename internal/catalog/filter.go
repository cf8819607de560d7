package catalog

import (
	"strings"

	"contentdesk/internal/models"
)

func categoryOf(it models.ContentItem) string       { return it.Category }
func subcategoryOf(it models.ContentItem) string    { return it.Subcategory }
func subsubcategoryOf(it models.ContentItem) string { return it.Subsubcategory }

// MatchesCategory reports whether value equals want case-insensitively, or
// want is the "all" sentinel.
func MatchesCategory(value, want string) bool {
	return models.IsAll(want) || strings.EqualFold(value, want)
}

// ApplyFilter narrows items by category, then subcategory, then
// subsubcategory. Levels set to "all" are skipped; input order is kept.
func ApplyFilter(items []models.ContentItem, sel models.Selection) []models.ContentItem {
	out := filterLevel(items, sel.Category, categoryOf)
	out = filterLevel(out, sel.Subcategory, subcategoryOf)
	out = filterLevel(out, sel.Subsubcategory, subsubcategoryOf)
	return out
}

func filterLevel(items []models.ContentItem, want string, field func(models.ContentItem) string) []models.ContentItem {
	if models.IsAll(want) {
		return items
	}
	out := make([]models.ContentItem, 0, len(items))
	for _, it := range items {
		if strings.EqualFold(field(it), want) {
			out = append(out, it)
		}
	}
	return out
}
