package catalog

import (
	"sort"
	"strings"

	"contentdesk/internal/models"
)

type bucket struct {
	name    string
	display string
	count   int
}

// BuildCategoryFacets groups items by category, case-insensitively. Items
// without a category are left out of the facet set.
func BuildCategoryFacets(items []models.ContentItem) []models.Facet {
	return buildFacets(items, func(it models.ContentItem) (string, string) {
		return it.Category, models.DisplayName(it)
	})
}

// BuildSubcategoryFacets groups the items of category by subcategory.
func BuildSubcategoryFacets(items []models.ContentItem, category string) []models.Facet {
	scoped := filterLevel(items, category, categoryOf)
	return buildFacets(scoped, func(it models.ContentItem) (string, string) {
		return it.Subcategory, it.Subcategory
	})
}

// BuildSubsubcategoryFacets groups the items of category/subcategory by
// their third level.
func BuildSubsubcategoryFacets(items []models.ContentItem, category, subcategory string) []models.Facet {
	scoped := filterLevel(filterLevel(items, category, categoryOf), subcategory, subcategoryOf)
	return buildFacets(scoped, func(it models.ContentItem) (string, string) {
		return it.Subsubcategory, it.Subsubcategory
	})
}

func buildFacets(items []models.ContentItem, field func(models.ContentItem) (string, string)) []models.Facet {
	buckets := make(map[string]*bucket)
	for _, it := range items {
		name, display := field(it)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{name: name, display: display}
			buckets[key] = b
		}
		b.count++
	}

	facets := make([]models.Facet, 0, len(buckets))
	for _, b := range buckets {
		facets = append(facets, models.Facet{
			Category:    b.name,
			DisplayName: b.display,
			Count:       b.count,
		})
	}

	sort.Slice(facets, func(i, j int) bool {
		if facets[i].Count != facets[j].Count {
			return facets[i].Count > facets[j].Count
		}
		return strings.ToLower(facets[i].Category) < strings.ToLower(facets[j].Category)
	})
	return facets
}
