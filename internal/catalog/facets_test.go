package catalog

import (
	"strings"
	"testing"

	"contentdesk/internal/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func sampleItems() []models.ContentItem {
	return []models.ContentItem{
		{ID: "1", Category: "Sports", Subcategory: "Football", Subsubcategory: "Premier League"},
		{ID: "2", Category: "sports", Subcategory: "football", Subsubcategory: "La Liga"},
		{ID: "3", Category: "Sports", Subcategory: "Tennis"},
		{ID: "4", Category: "Politics", Subcategory: "Elections"},
		{ID: "5", Category: "POLITICS", Subcategory: "Parliament"},
		{ID: "6", Category: "Technology", CategoryName: "Tech & Science", Subcategory: "AI"},
		{ID: "7", Category: ""},
		{ID: "8", Category: "Business"},
	}
}

func TestBuildCategoryFacets(t *testing.T) {
	got := BuildCategoryFacets(sampleItems())

	want := []models.Facet{
		{Category: "Sports", DisplayName: "Sports", Count: 3},
		{Category: "Politics", DisplayName: "Politics", Count: 2},
		{Category: "Business", DisplayName: "Business", Count: 1},
		{Category: "Technology", DisplayName: "Tech & Science", Count: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildCategoryFacets() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildCategoryFacets_CountsSumAndNoDuplicates(t *testing.T) {
	items := sampleItems()
	facets := BuildCategoryFacets(items)

	sum := 0
	seen := map[string]bool{}
	for _, f := range facets {
		sum += f.Count
		key := strings.ToLower(f.Category)
		assert.False(t, seen[key], "duplicate facet %q", f.Category)
		seen[key] = true
	}

	empty := 0
	for _, it := range items {
		if it.Category == "" {
			empty++
		}
	}
	assert.Equal(t, len(items)-empty, sum)
}

func TestBuildCategoryFacets_Empty(t *testing.T) {
	facets := BuildCategoryFacets(nil)
	assert.NotNil(t, facets)
	assert.Empty(t, facets)
}

func TestBuildCategoryFacets_WhitespaceVariantsStayDistinct(t *testing.T) {
	items := []models.ContentItem{
		{ID: "1", Category: "Sports"},
		{ID: "2", Category: "Sports "},
	}
	assert.Len(t, BuildCategoryFacets(items), 2)
}

func TestBuildSubcategoryFacets(t *testing.T) {
	got := BuildSubcategoryFacets(sampleItems(), "SPORTS")

	want := []models.Facet{
		{Category: "Football", DisplayName: "Football", Count: 2},
		{Category: "Tennis", DisplayName: "Tennis", Count: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildSubcategoryFacets() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildSubcategoryFacets_AllCategory(t *testing.T) {
	got := BuildSubcategoryFacets(sampleItems(), "all")
	assert.Len(t, got, 5)
}

func TestBuildSubsubcategoryFacets(t *testing.T) {
	got := BuildSubsubcategoryFacets(sampleItems(), "sports", "FOOTBALL")

	want := []models.Facet{
		{Category: "La Liga", DisplayName: "La Liga", Count: 1},
		{Category: "Premier League", DisplayName: "Premier League", Count: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildSubsubcategoryFacets() mismatch (-want +got):\n%s", diff)
	}
}
