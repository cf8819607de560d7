package catalog

import (
	"strings"
	"testing"

	"contentdesk/internal/models"

	"github.com/stretchr/testify/assert"
)

func ids(items []models.ContentItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestApplyFilter_Category(t *testing.T) {
	items := sampleItems()

	for _, category := range []string{"sports", "Politics", "technology", "missing"} {
		got := ApplyFilter(items, models.Selection{Category: category})
		for _, it := range got {
			assert.True(t, strings.EqualFold(it.Category, category), "item %s leaked into %s", it.ID, category)
		}
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids(ApplyFilter(items, models.Selection{Category: "SPORTS"})))
}

func TestApplyFilter_AllReturnsEverything(t *testing.T) {
	items := sampleItems()

	assert.Len(t, ApplyFilter(items, models.Selection{Category: "all"}), len(items))
	assert.Len(t, ApplyFilter(items, models.Selection{}), len(items))
	assert.Len(t, ApplyFilter(items, models.Selection{Category: "All", Subcategory: "ALL"}), len(items))
}

func TestApplyFilter_LevelsAreANDed(t *testing.T) {
	items := sampleItems()

	got := ApplyFilter(items, models.Selection{Category: "sports", Subcategory: "football", Subsubcategory: "la liga"})
	assert.Equal(t, []string{"2"}, ids(got))

	got = ApplyFilter(items, models.Selection{Category: "politics", Subcategory: "football"})
	assert.Empty(t, got)
}

func TestApplyFilter_SubcategoryWithAllCategory(t *testing.T) {
	got := ApplyFilter(sampleItems(), models.Selection{Category: "all", Subcategory: "Football"})
	assert.Equal(t, []string{"1", "2"}, ids(got))
}

func TestMatchesCategory(t *testing.T) {
	assert.True(t, MatchesCategory("Sports", "sports"))
	assert.True(t, MatchesCategory("Sports", "all"))
	assert.True(t, MatchesCategory("", ""))
	assert.False(t, MatchesCategory("Sports", "Politics"))
}
