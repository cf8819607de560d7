package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentItem_UnmarshalNumericID(t *testing.T) {
	var item ContentItem
	require.NoError(t, json.Unmarshal([]byte(`{"id": 42, "title": "Budget passes", "category": "Politics"}`), &item))

	assert.Equal(t, "42", item.ID)
	assert.Equal(t, "Budget passes", item.Title)
	assert.Equal(t, "Politics", item.Category)
}

func TestContentItem_UnmarshalStringID(t *testing.T) {
	var item ContentItem
	require.NoError(t, json.Unmarshal([]byte(`{"id": " a-17 "}`), &item))
	assert.Equal(t, "a-17", item.ID)
}

func TestContentItem_UnmarshalNullID(t *testing.T) {
	var item ContentItem
	require.NoError(t, json.Unmarshal([]byte(`{"id": null, "title": "x"}`), &item))
	assert.Empty(t, item.ID)
}

func TestContentItem_UnmarshalAlternateFields(t *testing.T) {
	payload := `{
		"id": "7",
		"category": "sports",
		"tname": "Sports & Games",
		"sub_category": "Football",
		"subsubCategory": "Premier League",
		"description": "Short summary",
		"image_url": "https://img.example/7.jpg",
		"date": "2024-03-01"
	}`

	var item ContentItem
	require.NoError(t, json.Unmarshal([]byte(payload), &item))

	assert.Equal(t, "Sports & Games", item.CategoryName)
	assert.Equal(t, "Football", item.Subcategory)
	assert.Equal(t, "Premier League", item.Subsubcategory)
	assert.Equal(t, "Short summary", item.Excerpt)
	assert.Equal(t, "https://img.example/7.jpg", item.Image)
	assert.Equal(t, "2024-03-01", item.CreatedAt)
}

func TestContentItem_CanonicalFieldsWin(t *testing.T) {
	payload := `{"excerpt": "canonical", "description": "legacy", "subcategory": "A", "subCategory": "B"}`

	var item ContentItem
	require.NoError(t, json.Unmarshal([]byte(payload), &item))

	assert.Equal(t, "canonical", item.Excerpt)
	assert.Equal(t, "A", item.Subcategory)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Sports & Games", DisplayName(ContentItem{Category: "sports", CategoryName: "Sports & Games"}))
	assert.Equal(t, "sports", DisplayName(ContentItem{Category: "sports"}))
}

func TestIsAll(t *testing.T) {
	assert.True(t, IsAll(""))
	assert.True(t, IsAll("all"))
	assert.True(t, IsAll("ALL"))
	assert.False(t, IsAll("Sports"))
	assert.False(t, IsAll(" all "))
}

func TestComment_UnmarshalBackendSpelling(t *testing.T) {
	var c Comment
	require.NoError(t, json.Unmarshal([]byte(`{"id": 3, "news_id": "42", "user_name": "ana", "comment": "Nice"}`), &c))

	assert.Equal(t, Comment{ID: "3", NewsID: "42", Author: "ana", Text: "Nice"}, c)
}

func TestCategory_Unmarshal(t *testing.T) {
	var cats []Category
	require.NoError(t, json.Unmarshal([]byte(`[{"id": 1, "name": "Sports"}, {"id": "2", "category": "Politics"}]`), &cats))

	require.Len(t, cats, 2)
	assert.Equal(t, Category{ID: "1", Name: "Sports"}, cats[0])
	assert.Equal(t, Category{ID: "2", Name: "Politics"}, cats[1])
}

func TestResponseHelpers(t *testing.T) {
	ok := OK([]string{"a"})
	assert.True(t, ok.Success)
	assert.Empty(t, ok.Error)

	fail := Fail("news item not found")
	assert.False(t, fail.Success)
	assert.Nil(t, fail.Data)

	raw, err := json.Marshal(fail)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success": false, "error": "news item not found"}`, string(raw))
}
