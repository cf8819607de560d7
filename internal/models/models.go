package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ContentItem is the single normalized shape for news entries, articles,
// job listings, general posts and trend entries.
type ContentItem struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Category       string `json:"category"`
	CategoryName   string `json:"category_name,omitempty"`
	Subcategory    string `json:"subcategory,omitempty"`
	Subsubcategory string `json:"subsubcategory,omitempty"`
	Excerpt        string `json:"excerpt"`
	Content        string `json:"content"`
	Image          string `json:"image"`
	Author         string `json:"author"`
	CreatedAt      string `json:"created_at"`
	Link           string `json:"link,omitempty"`
	Source         string `json:"source,omitempty"`
	Language       string `json:"language,omitempty"`
}

// rawItem accepts every field spelling found in fixtures and backend payloads.
type rawItem struct {
	ID               json.RawMessage `json:"id"`
	Title            string          `json:"title"`
	Category         string          `json:"category"`
	CategoryName     string          `json:"category_name"`
	TName            string          `json:"tname"`
	Subcategory      string          `json:"subcategory"`
	SubCategorySnake string          `json:"sub_category"`
	SubCategoryCamel string          `json:"subCategory"`
	Subsubcategory   string          `json:"subsubcategory"`
	SubsubSnake      string          `json:"subsub_category"`
	SubsubCamel      string          `json:"subsubCategory"`
	Excerpt          string          `json:"excerpt"`
	Description      string          `json:"description"`
	Content          string          `json:"content"`
	Image            string          `json:"image"`
	ImageURLSnake    string          `json:"image_url"`
	ImageURLCamel    string          `json:"imageUrl"`
	Author           string          `json:"author"`
	CreatedAt        string          `json:"created_at"`
	Date             string          `json:"date"`
	Link             string          `json:"link"`
	Source           string          `json:"source"`
	Language         string          `json:"language"`
}

// UnmarshalJSON normalizes numeric or string ids and the alternate field
// names into the canonical fields.
func (c *ContentItem) UnmarshalJSON(data []byte) error {
	var raw rawItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = ContentItem{
		ID:             normalizeID(raw.ID),
		Title:          raw.Title,
		Category:       raw.Category,
		CategoryName:   firstNonEmpty(raw.CategoryName, raw.TName),
		Subcategory:    firstNonEmpty(raw.Subcategory, raw.SubCategorySnake, raw.SubCategoryCamel),
		Subsubcategory: firstNonEmpty(raw.Subsubcategory, raw.SubsubSnake, raw.SubsubCamel),
		Excerpt:        firstNonEmpty(raw.Excerpt, raw.Description),
		Content:        raw.Content,
		Image:          firstNonEmpty(raw.Image, raw.ImageURLSnake, raw.ImageURLCamel),
		Author:         raw.Author,
		CreatedAt:      firstNonEmpty(raw.CreatedAt, raw.Date),
		Link:           raw.Link,
		Source:         raw.Source,
		Language:       raw.Language,
	}
	return nil
}

func normalizeID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// DisplayName is the one place a category's human label is resolved.
func DisplayName(item ContentItem) string {
	if item.CategoryName != "" {
		return item.CategoryName
	}
	return item.Category
}

// Facet is a derived category grouping with its item count.
type Facet struct {
	Category    string `json:"category"`
	DisplayName string `json:"displayName"`
	Count       int    `json:"count"`
}

// AllSentinel selects every value of a level.
const AllSentinel = "all"

// Selection holds the active category path. Empty or "all" levels do not
// constrain the result.
type Selection struct {
	Category       string `json:"category"`
	Subcategory    string `json:"subcategory"`
	Subsubcategory string `json:"subsubcategory"`
}

// IsAll reports whether v is the "no constraint" value.
func IsAll(v string) bool {
	return v == "" || strings.EqualFold(v, AllSentinel)
}

// Comment is a reader comment attached to a news item.
type Comment struct {
	ID        string `json:"id"`
	NewsID    string `json:"news_id"`
	Author    string `json:"author"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

type rawComment struct {
	ID        json.RawMessage `json:"id"`
	NewsID    json.RawMessage `json:"news_id"`
	Author    string          `json:"author"`
	UserName  string          `json:"user_name"`
	Name      string          `json:"name"`
	Text      string          `json:"text"`
	Comment   string          `json:"comment"`
	CreatedAt string          `json:"created_at"`
}

// UnmarshalJSON accepts the backend's comment spellings.
func (c *Comment) UnmarshalJSON(data []byte) error {
	var raw rawComment
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Comment{
		ID:        normalizeID(raw.ID),
		NewsID:    normalizeID(raw.NewsID),
		Author:    firstNonEmpty(raw.Author, raw.UserName, raw.Name),
		Text:      firstNonEmpty(raw.Text, raw.Comment),
		CreatedAt: raw.CreatedAt,
	}
	return nil
}

// ActivityKind names a recordable reader action.
type ActivityKind string

const (
	ActivityView    ActivityKind = "view"
	ActivityLike    ActivityKind = "like"
	ActivityShare   ActivityKind = "share"
	ActivityComment ActivityKind = "comment"
)

// ActivitySummary holds the counters shown on a detail panel.
type ActivitySummary struct {
	NewsID   string `json:"news_id"`
	Views    int    `json:"views"`
	Likes    int    `json:"likes"`
	Comments int    `json:"comments"`
	Shares   int    `json:"shares"`
}

// Category is a backend category record.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

type rawCategory struct {
	ID   json.RawMessage `json:"id"`
	Name string          `json:"name"`
	Cat  string          `json:"category"`
	Slug string          `json:"slug"`
}

// UnmarshalJSON accepts numeric ids and the "category" name spelling.
func (c *Category) UnmarshalJSON(data []byte) error {
	var raw rawCategory
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Category{
		ID:   normalizeID(raw.ID),
		Name: firstNonEmpty(raw.Name, raw.Cat),
		Slug: raw.Slug,
	}
	return nil
}

// Response is the envelope every endpoint of this service answers with.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// OK wraps data in a successful envelope.
func OK(data interface{}) Response {
	return Response{Success: true, Data: data}
}

// Fail builds an error envelope.
func Fail(msg string) Response {
	return Response{Success: false, Error: msg}
}
