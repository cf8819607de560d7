package browse

import (
	"strings"

	"contentdesk/internal/catalog"
	"contentdesk/internal/models"
)

// Page combines a full item list, the selected category path and the
// visible window over the filtered result.
type Page struct {
	items     []models.ContentItem
	selection models.Selection
	window    *Window

	// PreserveWindow keeps the cursor when the selection changes.
	PreserveWindow bool
}

func NewPage(items []models.ContentItem, initial, increment int) *Page {
	return &Page{
		items:  items,
		window: NewWindow(initial, increment),
	}
}

// Selection returns the active selection.
func (p *Page) Selection() models.Selection { return p.selection }

// Window exposes the visible window.
func (p *Page) Window() *Window { return p.window }

// SetCategory selects a category and clears the levels below it.
func (p *Page) SetCategory(category string) {
	p.selection = models.Selection{Category: category}
	p.selectionChanged()
}

// SetSubcategory selects a subcategory and clears the level below it.
func (p *Page) SetSubcategory(subcategory string) {
	p.selection.Subcategory = subcategory
	p.selection.Subsubcategory = ""
	p.selectionChanged()
}

func (p *Page) SetSubsubcategory(subsubcategory string) {
	p.selection.Subsubcategory = subsubcategory
	p.selectionChanged()
}

// Select applies a whole selection path at once, top level first, so lower
// levels only survive alongside the parent they were sent with.
func (p *Page) Select(sel models.Selection) {
	p.SetCategory(sel.Category)
	if sel.Subcategory != "" {
		p.SetSubcategory(sel.Subcategory)
	}
	if sel.Subsubcategory != "" {
		p.SetSubsubcategory(sel.Subsubcategory)
	}
}

func (p *Page) selectionChanged() {
	if !p.PreserveWindow {
		p.window.Reset()
	}
}

// Filtered is the full list narrowed by the selection.
func (p *Page) Filtered() []models.ContentItem {
	return catalog.ApplyFilter(p.items, p.selection)
}

// Rendered is the visible prefix of Filtered.
func (p *Page) Rendered() []models.ContentItem {
	return p.window.Slice(p.Filtered())
}

// LoadMore extends the window over the filtered list.
func (p *Page) LoadMore() int {
	return p.window.LoadMore(len(p.Filtered()))
}

// ShowLoadMore reports whether more filtered items remain hidden.
func (p *Page) ShowLoadMore() bool {
	return p.window.HasMore(len(p.Filtered()))
}

// Facets are the category facets of the full list.
func (p *Page) Facets() []models.Facet {
	return catalog.BuildCategoryFacets(p.items)
}

// SubcategoryFacets are scoped to the selected category; nil when none is selected.
func (p *Page) SubcategoryFacets() []models.Facet {
	if models.IsAll(p.selection.Category) {
		return nil
	}
	return catalog.BuildSubcategoryFacets(p.items, p.selection.Category)
}

// SubsubcategoryFacets are scoped to the selected category and subcategory.
func (p *Page) SubsubcategoryFacets() []models.Facet {
	if models.IsAll(p.selection.Category) || models.IsAll(p.selection.Subcategory) {
		return nil
	}
	return catalog.BuildSubsubcategoryFacets(p.items, p.selection.Category, p.selection.Subcategory)
}

// Replay rebuilds a page from stateless request parameters: the selection
// and the number of load-more clicks made since it was applied.
func Replay(items []models.ContentItem, sel models.Selection, initial, increment, clicks int) *Page {
	p := NewPage(items, initial, increment)
	p.Select(sel)
	for i := 0; i < clicks; i++ {
		if !p.ShowLoadMore() {
			break
		}
		p.LoadMore()
	}
	return p
}

// Resume rebuilds the page a client was viewing, prev with visible items
// shown, and moves it to sel. A changed selection resets the window unless
// preserve is set. Lower levels sel still carries over from prev after their
// parent changed are dropped.
func Resume(items []models.ContentItem, prev, sel models.Selection, initial, increment, visible int, preserve bool) *Page {
	p := NewPage(items, initial, increment)
	p.Select(prev)
	p.window.SetVisible(visible)
	p.PreserveWindow = preserve
	sel = dropCarriedOver(prev, sel)
	if sel != prev {
		p.Select(sel)
	}
	return p
}

func dropCarriedOver(prev, sel models.Selection) models.Selection {
	if !strings.EqualFold(sel.Category, prev.Category) {
		if prev.Subcategory != "" && strings.EqualFold(sel.Subcategory, prev.Subcategory) {
			sel.Subcategory = ""
			sel.Subsubcategory = ""
		}
	}
	if !strings.EqualFold(sel.Subcategory, prev.Subcategory) {
		if prev.Subsubcategory != "" && strings.EqualFold(sel.Subsubcategory, prev.Subsubcategory) {
			sel.Subsubcategory = ""
		}
	}
	return sel
}
