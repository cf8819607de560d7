package api

import (
	"errors"
	"net/http"
	"strconv"

	"contentdesk/internal/browse"
	"contentdesk/internal/catalog"
	"contentdesk/internal/models"
	"contentdesk/internal/odata"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ItemsPage is the body of the items endpoint. Visible is the number of
// rendered items; a client sends it back, or counts load-more clicks, to
// keep its window.
type ItemsPage struct {
	Items     []models.ContentItem `json:"items"`
	Total     int                  `json:"total"`
	Visible   int                  `json:"visible"`
	HasMore   bool                 `json:"has_more"`
	Selection models.Selection     `json:"selection"`
}

type collectionInfo struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type itemDetail struct {
	models.ContentItem
	ContentHTML string `json:"content_html"`
	Bookmarked  bool   `json:"bookmarked"`
}

func selectionFrom(c *gin.Context) models.Selection {
	return models.Selection{
		Category:       c.Query("category"),
		Subcategory:    c.Query("subcategory"),
		Subsubcategory: c.Query("subsubcategory"),
	}
}

// previousSelection reads the prev_* parameters a client sends with its
// visible count after changing the selection; without them the selection is
// unchanged.
func previousSelection(c *gin.Context, current models.Selection) models.Selection {
	prev, ok := models.Selection{}, false
	for key, dst := range map[string]*string{
		"prev_category":       &prev.Category,
		"prev_subcategory":    &prev.Subcategory,
		"prev_subsubcategory": &prev.Subsubcategory,
	} {
		if v, found := c.GetQuery(key); found {
			*dst, ok = v, true
		}
	}
	if !ok {
		return current
	}
	return prev
}

func queryInt(c *gin.Context, key string) (int, bool) {
	v := c.Query(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// collectionError maps catalog errors onto responses.
func (s *Server) collectionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrCollectionNotFound):
		c.JSON(http.StatusNotFound, models.Fail("collection not found"))
	case errors.Is(err, catalog.ErrItemNotFound):
		c.JSON(http.StatusNotFound, models.Fail("item not found"))
	default:
		s.Logger.Error("collection load failed", zap.String("collection", c.Param("collection")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.Fail("collection unavailable"))
	}
}

func (s *Server) getCollections(c *gin.Context) {
	names := s.Catalog.Collections()
	out := make([]collectionInfo, 0, len(names))
	for _, name := range names {
		items, err := s.Catalog.Items(c.Request.Context(), name)
		if err != nil {
			s.Logger.Warn("collection unavailable", zap.String("collection", name), zap.Error(err))
			continue
		}
		out = append(out, collectionInfo{Name: name, Count: len(items)})
	}
	c.JSON(http.StatusOK, models.OK(out))
}

func (s *Server) getItems(c *gin.Context) {
	name := c.Param("collection")
	items, err := s.Catalog.Items(c.Request.Context(), name)
	if err != nil {
		s.collectionError(c, err)
		return
	}

	if filter := c.Query("$filter"); filter != "" {
		parser := odata.NewFilterParser()
		expr, err := parser.Parse(filter)
		if err == nil {
			items, err = parser.Apply(expr, items)
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, models.Fail(err.Error()))
			return
		}
	}

	pg := s.Config.Pagination
	sel := selectionFrom(c)
	var page *browse.Page
	if visible, ok := queryInt(c, "visible"); ok {
		page = browse.Resume(items, previousSelection(c, sel), sel, pg.InitialVisible, pg.LoadMoreStep, visible, pg.PreserveOnFilter)
	} else {
		clicks, _ := queryInt(c, "clicks")
		page = browse.Replay(items, sel, pg.InitialVisible, pg.LoadMoreStep, clicks)
	}

	rendered := page.Rendered()
	c.JSON(http.StatusOK, models.OK(ItemsPage{
		Items:     rendered,
		Total:     len(page.Filtered()),
		Visible:   len(rendered),
		HasMore:   page.ShowLoadMore(),
		Selection: page.Selection(),
	}))
}

func (s *Server) getFacets(c *gin.Context) {
	items, err := s.Catalog.Items(c.Request.Context(), c.Param("collection"))
	if err != nil {
		s.collectionError(c, err)
		return
	}

	page := browse.NewPage(items, s.Config.Pagination.InitialVisible, s.Config.Pagination.LoadMoreStep)
	page.Select(selectionFrom(c))

	body := gin.H{"categories": page.Facets()}
	if subs := page.SubcategoryFacets(); subs != nil {
		body["subcategories"] = subs
	}
	if subsubs := page.SubsubcategoryFacets(); subsubs != nil {
		body["subsubcategories"] = subsubs
	}
	c.JSON(http.StatusOK, models.OK(body))
}

func (s *Server) getItem(c *gin.Context) {
	item, err := s.Catalog.Item(c.Request.Context(), c.Param("collection"), c.Param("id"))
	if err != nil {
		s.collectionError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(s.detail(c, item)))
}

func (s *Server) detail(c *gin.Context, item models.ContentItem) itemDetail {
	html, err := s.Renderer.HTML(item.Content)
	if err != nil {
		s.Logger.Warn("content render failed", zap.String("id", item.ID), zap.Error(err))
	}
	d := itemDetail{ContentItem: item, ContentHTML: html}
	if s.Bookmarks != nil && ownerKnown(c) {
		d.Bookmarked = s.Bookmarks.For(c.Request.Context(), ownerOf(c)).Contains(item.ID)
	}
	return d
}

func (s *Server) reloadCollection(c *gin.Context) {
	name := c.Param("collection")
	n, err := s.Catalog.Reload(c.Request.Context(), name)
	if err != nil {
		s.collectionError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(collectionInfo{Name: name, Count: n}))
}

func (s *Server) getBookmarks(c *gin.Context) {
	ids := []string{}
	if ownerKnown(c) {
		ids = s.Bookmarks.For(c.Request.Context(), ownerOf(c)).IDs()
	}
	c.JSON(http.StatusOK, models.OK(gin.H{
		"key": s.Bookmarks.Key(),
		"ids": ids,
	}))
}

func (s *Server) toggleBookmark(c *gin.Context) {
	id := c.Param("id")
	saved := s.Bookmarks.For(c.Request.Context(), ownerOf(c)).Toggle(c.Request.Context(), id)
	c.JSON(http.StatusOK, models.OK(gin.H{"id": id, "saved": saved}))
}
