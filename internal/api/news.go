package api

import (
	"context"
	"errors"
	"net/http"

	"contentdesk/internal/activity"
	"contentdesk/internal/backend"
	"contentdesk/internal/cache"
	"contentdesk/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type commentRequest struct {
	Author   string `json:"author"`
	UserName string `json:"user_name"`
	Text     string `json:"text"`
	Comment  string `json:"comment"`
}

type newsDetail struct {
	itemDetail
	Counters models.ActivitySummary `json:"counters"`
	Comments []models.Comment       `json:"comments"`
}

// backendError maps backend failures onto responses. Transport details stay
// in the log.
func (s *Server) backendError(c *gin.Context, err error) {
	if errors.Is(err, backend.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.Fail("news item not found"))
		return
	}
	s.Logger.Warn("backend request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadGateway, models.Fail("news service unavailable, please try again later"))
}

func sessionKey(owner, newsID string) string {
	return cache.Key(cache.PrefixSessions, owner, newsID)
}

// session returns the owner's session for newsID, attaching one without a
// view record when none is cached.
func (s *Server) session(c *gin.Context, newsID string) *activity.Session {
	v, _ := s.Cache.GetOrLoad(sessionKey(ownerOf(c), newsID), sessionTTL, func() (interface{}, error) {
		return s.Tracker.Attach(newsID), nil
	})
	return v.(*activity.Session)
}

func (s *Server) getNewsCategories(c *gin.Context) {
	cats, err := s.Backend.Categories(c.Request.Context())
	if err != nil {
		s.backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(cats))
}

func (s *Server) getNewsSubcategories(c *gin.Context) {
	subs, err := s.Backend.Subcategories(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(subs))
}

func (s *Server) getNewsByCategory(c *gin.Context) {
	items, err := s.Backend.NewsByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		s.backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(items))
}

// getNews mounts a detail session, which records one view, and returns the
// item with its counters and comments. Counter or comment failures leave
// those parts empty.
func (s *Server) getNews(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	item, err := s.Backend.News(ctx, id)
	if err != nil {
		s.backendError(c, err)
		return
	}

	sess := s.Tracker.Mount(ctx, id)
	s.Cache.Set(sessionKey(ownerOf(c), id), sess, sessionTTL)

	counters, err := s.Tracker.Counters(ctx, id)
	if err != nil {
		s.Logger.Warn("counters unavailable", zap.String("news_id", id), zap.Error(err))
	}
	comments, err := sess.Comments(ctx)
	if err != nil {
		s.Logger.Warn("comments unavailable", zap.String("news_id", id), zap.Error(err))
		comments = []models.Comment{}
	}

	c.JSON(http.StatusOK, models.OK(newsDetail{
		itemDetail: s.detail(c, item),
		Counters:   counters,
		Comments:   comments,
	}))
}

func (s *Server) getNewsActivity(c *gin.Context) {
	counters, err := s.Tracker.Counters(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(counters))
}

func (s *Server) getNewsComments(c *gin.Context) {
	comments, err := s.session(c, c.Param("id")).Comments(c.Request.Context())
	if err != nil {
		s.backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(comments))
}

func (s *Server) postNewsComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid comment payload"))
		return
	}
	author := req.Author
	if author == "" {
		author = req.UserName
	}
	text := req.Text
	if text == "" {
		text = req.Comment
	}

	sess := s.session(c, c.Param("id"))
	comments, err := sess.SubmitComment(c.Request.Context(), author, text)
	switch {
	case errors.Is(err, activity.ErrEmptyComment):
		c.JSON(http.StatusBadRequest, models.Fail("comment text is required"))
	case errors.Is(err, activity.ErrSubmitting):
		c.JSON(http.StatusConflict, models.Fail("a comment is already being submitted"))
	case err != nil:
		c.JSON(http.StatusBadGateway, models.Fail("could not submit comment, please try again"))
	default:
		c.JSON(http.StatusCreated, models.OK(comments))
	}
}

func (s *Server) likeNews(c *gin.Context) {
	s.react(c, (*activity.Session).Like)
}

func (s *Server) shareNews(c *gin.Context) {
	s.react(c, (*activity.Session).Share)
}

func (s *Server) react(c *gin.Context, action func(*activity.Session, context.Context) error) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := action(s.session(c, id), ctx); err != nil {
		s.backendError(c, err)
		return
	}
	counters, err := s.Tracker.Counters(ctx, id)
	if err != nil {
		s.Logger.Warn("counters unavailable", zap.String("news_id", id), zap.Error(err))
	}
	c.JSON(http.StatusOK, models.OK(counters))
}
