// Package api is the HTTP surface of the content service.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"contentdesk/internal/activity"
	"contentdesk/internal/bookmarks"
	"contentdesk/internal/cache"
	"contentdesk/internal/catalog"
	"contentdesk/internal/config"
	"contentdesk/internal/models"
	"contentdesk/internal/poller"
	"contentdesk/internal/render"
	"contentdesk/internal/security"
	"contentdesk/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const sessionTTL = 30 * time.Minute

// NewsBackend is the read side of the PHP backend used by the news routes.
type NewsBackend interface {
	Categories(ctx context.Context) ([]models.Category, error)
	Subcategories(ctx context.Context, categoryID string) ([]models.Category, error)
	NewsByCategory(ctx context.Context, category string) ([]models.ContentItem, error)
	News(ctx context.Context, id string) (models.ContentItem, error)
}

// StatsProvider reports persistence statistics for the health endpoint.
type StatsProvider interface {
	Stats(ctx context.Context) (map[string]interface{}, error)
}

// Deps are the components a Server routes to. Storage and Gatherer are optional.
type Deps struct {
	Config    *config.Config
	Cache     *cache.Manager
	Catalog   *catalog.Catalog
	Bookmarks *bookmarks.Registry
	Backend   NewsBackend
	Tracker   *activity.Tracker
	Renderer  *render.Renderer
	Poller    *poller.Poller
	Storage   StatsProvider
	Gatherer  prometheus.Gatherer
	Logger    *zap.Logger
}

type Server struct {
	Deps
	router        *gin.Engine
	port          int
	swaggerServer *web.SwaggerServer
	fixtureServer *web.FixtureServer
	httpServer    *http.Server
}

func NewServer(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Renderer == nil {
		d.Renderer = render.New()
	}
	cfg := d.Config

	router := gin.New()
	router.Use(gin.Recovery())
	security.Setup(router, cfg.Security, d.Logger)

	s := &Server{
		Deps:          d,
		router:        router,
		port:          cfg.Port,
		swaggerServer: web.NewSwaggerServer(cfg.EnableSwagger),
		fixtureServer: web.NewFixtureServer(cfg.EnableFixtureFiles, cfg.FixturesDir, d.Logger),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)

	api := s.router.Group("/api/v1")
	api.Use(ownerMiddleware())
	{
		api.GET("/collections", s.getCollections)
		api.GET("/collections/:collection/items", s.getItems)
		api.GET("/collections/:collection/items/:id", s.getItem)
		api.GET("/collections/:collection/facets", s.getFacets)
		api.POST("/collections/:collection/reload", s.reloadCollection)

		api.GET("/bookmarks", s.getBookmarks)
		api.POST("/bookmarks/:id/toggle", s.toggleBookmark)

		news := api.Group("/news")
		news.GET("/categories", s.getNewsCategories)
		news.GET("/categories/:id/subcategories", s.getNewsSubcategories)
		news.GET("/by-category/:category", s.getNewsByCategory)
		news.GET("/:id", s.getNews)
		news.GET("/:id/activity", s.getNewsActivity)
		news.GET("/:id/comments", s.getNewsComments)
		news.POST("/:id/comments", s.postNewsComment)
		news.POST("/:id/like", s.likeNews)
		news.POST("/:id/share", s.shareNews)

		api.GET("/poller/status", s.getPollerStatus)
		api.POST("/poller/refresh/:target", s.forceRefresh)
	}

	if s.Config.EnableMetrics && s.Gatherer != nil {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{})))
	}

	s.swaggerServer.RegisterRoutes(s.router)
	s.fixtureServer.RegisterRoutes(s.router)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              ":" + strconv.Itoa(s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("http server listening", zap.Int("port", s.port))
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	body := gin.H{
		"status":        "healthy",
		"service":       "contentdesk",
		"poller_active": s.Poller != nil && s.Poller.IsPolling(),
		"cache_entries": s.Cache.Len(),
	}
	if s.Storage != nil {
		if stats, err := s.Storage.Stats(c.Request.Context()); err == nil {
			body["storage"] = stats
		} else {
			body["storage"] = "degraded"
		}
	}
	c.JSON(http.StatusOK, models.OK(body))
}

func (s *Server) getPollerStatus(c *gin.Context) {
	if s.Poller == nil {
		c.JSON(http.StatusOK, models.OK(gin.H{"is_polling": false, "tasks": gin.H{}}))
		return
	}
	c.JSON(http.StatusOK, models.OK(gin.H{
		"is_polling": s.Poller.IsPolling(),
		"tasks":      s.Poller.Status(),
	}))
}

func (s *Server) forceRefresh(c *gin.Context) {
	target := c.Param("target")
	if s.Poller == nil {
		c.JSON(http.StatusNotFound, models.Fail("refresh target not found"))
		return
	}

	err := s.Poller.ForceRefresh(c.Request.Context(), target)
	switch {
	case errors.Is(err, poller.ErrUnknownTask):
		c.JSON(http.StatusNotFound, models.Fail("refresh target not found"))
	case err != nil:
		c.JSON(http.StatusBadGateway, models.Fail("refresh failed"))
	default:
		c.JSON(http.StatusOK, models.OK(gin.H{"target": target, "refreshed": true}))
	}
}
