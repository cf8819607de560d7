package web

import (
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"contentdesk/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FixtureServer exposes the raw JSON fixture files read-only, the way the
// original site fetched them from its data/ folder.
type FixtureServer struct {
	enabled bool
	dir     string
	logger  *zap.Logger
}

func NewFixtureServer(enabled bool, dir string, logger *zap.Logger) *FixtureServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FixtureServer{enabled: enabled, dir: dir, logger: logger.Named("fixtures")}
}

func (s *FixtureServer) RegisterRoutes(router gin.IRouter) {
	if !s.enabled {
		return
	}
	s.logger.Info("serving fixture files", zap.String("dir", s.dir))
	router.GET("/fixtures", s.index)
	router.GET("/fixtures/:name", s.serve)
}

// Files lists the .json files in the fixture directory, sorted.
func (s *FixtureServer) Files() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	files := []string{}
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func (s *FixtureServer) index(c *gin.Context) {
	files, err := s.Files()
	if err != nil {
		s.logger.Warn("fixture directory unreadable", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.Fail("fixtures unavailable"))
		return
	}
	c.JSON(http.StatusOK, models.OK(files))
}

func (s *FixtureServer) serve(c *gin.Context) {
	name := c.Param("name")
	if name != filepath.Base(name) || !strings.EqualFold(filepath.Ext(name), ".json") {
		c.JSON(http.StatusNotFound, models.Fail("fixture not found"))
		return
	}
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, models.Fail("fixture not found"))
		return
	}
	c.Header("Cache-Control", "public, max-age=300")
	c.File(path)
}
