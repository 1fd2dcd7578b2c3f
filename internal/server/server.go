// Package server exposes the pipeline's read models over a small JSON
// HTTP API and hosts the same-origin Gerrit relay. All state lives in
// the cache stores; handlers only serialize.
package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nathannewyen/contribfeed/internal/cache"
	"github.com/nathannewyen/contribfeed/internal/heatmap"
	"github.com/nathannewyen/contribfeed/internal/model"
	"github.com/nathannewyen/contribfeed/internal/view"
)

// GerritRelay is the slice of the Gerrit client the relay endpoint needs.
type GerritRelay interface {
	FetchChanges(ctx context.Context) ([]model.Contribution, error)
}

// Options wires the server's stores and view constants.
type Options struct {
	Contributions *cache.Store[[]model.Contribution]
	Answers       *cache.Store[[]model.ProfileAnswer]
	User          *cache.Store[*model.ProfileUser]
	Projects      *cache.Store[[]model.Project]
	Gerrit        GerritRelay

	HeatmapWindowDays int
	HeatmapRows       int
	ItemsPerPage      int
}

// Server serves the contribution read models.
type Server struct {
	opts Options
}

// New creates a Server from wired options.
func New(opts Options) *Server {
	return &Server{opts: opts}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.handleHealth)

	api := r.Group("/api")
	{
		api.GET("/contributions", s.handleContributions)
		api.GET("/heatmap", s.handleHeatmap)
		api.GET("/answers", s.handleAnswers)
		api.GET("/stars", s.handleStars)
		api.GET("/gerrit", s.handleGerritRelay)
	}

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleContributions evaluates the filter/sort/page query parameters
// against the cached timeline and returns one page plus view metadata.
func (s *Server) handleContributions(c *gin.Context) {
	result := s.opts.Contributions.Get()

	query := view.NewQuery(s.opts.ItemsPerPage).
		WithFilter(view.Filter{
			Project: c.Query("project"),
			Source:  c.Query("source"),
			Status:  c.Query("status"),
			Date:    c.Query("date"),
		})
	if sortKey := c.Query("sort"); sortKey != "" {
		query = query.WithSort(view.SortKey(sortKey))
	}
	if pageStr := c.Query("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil {
			query = query.WithPage(page)
		}
	}

	page := query.Run(result.Data)

	c.JSON(http.StatusOK, gin.H{
		"contributions": page.Items,
		"page":          page.Page,
		"totalPages":    page.TotalPages,
		"totalItems":    page.TotalItems,
		"projects":      view.UniqueProjects(result.Data),
		"isLoading":     result.IsLoading,
		"isError":       result.IsError,
	})
}

func (s *Server) handleHeatmap(c *gin.Context) {
	result := s.opts.Contributions.Get()
	grid := heatmap.Build(result.Data, s.opts.HeatmapWindowDays, s.opts.HeatmapRows)

	c.JSON(http.StatusOK, gin.H{
		"columns":   grid.Columns,
		"total":     grid.Total,
		"isLoading": result.IsLoading,
		"isError":   result.IsError,
	})
}

func (s *Server) handleAnswers(c *gin.Context) {
	answers := s.opts.Answers.Get()
	user := s.opts.User.Get()

	c.JSON(http.StatusOK, gin.H{
		"answers":   answers.Data,
		"user":      user.Data,
		"isLoading": answers.IsLoading || user.IsLoading,
		"isError":   answers.IsError || user.IsError,
	})
}

func (s *Server) handleStars(c *gin.Context) {
	result := s.opts.Projects.Get()

	c.JSON(http.StatusOK, gin.H{
		"projects":  result.Data,
		"isLoading": result.IsLoading,
		"isError":   result.IsError,
	})
}

// handleGerritRelay proxies the Gerrit change search through this origin
// so a browser client never talks to the Gerrit host directly. The relay
// returns already-normalized contributions, not raw Gerrit JSON.
func (s *Server) handleGerritRelay(c *gin.Context) {
	contributions, err := s.opts.Gerrit.FetchChanges(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch Gerrit contributions"})
		return
	}
	c.JSON(http.StatusOK, contributions)
}
