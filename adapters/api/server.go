package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"toxeval/adapters/excel"
	"toxeval/app"
	"toxeval/internal"
	"toxeval/internal/errors"
	"toxeval/ports"
)

// Server exposes the evaluation engine over HTTP. Persistence is optional:
// with a nil repository the server evaluates in memory and run lookups
// return 404.
type Server struct {
	router  *gin.Engine
	service *app.EvaluationService
	runs    ports.RunRepositoryPort
	logger  *internal.Logger
	http    *http.Server
}

// EvaluateRequest is the JSON body for an evaluation call
type EvaluateRequest struct {
	StudyID      string              `json:"study_id" binding:"required"`
	Measurements []excel.Measurement `json:"measurements" binding:"required"`
	Persist      bool                `json:"persist"`
}

// NewServer creates the API server
func NewServer(ginMode string, service *app.EvaluationService, runs ports.RunRepositoryPort) *Server {
	gin.SetMode(ginMode)
	s := &Server{
		router:  gin.Default(),
		service: service,
		runs:    runs,
		logger:  internal.DefaultLogger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	v1 := s.router.Group("/api/v1")
	v1.POST("/evaluate", s.handleEvaluate)
	v1.GET("/runs", s.handleListRuns)
	v1.GET("/runs/:id", s.handleGetRun)
	v1.GET("/runs/:id/report", s.handleGetReport)
}

// Run starts the server and blocks until the context is cancelled
func (s *Server) Run(ctx context.Context, port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening on :%s", port)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleEvaluate(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	raw := &excel.RawStudy{
		StudyID:      req.StudyID,
		Measurements: req.Measurements,
	}

	evaluation, err := s.service.EvaluateRaw(c.Request.Context(), raw)
	if err != nil {
		s.respondError(c, err)
		return
	}

	if req.Persist {
		if s.runs == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "persistence not configured"})
			return
		}
		if err := s.runs.SaveRun(c.Request.Context(), evaluation); err != nil {
			s.respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, evaluation)
}

func (s *Server) handleListRuns(c *gin.Context) {
	if s.runs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "persistence not configured"})
		return
	}
	runs, err := s.runs.ListRuns(c.Request.Context(), c.Query("study_id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) handleGetRun(c *gin.Context) {
	evaluation, ok := s.loadRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, evaluation)
}

func (s *Server) handleGetReport(c *gin.Context) {
	evaluation, ok := s.loadRun(c)
	if !ok {
		return
	}

	report := app.BuildReport(evaluation)
	if c.Query("format") == "html" {
		c.Data(http.StatusOK, "text/html; charset=utf-8", renderMarkdownHTML(report))
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report))
}

func (s *Server) loadRun(c *gin.Context) (*app.StudyEvaluation, bool) {
	if s.runs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "persistence not configured"})
		return nil, false
	}
	evaluation, err := s.runs.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return evaluation, true
}

func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeStudyMalformed, errors.CodeInvalidInput, errors.CodeValidationError:
		status = http.StatusUnprocessableEntity
	case errors.CodeNotFound:
		status = http.StatusNotFound
	}
	s.logger.Error("request failed: %v", err)
	c.JSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}

// renderMarkdownHTML converts a markdown report to standalone HTML
func renderMarkdownHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.CompletePage})
	return markdown.Render(doc, renderer)
}
