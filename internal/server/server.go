package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/brightarrow/imagescout/internal/config"
	"github.com/brightarrow/imagescout/internal/llm"
	"github.com/brightarrow/imagescout/internal/research"
	"github.com/brightarrow/imagescout/internal/tools"
)

type Server struct {
	Runner *research.Runner
	Log    *zap.Logger
}

// New wires the research pipeline from config and returns the HTTP server.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Server, error) {
	searchLLM, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}
	validationLLM, err := llm.NewClient(ctx, cfg.Validation)
	if err != nil {
		return nil, err
	}

	pool := tools.NewPool(tools.NewProviderFactory(cfg, searchLLM), log)
	runner := research.NewRunner(cfg, searchLLM, validationLLM, pool, log)

	return &Server{Runner: runner, Log: log}, nil
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", s.Health)
	r.POST("/research", s.Research)
	r.POST("/research/batch", s.ResearchBatch)

	return r
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type ResearchRequest struct {
	Barcode string `json:"barcode"`
	SKU     string `json:"sku"`
	Title   string `json:"title"`
}

func (s *Server) Research(c *gin.Context) {
	var req ResearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	res, err := s.Runner.RunSingle(c.Request.Context(), research.ProductQuery{
		Barcode: req.Barcode,
		SKU:     req.SKU,
		Title:   req.Title,
	})
	if err != nil {
		if err == research.ErrNoIdentifiers {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.Log.Error("research run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to research product"})
		return
	}

	c.JSON(http.StatusOK, res)
}

type BatchRequest struct {
	Products    []ResearchRequest `json:"products"`
	Concurrency int               `json:"concurrency"`
	OutputPath  string            `json:"output_path"`
}

func (s *Server) ResearchBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	products := make([]research.ProductQuery, len(req.Products))
	for i, p := range req.Products {
		products[i] = research.ProductQuery{Barcode: p.Barcode, SKU: p.SKU, Title: p.Title}
	}

	results, path, err := s.Runner.RunBatch(c.Request.Context(), products, req.Concurrency, req.OutputPath)
	if err != nil {
		s.Log.Error("batch run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run batch"})
		return
	}

	failed := 0
	for _, res := range results {
		if res.Failed() {
			failed++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"total":       len(results),
		"successful":  len(results) - failed,
		"failed":      failed,
		"output_file": path,
		"results":     results,
	})
}
