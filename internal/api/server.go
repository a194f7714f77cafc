// Package api exposes the scan pipeline over HTTP for browser-extension and
// service callers.
package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/phisheye/phisheye/internal/model"
	"github.com/phisheye/phisheye/internal/store"
	"github.com/phisheye/phisheye/internal/worker"
)

const (
	maxURLLength = 2048
	maxBatchSize = 100

	defaultHistoryLimit = 50
	maxHistoryLimit     = 1000
)

// Scanner is the scanning collaborator. *pipeline.Scanner satisfies it.
type Scanner interface {
	Scan(ctx context.Context, req model.ScanRequest) model.Verdict
}

// Server routes HTTP requests to the scan pipeline
type Server struct {
	scanner Scanner
	store   store.Store
	workers int
	limiter *worker.Limiter
	version string
	router  *gin.Engine
}

// ScanRequestBody is the POST /scan payload
type ScanRequestBody struct {
	URL      string `json:"url" binding:"required"`
	DeepScan bool   `json:"deepScan"`
}

// BatchRequestBody is the POST /scan/batch payload
type BatchRequestBody struct {
	URLs     []string `json:"urls" binding:"required"`
	DeepScan bool     `json:"deepScan"`
}

// HealthResponse is the GET /health payload
type HealthResponse struct {
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
	Version    string    `json:"version"`
	Classifier string    `json:"classifier"`
}

// ErrorResponse is the error payload for all endpoints
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewServer creates the HTTP server around a scanner and its store.
func NewServer(scanner Scanner, st store.Store, cfg model.ConcurrencyConfig, version string, verbose bool) *Server {
	s := &Server{
		scanner: scanner,
		store:   st,
		workers: cfg.BatchWorkers,
		limiter: worker.NewLimiter(cfg.DomainRPS, cfg.DomainBurst),
		version: version,
	}
	s.setupRouter(verbose)
	return s
}

func (s *Server) setupRouter(verbose bool) {
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()
	if verbose {
		s.router.Use(gin.Logger())
	}
	s.router.Use(gin.Recovery())

	s.router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Caller-ID"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/health", s.health)
		v1.POST("/scan", s.scan)
		v1.POST("/scan/batch", s.scanBatch)
		v1.GET("/history", s.history)
	}

	s.router.GET("/health", s.health)
}

func (s *Server) health(c *gin.Context) {
	classifier := "unavailable"
	if a, ok := s.scanner.(interface{ ClassifierAvailable() bool }); ok && a.ClassifierAvailable() {
		classifier = "loaded"
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:     "healthy",
		Timestamp:  time.Now().UTC(),
		Version:    s.version,
		Classifier: classifier,
	})
}

func (s *Server) scan(c *gin.Context) {
	var body ScanRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.respondError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	if len(body.URL) > maxURLLength {
		s.respondError(c, http.StatusBadRequest, "URL too long", "URL exceeds maximum length limit")
		return
	}

	verdict := s.scanner.Scan(c.Request.Context(), model.ScanRequest{
		URL:      body.URL,
		DeepScan: body.DeepScan,
		CallerID: s.callerID(c),
	})

	c.JSON(http.StatusOK, verdict)
}

func (s *Server) scanBatch(c *gin.Context) {
	var body BatchRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.respondError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	if len(body.URLs) == 0 {
		s.respondError(c, http.StatusBadRequest, "Empty batch", "At least one URL is required")
		return
	}
	if len(body.URLs) > maxBatchSize {
		s.respondError(c, http.StatusBadRequest, "Batch too large",
			"At most "+strconv.Itoa(maxBatchSize)+" URLs per batch")
		return
	}

	processor := worker.NewBatchProcessor(s.scanner, s.limiter, s.workers)
	outcomes := processor.Process(c.Request.Context(), body.URLs, s.callerID(c), body.DeepScan)

	verdicts := make([]model.Verdict, len(outcomes))
	for i, o := range outcomes {
		verdicts[i] = o.Verdict
	}

	c.JSON(http.StatusOK, gin.H{
		"results": verdicts,
		"count":   len(verdicts),
	})
}

func (s *Server) history(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultHistoryLimit)))
	if err != nil || limit < 1 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}

	records, err := s.store.ListForCaller(c.Request.Context(), s.callerID(c), limit)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, "Failed to retrieve history", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"scans": records,
		"count": len(records),
	})
}

// callerID resolves the caller identity: an explicit X-Caller-ID header, or a
// stable hash of client address and user agent.
func (s *Server) callerID(c *gin.Context) string {
	if id := c.GetHeader("X-Caller-ID"); id != "" {
		return id
	}
	sum := sha256.Sum256([]byte(c.ClientIP() + "|" + c.GetHeader("User-Agent")))
	return hex.EncodeToString(sum[:])
}

func (s *Server) respondError(c *gin.Context, statusCode int, message, details string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   message,
		Code:    statusCode,
		Message: details,
	})
}

// Handler exposes the router, for tests and custom server setups.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until the listener fails.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
