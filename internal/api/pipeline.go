package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/vigil-api/internal/api/middleware"
	"github.com/phrazzld/vigil-api/internal/api/shared"
	"github.com/phrazzld/vigil-api/internal/docs"
)

// Mount points of the pipeline.
const (
	DocsPath = "/docs"
	APIPath  = "/api"
)

// ErrNilRouter is returned when no API router is supplied.
var ErrNilRouter = errors.New("api: nil router")

// PipelineConfig configures NewPipeline.
type PipelineConfig struct {
	// DocsSpec is served verbatim at /docs/swagger.json.
	DocsSpec  []byte
	DocsTitle string
	// MaxBodyBytes bounds buffered JSON bodies. Zero means 1 MiB.
	MaxBodyBytes       int64
	CORSAllowedOrigins []string
	// RateLimitRPS enables per-client rate limiting when positive.
	RateLimitRPS   float64
	RateLimitBurst int
	// RedactInternalErrors redacts messages of unclassified failures.
	RedactInternalErrors bool
}

// NewPipeline builds the request-handling pipeline around router, which is
// mounted at /api. It does not bind a listener.
//
// The error stage wraps the body decoder and both mounts, so every failure
// they report or panic with reaches it. Requests to unmounted paths get the
// router's default 404.
func NewPipeline(cfg PipelineConfig, router http.Handler, logger *slog.Logger) (http.Handler, error) {
	if router == nil {
		return nil, ErrNilRouter
	}
	if logger == nil {
		logger = slog.Default()
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	docsHandler, err := docs.Handler(cfg.DocsSpec, cfg.DocsTitle, DocsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to build docs handler: %w", err)
	}

	r := chi.NewRouter()

	// Ambient middleware
	r.Use(middleware.NewTraceMiddleware(logger))
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.TraceHeader},
			ExposedHeaders: []string{middleware.TraceHeader},
			MaxAge:         300,
		}))
	}

	// Error stage, then everything it guards
	r.Use(middleware.ErrorStage(shared.NewErrorTranslator(logger, cfg.RedactInternalErrors)))
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Handler)
	}
	r.Use(middleware.JSONBody(maxBody))

	r.Mount(DocsPath, docsHandler)
	r.Mount(APIPath, router)

	return r, nil
}
