package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-machine/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-machine/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-machine/internal/platform/config"
	"github.com/jsamuelsen/quote-machine/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the structured logger for request logging.
	Logger *slog.Logger

	// AppConfig contains the service identity used for telemetry.
	AppConfig *config.AppConfig

	// QuoteHandler serves the /api/v1 quote endpoints.
	QuoteHandler *handlers.QuoteHandler

	// HealthHandler serves the /- probes and the public /health endpoint.
	HealthHandler *handlers.HealthHandler

	// WebHandler renders the HTML landing page on /.
	WebHandler *handlers.WebHandler

	// StaticDir is served under /static when set.
	StaticDir string

	// Timeout is the default request timeout for API routes.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Request ID - generate/extract request ID
//  3. Correlation ID - handle distributed tracing correlation
//  4. Tracing - otelgin server spans
//  5. Telemetry - request metrics, X-Trace-ID response header
//  6. Logging - request logging (skips /-/ paths)
//  7. Timeout - request deadline (applied on the API group)
//
// Route groups:
//   - /-/ (internal): probes, build info and metrics, no timeout
//   - /, /health, /static: page-facing routes
//   - /api/v1/ (public API): quote endpoints, timeout-wrapped
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	// Apply global middleware in order
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.TracingMiddleware(cfg.AppConfig.Name),
		telemetry.Middleware(cfg.AppConfig.Name),
		middleware.Logging(cfg.Logger),
	)

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	if cfg.WebHandler != nil {
		engine.GET("/", cfg.WebHandler.Home)
	}

	if cfg.StaticDir != "" {
		engine.Static("/static", cfg.StaticDir)
	}

	// Setup API v1 routes with timeout
	apiV1 := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		apiV1.Use(middleware.SimpleTimeout(cfg.Timeout))
	}

	if cfg.QuoteHandler != nil {
		cfg.QuoteHandler.RegisterQuoteRoutes(apiV1)
	}
}

// SetupMinimalRouter sets up a minimal router with just health endpoints.
// Useful for testing or lightweight deployments.
func SetupMinimalRouter(engine *gin.Engine, logger *slog.Logger, healthHandler *handlers.HealthHandler) {
	engine.Use(
		middleware.Recovery(logger),
		middleware.RequestID(),
	)

	if healthHandler != nil {
		healthHandler.RegisterHealthRoutesOnEngine(engine)
	}
}

// NewDefaultRouterConfig creates a RouterConfig with sensible defaults.
func NewDefaultRouterConfig(
	logger *slog.Logger,
	appCfg *config.AppConfig,
	quoteHandler *handlers.QuoteHandler,
	healthHandler *handlers.HealthHandler,
) RouterConfig {
	return RouterConfig{
		Logger:        logger,
		AppConfig:     appCfg,
		QuoteHandler:  quoteHandler,
		HealthHandler: healthHandler,
		Timeout:       DefaultRequestTimeout,
	}
}
