// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, compression,
// CORS, security headers, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tatowo/dishweek-backend/internal/command"
	"github.com/tatowo/dishweek-backend/internal/config"
	"github.com/tatowo/dishweek-backend/internal/domain"
	"github.com/tatowo/dishweek-backend/internal/http/handlers"
	"github.com/tatowo/dishweek-backend/internal/http/middleware"
	"github.com/tatowo/dishweek-backend/internal/repo"
	"github.com/tatowo/dishweek-backend/internal/services"
)

// challengeRepoShim adapts the repository free functions to the
// services.ChallengeRepo interface expected by the ChallengeService. This
// keeps services decoupled from the concrete repo package while reusing
// existing functions.
type challengeRepoShim struct{}

// CreateDish proxies repo.CreateDish.
func (challengeRepoShim) CreateDish(ctx context.Context, db *gorm.DB, name, recipeIdea string, imageURL *string, dateSet time.Time) (*domain.Dish, error) {
	return repo.CreateDish(ctx, db, name, recipeIdea, imageURL, dateSet)
}

// LatestDish proxies repo.LatestDish.
func (challengeRepoShim) LatestDish(ctx context.Context, db *gorm.DB) (*domain.Dish, error) {
	return repo.LatestDish(ctx, db)
}

// CreateParticipation proxies repo.CreateParticipation.
func (challengeRepoShim) CreateParticipation(ctx context.Context, db *gorm.DB, userID, userName, dishName, imageURL string, createdAt time.Time) (*domain.Participation, error) {
	return repo.CreateParticipation(ctx, db, userID, userName, dishName, imageURL, createdAt)
}

// HasParticipation proxies repo.HasParticipation.
func (challengeRepoShim) HasParticipation(ctx context.Context, db *gorm.DB, userID, dishName string) (bool, error) {
	return repo.HasParticipation(ctx, db, userID, dishName)
}

// DeleteParticipations proxies repo.DeleteParticipations.
func (challengeRepoShim) DeleteParticipations(ctx context.Context, db *gorm.DB, userName, dishName string) (int64, error) {
	return repo.DeleteParticipations(ctx, db, userName, dishName)
}

// Leaderboard proxies repo.Leaderboard.
func (challengeRepoShim) Leaderboard(ctx context.Context, db *gorm.DB, limit int) ([]repo.LeaderboardRow, error) {
	return repo.Leaderboard(ctx, db, limit)
}

// memoryRepoShim adapts the chat-memory free functions to the
// services.MemoryRepo interface.
type memoryRepoShim struct{}

// CreateChatMemory proxies repo.CreateChatMemory.
func (memoryRepoShim) CreateChatMemory(ctx context.Context, db *gorm.DB, messageID, userID, botResponse string, createdAt time.Time) error {
	return repo.CreateChatMemory(ctx, db, messageID, userID, botResponse, createdAt)
}

// GetChatMemory proxies repo.GetChatMemory.
func (memoryRepoShim) GetChatMemory(ctx context.Context, db *gorm.DB, messageID string) (*domain.ChatMemory, error) {
	return repo.GetChatMemory(ctx, db, messageID)
}

// PruneChatMemory proxies repo.PruneChatMemory.
func (memoryRepoShim) PruneChatMemory(ctx context.Context, db *gorm.DB, keep int) (int64, error) {
	return repo.PruneChatMemory(ctx, db, keep)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), compression and rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip compression
//  7. Metrics
//  8. Rate limiter (per user/IP)
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, llm services.Completer, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Response compression
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (opt-in)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/llm
	challengeSvc := services.NewChallengeService(db, challengeRepoShim{})
	personaSvc := services.NewPersonaService(db, memoryRepoShim{}, llm)
	if cfg.MemoryKeep > 0 {
		personaSvc.MemoryKeep = cfg.MemoryKeep
	}
	if cfg.OpenAI.MaxTokens > 0 {
		personaSvc.MaxReplyTokens = cfg.OpenAI.MaxTokens
	}

	router := command.NewChallengeRouter(challengeSvc)
	h := handlers.New(router, personaSvc, challengeSvc)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Gateway seam
		api.POST("/interactions", h.Interact)
		api.POST("/messages", h.HandleMessage)

		// Challenge reads
		api.GET("/challenge/current", h.CurrentDish)
		api.GET("/challenge/leaderboard", h.Leaderboard)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
