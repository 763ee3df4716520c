// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, authentication, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Every write endpoint gated by bearer-token auth before handlers run
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tbourn/go-catalog-backend/internal/auth"
	"github.com/tbourn/go-catalog-backend/internal/cache"
	"github.com/tbourn/go-catalog-backend/internal/config"
	"github.com/tbourn/go-catalog-backend/internal/domain"
	"github.com/tbourn/go-catalog-backend/internal/http/handlers"
	"github.com/tbourn/go-catalog-backend/internal/http/middleware"
	"github.com/tbourn/go-catalog-backend/internal/repo"
	"github.com/tbourn/go-catalog-backend/internal/services"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"
)

// productRepoShim adapts the repository free functions to the
// services.ProductStore interface expected by the CatalogService. This keeps
// services decoupled from the concrete repo package while reusing existing
// functions.
type productRepoShim struct{}

// Insert proxies repo.InsertProduct.
func (productRepoShim) Insert(ctx context.Context, db *gorm.DB, name string, price float64, category string) (*domain.Product, error) {
	return repo.InsertProduct(ctx, db, name, price, category)
}

// Get proxies repo.GetProduct.
func (productRepoShim) Get(ctx context.Context, db *gorm.DB, id string) (*domain.Product, error) {
	return repo.GetProduct(ctx, db, id)
}

// ListPage proxies repo.ListProductsPage.
func (productRepoShim) ListPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Product, error) {
	return repo.ListProductsPage(ctx, db, offset, limit)
}

// UpdateFields proxies repo.UpdateProductFields.
func (productRepoShim) UpdateFields(ctx context.Context, db *gorm.DB, id string, patch domain.ProductPatch) error {
	return repo.UpdateProductFields(ctx, db, id, patch)
}

// Delete proxies repo.DeleteProduct.
func (productRepoShim) Delete(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	return repo.DeleteProduct(ctx, db, id)
}

// Stats proxies repo.ProductsStats.
func (productRepoShim) Stats(ctx context.Context, db *gorm.DB) (int64, *time.Time, error) {
	return repo.ProductsStats(ctx, db)
}

// userRepoShim adapts the user repository free functions to the
// services.UserStore interface.
type userRepoShim struct{}

// Create proxies repo.CreateUser.
func (userRepoShim) Create(ctx context.Context, db *gorm.DB, email, passwordHash, fullName, role string) (*domain.User, error) {
	return repo.CreateUser(ctx, db, email, passwordHash, fullName, role)
}

// GetByEmail proxies repo.GetUserByEmail.
func (userRepoShim) GetByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	return repo.GetUserByEmail(ctx, db, email)
}

// EmailExists proxies repo.EmailExists.
func (userRepoShim) EmailExists(ctx context.Context, db *gorm.DB, email string) (bool, error) {
	return repo.EmailExists(ctx, db, email)
}

// Deps bundles the injected dependencies the router needs beyond the DB
// handle: the list-page cache and the token manager (issuer + verifier).
type Deps struct {
	Cache  cache.Cache
	Tokens *auth.Manager
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), rate limiting, CORS
// and security headers, health and metrics endpoints, and then mounts the
// versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per user/IP)
//  8. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key", // project-specific sensitive header example
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 8) CORS posture (safe defaults: allow all if none configured)
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

	// Dependency injection: services ← repo/db/cache/tokens
	catalogSvc := services.NewCatalogService(db, productRepoShim{}, deps.Cache)
	if cfg.Cache.TTL > 0 {
		catalogSvc.CacheTTL = cfg.Cache.TTL
	}
	userSvc := services.NewUserService(db, userRepoShim{}, deps.Tokens)
	h := handlers.New(userSvc, catalogSvc)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Accounts (unauthenticated by definition)
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)

		// Products: reads and creates need a valid token
		authed := api.Group("", middleware.RequireAuth(deps.Tokens))
		{
			authed.POST("/products", h.CreateProduct)
			authed.GET("/products", h.ListProducts)

			// Static route first so "stats" is never captured as :id.
			admin := authed.Group("", middleware.RequireRole(domain.RoleAdmin))
			{
				admin.GET("/products/stats", h.ProductStats)
				admin.PUT("/products/:id", h.UpdateProduct)
				admin.DELETE("/products/:id", h.DeleteProduct)
			}

			authed.GET("/products/:id", h.GetProduct)
		}
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
