// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, idempotency, and rate limiting.
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

	"github.com/mashamba/dairy-backend/docs"
	"github.com/mashamba/dairy-backend/internal/config"
	"github.com/mashamba/dairy-backend/internal/domain"
	"github.com/mashamba/dairy-backend/internal/http/handlers"
	"github.com/mashamba/dairy-backend/internal/http/middleware"
	"github.com/mashamba/dairy-backend/internal/repo"
	"github.com/mashamba/dairy-backend/internal/services"
)

// Services bundles the application services behind the API. The same
// instances are shared with the snapshot scheduler.
type Services struct {
	Farms   *services.FarmService
	Herd    *services.HerdService
	Records *services.RecordService
	Finance *services.FinanceService
	Reports *services.ReportService
}

// NewServices constructs the services over db. Milk flowing in through
// milkings and out through sales is counted in Prometheus.
func NewServices(db *gorm.DB, cfg config.Config) *Services {
	records := services.NewRecordService(db)
	records.OnMilking = func(m *domain.MilkingSession) {
		middleware.ObserveMilk("produced", m.Yield.InexactFloat64())
	}
	finance := services.NewFinanceService(db)
	finance.OnSale = func(s *domain.MilkSale) {
		middleware.ObserveMilk("sold", s.Quantity.InexactFloat64())
	}
	return &Services{
		Farms:   services.NewFarmService(db, cfg.SearchThreshold),
		Herd:    services.NewHerdService(db),
		Records: records,
		Finance: finance,
		Reports: services.NewReportService(db, cfg.Report.Location, cfg.Report.WindowDays),
	}
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the versioned public API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Idempotency validator (before rate limiter to allow bypass on replay)
//  8. Rate limiter (per farm and client, bypass on replay)
//  9. CORS and Security headers
//  10. Gzip
func RegisterRoutes(r *gin.Engine, db *gorm.DB, svc *Services, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	r.Use(limitBody(maxBody))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200},
		func(ctx context.Context, userID, farmSlug, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, userID, farmSlug, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 8) Token buckets per farm and client; exports draw from their own
	rl := middleware.NewRateLimiter(middleware.RateOptions{
		Default: middleware.Limit{RPS: cfg.RateRPS, Burst: cfg.RateBurst},
		Export:  middleware.Limit{RPS: cfg.ExportRateRPS, Burst: cfg.ExportRateBurst},
	})
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	corsHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", middleware.HeaderIdempotencyKey, "If-None-Match"}
	exposed := []string{"X-Request-ID", "Content-Length", "ETag", "Content-Disposition", middleware.HeaderIdempotencyReplayed}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    exposed,
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
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    exposed,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security and cache headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))

	// 10) Compress JSON and CSV bodies; PDFs are already compressed.
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedExtensions([]string{".pdf"})))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(handlers.Deps{
		Farms:          svc.Farms,
		Herd:           svc.Herd,
		Records:        svc.Records,
		Finance:        svc.Finance,
		Reports:        svc.Reports,
		DB:             db,
		Location:       cfg.Report.Location,
		IdempotencyTTL: cfg.IdempotencyTTL,
	})

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Farms
		api.POST("/farms", h.RegisterFarm)
		api.GET("/farms", h.ListFarms)
		api.GET("/farms/search", h.SearchFarms)
		api.GET("/farms/:slug", h.GetFarm)
		api.PUT("/farms/:slug", h.UpdateFarm)
		api.PUT("/farms/:slug/status", h.SetFarmStatus)
		api.POST("/farms/:slug/verify", h.VerifyFarm)

		// Herd
		api.POST("/farms/:slug/cows", h.AddCow)
		api.GET("/farms/:slug/cows", h.ListCows)
		api.GET("/farms/:slug/cows/:identifier", h.GetCow)
		api.POST("/farms/:slug/cows/:identifier/archive", h.ArchiveCow)
		api.POST("/farms/:slug/cows/:identifier/masses", h.RecordMass)
		api.GET("/farms/:slug/cows/:identifier/masses", h.ListMasses)

		// Records
		api.POST("/farms/:slug/cows/:identifier/milkings", h.AddMilking)
		api.GET("/farms/:slug/cows/:identifier/milkings", h.ListMilkings)
		api.POST("/farms/:slug/cows/:identifier/breedings", h.AddBreeding)
		api.GET("/farms/:slug/cows/:identifier/breedings", h.ListBreedings)
		api.POST("/farms/:slug/cows/:identifier/calvings", h.AddCalving)
		api.GET("/farms/:slug/cows/:identifier/calvings", h.ListCalvings)
		api.POST("/farms/:slug/cows/:identifier/health", h.AddHealth)
		api.GET("/farms/:slug/cows/:identifier/health", h.ListHealth)

		// Finance
		api.POST("/farms/:slug/inventory", h.AddInventory)
		api.GET("/farms/:slug/inventory", h.ListInventory)
		api.POST("/farms/:slug/expenses", h.AddExpense)
		api.GET("/farms/:slug/expenses", h.ListExpenses)
		api.POST("/farms/:slug/revenue", h.AddRevenue)
		api.GET("/farms/:slug/revenue", h.ListRevenue)
		api.POST("/farms/:slug/sales", h.RecordSale)
		api.GET("/farms/:slug/sales", h.ListSales)
		api.GET("/farms/:slug/finance/summary", h.FinanceSummary)

		// Milk reporting
		api.GET("/farms/:slug/milk/report", h.MilkReport)
		api.GET("/farms/:slug/milk/report.csv", h.MilkReportCSV)
		api.GET("/farms/:slug/milk/report.pdf", h.MilkReportPDF)
		api.GET("/farms/:slug/milk/leaderboard", h.MilkLeaderboard)
		api.GET("/farms/:slug/milk/snapshots", h.MilkSnapshots)
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
