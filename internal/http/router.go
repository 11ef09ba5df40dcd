// Package httpapi wires the Gin transport to the services, middleware and
// handlers. It owns middleware ordering and route registration.
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

	"github.com/tbourn/diary-emotion-backend/internal/config"
	"github.com/tbourn/diary-emotion-backend/internal/http/handlers"
	"github.com/tbourn/diary-emotion-backend/internal/http/middleware"
	"github.com/tbourn/diary-emotion-backend/internal/lock"
	"github.com/tbourn/diary-emotion-backend/internal/repo"
	"github.com/tbourn/diary-emotion-backend/internal/services"
)

const maxBodyBytes = 1 << 20

// Deps are the collaborators RegisterRoutes builds services from. A nil
// Locker means no distributed lock.
type Deps struct {
	DB       *gorm.DB
	Analyzer services.Analyzer
	Locker   lock.Locker
}

// RegisterRoutes attaches middleware and every endpoint to r.
//
// Middleware order:
//  1. OpenTelemetry
//  2. RequestID
//  3. RedactingLogger
//  4. Recovery
//  5. Body size limit
//  6. Metrics
//  7. CORS, security headers, gzip
//
// Idempotency validation and rate limiting are attached per route, on the
// two write endpoints that reach expensive or non-idempotent work.
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
		EnablePolicy: true,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	emotionSvc := services.NewDiaryEmotionService(deps.DB, deps.Analyzer)
	if deps.Locker != nil {
		emotionSvc.Locker = deps.Locker
	}
	if cfg.Redis.LockTTL > 0 {
		emotionSvc.LockTTL = cfg.Redis.LockTTL
	}
	alertSvc := &services.AlertService{DB: deps.DB, IdempotencyTTL: cfg.IdempotencyTTL}
	h := handlers.New(emotionSvc, alertSvc)

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByRouteAndIP())
	idem := middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200},
		func(ctx context.Context, accountID int64, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, deps.DB, accountID, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.GET("/diaries/:id/emotion", h.GetDiaryEmotion)
		api.POST("/diaries/:id/emotion", rl.Handler(), h.AnalyzeDiary)
		api.DELETE("/diaries/:id/emotion", h.DeleteDiaryEmotion)
		api.GET("/diary-emotions", h.BatchDiaryEmotions)

		api.POST("/accounts/:id/alerts", idem, rl.Handler(), h.CreateAlert)
		api.GET("/accounts/:id/alerts", h.ListAccountAlerts)
		api.DELETE("/accounts/:id/alerts", h.DeleteAccountAlerts)

		api.GET("/alerts/latest", h.LatestAlerts)
		api.GET("/alerts/:id", h.GetAlert)
		api.PATCH("/alerts/:id/read", h.MarkAlertRead)
		api.DELETE("/alerts/:id", h.DeleteAlert)
	}
}

// corsMiddleware allows every origin when origins is empty, otherwise only
// the listed ones.
func corsMiddleware(origins []string) gin.HandlerFunc {
	conf := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
		ExposeHeaders: []string{"X-Request-ID", "Content-Length", handlers.HeaderIdempotencyReplayed},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOrigins = origins
	}
	return cors.New(conf)
}

// limitBody caps request bodies at maxBytes; reads past the cap fail.
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
