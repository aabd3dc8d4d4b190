package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"wartungsmanager-backend/config"
	"wartungsmanager-backend/internal/live"
	"wartungsmanager-backend/internal/logging"
	"wartungsmanager-backend/internal/metrics"
	"wartungsmanager-backend/internal/mw"
)

// Deps are the services behind the router. Hub and Metrics are optional.
type Deps struct {
	Workflow Workflow
	Registry Registry
	DB       *gorm.DB
	WebPush  *webpush.Options
	Hub      *live.Hub
	Metrics  *metrics.Collector
	Server   config.ServerConfig
}

// NewRouter creates and configures a new Gin router.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.Logger(logging.Category(logging.NameAPI, "http")))

	handler := NewHandler(d.Workflow, d.Registry, d.DB, d.WebPush)

	rateLimiter := mw.RateLimiter(rate.Limit(d.Server.RateLimitPerSec), d.Server.RateLimitBurst)
	resetLimiter := mw.RateLimiter(rate.Limit(d.Server.ResetLimitPerMin/60), d.Server.ResetLimitBurst)

	ttl := d.Server.CacheTTL
	if ttl <= 0 {
		ttl = time.Duration(d.Server.CacheTTLSeconds) * time.Second
	}
	cacheStore := cache.New(ttl, 10*time.Minute)

	r.GET("/healthz", handler.HealthCheck)
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	api := r.Group("/api")
	api.Use(rateLimiter)
	if d.Hub != nil {
		api.GET("/live", d.Hub.ServeWS)
	}

	cached := api.Group("")
	if ttl > 0 {
		cached.Use(mw.Invalidate(cacheStore), mw.Cache(cacheStore, ttl))
	}
	{
		cached.POST("/customers", handler.CreateCustomer)
		cached.GET("/customers", handler.ListCustomers)
		cached.GET("/customers/:id", handler.GetCustomer)

		cached.POST("/bottles", handler.CreateBottle)
		cached.GET("/bottles", handler.ListBottles)
		cached.GET("/bottles/lookup", handler.LookupBottle)
		cached.GET("/bottles/:id", handler.GetBottle)
		cached.POST("/bottles/:id/deactivate", handler.DeactivateBottle)
		cached.POST("/bottles/:id/inspection", handler.RecordInspection)

		cached.POST("/waitlist", handler.AcceptBottle)
		cached.GET("/waitlist", handler.ListEntries)
		cached.GET("/waitlist/:id", handler.GetEntry)
		cached.POST("/waitlist/:id/start", handler.StartFilling)
		cached.POST("/waitlist/:id/complete", handler.CompleteFilling)
		cached.POST("/waitlist/:id/cancel", handler.CancelEntry)

		cached.GET("/compressor/session", handler.GetActiveSession)
		cached.GET("/compressor/sessions", handler.ListSessions)
		cached.POST("/compressor/start", handler.StartSession)
		cached.POST("/compressor/stop", handler.StopSession)
		cached.POST("/compressor/reset", resetLimiter, handler.ResetSession)
	}

	api.GET("/subscriptions", handler.GetSubscription)
	api.PUT("/subscriptions", handler.PutSubscription)
	api.DELETE("/subscriptions", handler.DeleteSubscription)
	api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)

	return r
}
