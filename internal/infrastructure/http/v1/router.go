// Package v1 provides the HTTP API of the shop backend.
package v1

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mobilebill/internal/infrastructure/http/v1/handlers"
	"mobilebill/internal/infrastructure/http/v1/middleware"
	"mobilebill/pkg/logger"
)

// RouterConfig holds router dependencies and settings.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// DB is pinged by /health/ready
	DB handlers.Pinger

	Dealers   handlers.DealerService
	Purchases handlers.PurchaseService
	Inventory handlers.InventoryService

	// Auth issues tokens; login is not mounted when nil
	Auth handlers.Authenticator

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthRequired rejects /api requests without a valid token
	AuthRequired bool

	// LoginRate limits login attempts per client IP, e.g. "10-M"
	LoginRate string

	CorsAllowedOrigins []string

	// Debug enables gin debug mode
	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(corsMiddleware(cfg.CorsAllowedOrigins))
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorHandler())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.DB != nil {
		healthHandler := handlers.NewHealthHandler(cfg.DB)
		health := router.Group("/health")
		{
			health.GET("/live", healthHandler.Live)
			health.GET("/ready", healthHandler.Ready)
			health.GET("/info", healthHandler.Info)
		}
	}

	base := handlers.NewBaseHandler()

	if err := registerAuthRoutes(router.Group("/api/auth"), base, cfg); err != nil {
		return nil, err
	}

	api := router.Group("/api")
	switch {
	case cfg.AuthRequired && cfg.JWTValidator != nil:
		api.Use(middleware.Auth(cfg.JWTValidator))
	case cfg.AuthRequired:
		return nil, fmt.Errorf("auth required but no token validator configured")
	case cfg.JWTValidator != nil:
		api.Use(middleware.OptionalAuth(cfg.JWTValidator))
	}

	registerDealerRoutes(api, base, cfg)
	registerPurchaseRoutes(api, base, cfg)
	registerInventoryRoutes(api, base, cfg)

	return router, nil
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{middleware.HeaderRequestID, middleware.HeaderTraceID, "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
		c.AllowCredentials = true
	}
	return cors.New(c)
}

// registerAuthRoutes mounts login behind the per-IP rate limiter.
func registerAuthRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) error {
	if cfg.Auth == nil {
		return nil
	}
	rate := cfg.LoginRate
	if rate == "" {
		rate = "10-M"
	}
	limit, err := middleware.RateLimit(rate)
	if err != nil {
		return err
	}
	h := handlers.NewAuthHandler(base, cfg.Auth)
	rg.POST("/login", limit, h.Login)
	return nil
}

func registerDealerRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.Dealers == nil {
		return
	}
	h := handlers.NewDealerHandler(base, cfg.Dealers)
	dealers := rg.Group("/dealers")
	{
		dealers.GET("", h.List)
		dealers.POST("", h.Create)
		dealers.GET("/:id", h.Get)
		dealers.PUT("/:id", h.Update)
		dealers.DELETE("/:id", h.Delete)
	}
}

func registerPurchaseRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.Purchases == nil {
		return
	}
	h := handlers.NewPurchaseHandler(base, cfg.Purchases)
	purchases := rg.Group("/purchases")
	{
		purchases.GET("", h.List)
		purchases.POST("", h.Create)
		purchases.GET("/:id", h.Get)
		purchases.PATCH("/:id/status", h.UpdateStatus)
		// the shop frontend calls receive with GET as well as POST
		purchases.GET("/:id/receive", h.Receive)
		purchases.POST("/:id/receive", h.Receive)
	}
}

func registerInventoryRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.Inventory == nil {
		return
	}
	h := handlers.NewInventoryHandler(base, cfg.Inventory)

	rg.GET("/mobiles", h.ListMobiles)
	rg.PUT("/mobiles/:id", h.UpdateMobile)
	rg.GET("/accessories", h.ListAccessories)
	rg.GET("/low-stock", h.LowStock)
	rg.GET("/counters/:key", h.Counter)
	rg.GET("/inventory/export", h.Export)

	// Unit id lookup. Static routes above take precedence.
	rg.GET("/:id", h.Lookup)
}
