// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"cinecore/internal/booking"
	"cinecore/internal/catalog"
	"cinecore/internal/checkin"
	"cinecore/internal/inventory"
	"cinecore/internal/payment"
	"cinecore/internal/shared/config"
	"cinecore/internal/shared/database"
	"cinecore/internal/shared/middleware"
	"cinecore/pkg/cache"

	"github.com/gin-gonic/gin"
	swaggoFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router holds all route dependencies
type Router struct {
	config *config.Config
	db     *database.DB

	inventory      inventory.Inventory
	catalogRepo    catalog.Repository
	bookingRepo    booking.Repository
	bookingService booking.Service
	reconciler     payment.Reconciler

	expiryWorker *booking.ExpiryWorker
	pollWorker   *payment.PollWorker
}

// NewRouter wires the service graph. events may be nil when Kafka is
// disabled; the lifecycle then skips publishing.
func NewRouter(cfg *config.Config, db *database.DB, events booking.EventPublisher) *Router {
	cacheService := cache.NewService(db.GetRedisClient())
	inv := inventory.New(db.GetRedisClient())

	catalogRepo := catalog.NewRepository(db.GetPostgreSQL(), cacheService)
	bookingRepo := booking.NewRepository(db.GetPostgreSQL())

	var gateway payment.Gateway
	if cfg.Gateway.Mode == "http" {
		gateway = payment.NewHTTPGateway(payment.GatewayConfig{
			BaseURL:       cfg.Gateway.BaseURL,
			APIKey:        cfg.Gateway.APIKey,
			WebhookSecret: cfg.Gateway.WebhookSecret,
			Timeout:       cfg.Gateway.Timeout,
		})
	} else {
		gateway = payment.NewMockGateway()
	}

	bookingService := booking.NewService(
		bookingRepo,
		catalogRepo,
		inv,
		payment.NewBookingGatewayAdapter(gateway, cfg.Gateway.Currency),
		events,
		booking.Config{
			SelectionTTL:     cfg.Booking.SelectionTTL,
			PaymentWindowTTL: cfg.Booking.PaymentWindowTTL,
			SuccessURL:       cfg.Booking.SuccessURL,
			CancelURL:        cfg.Booking.CancelURL,
		},
	)

	reconciler := payment.NewReconciler(bookingService, bookingRepo, gateway)

	return &Router{
		config:         cfg,
		db:             db,
		inventory:      inv,
		catalogRepo:    catalogRepo,
		bookingRepo:    bookingRepo,
		bookingService: bookingService,
		reconciler:     reconciler,
		expiryWorker: booking.NewExpiryWorker(bookingService, &booking.ExpiryWorkerConfig{
			ScanInterval: cfg.Booking.ExpiryScanInterval,
			BatchSize:    cfg.Booking.ExpiryBatchSize,
		}),
		pollWorker: payment.NewPollWorker(reconciler, &payment.PollWorkerConfig{
			Interval:  cfg.Gateway.PollInterval,
			BatchSize: cfg.Gateway.PollBatchSize,
		}),
	}
}

// Inventory exposes the seat inventory for startup script preloading.
func (r *Router) Inventory() inventory.Inventory {
	return r.inventory
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	booking.RegisterValidations()

	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// Swagger UI
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggoFiles.Handler))

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupCatalogRoutes(api)
		r.setupBookingRoutes(api)
		r.setupPaymentRoutes(api)
		r.setupCheckinRoutes(api)
		r.setupWorkerRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "cinecore-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "cinecore-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupCatalogRoutes configures showtime browsing and seat maps
func (r *Router) setupCatalogRoutes(rg *gin.RouterGroup) {
	catalogController := catalog.NewController(r.catalogRepo, r.inventory)
	catalog.SetupCatalogRoutes(rg, catalogController)
}

// setupBookingRoutes configures the booking lifecycle routes
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	bookingController := booking.NewController(r.bookingService)
	booking.SetupBookingRoutes(rg, bookingController)
}

// setupPaymentRoutes configures the gateway webhook
func (r *Router) setupPaymentRoutes(rg *gin.RouterGroup) {
	paymentController := payment.NewController(r.reconciler, r.config.Gateway.WebhookSecret)
	payment.SetupPaymentRoutes(rg, paymentController)
}

// setupCheckinRoutes configures the door scanner routes
func (r *Router) setupCheckinRoutes(rg *gin.RouterGroup) {
	checkinService := checkin.NewService(r.bookingRepo, r.catalogRepo)
	checkinController := checkin.NewController(checkinService)
	checkin.SetupCheckinRoutes(rg, checkinController)
}

// setupWorkerRoutes exposes worker stats and manual sweeps for operators
func (r *Router) setupWorkerRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin/workers")
	admin.Use(middleware.JWTAuth(), middleware.RequireRoles("ADMIN"))
	{
		admin.GET("/expiry/stats", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"message": "Worker stats retrieved successfully",
				"data":    r.expiryWorker.GetStats(),
			})
		})
		admin.POST("/expiry/run", func(c *gin.Context) {
			expired, err := r.bookingService.ExpireOverdue(c.Request.Context(), r.config.Booking.ExpiryBatchSize)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Sweep failed", "details": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"message": "Sweep completed",
				"data":    gin.H{"expired": expired},
			})
		})
		admin.POST("/reconcile/run", func(c *gin.Context) {
			settled, err := r.reconciler.ReconcilePending(c.Request.Context(), r.config.Gateway.PollBatchSize)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Reconciliation failed", "details": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"message": "Reconciliation completed",
				"data":    gin.H{"settled": settled},
			})
		})
	}
}

// ExpiryWorker exposes the sweep worker so main can manage its lifecycle.
func (r *Router) ExpiryWorker() *booking.ExpiryWorker {
	return r.expiryWorker
}

// PollWorker exposes the payment poll worker so main can manage its lifecycle.
func (r *Router) PollWorker() *payment.PollWorker {
	return r.pollWorker
}
