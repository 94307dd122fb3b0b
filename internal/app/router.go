package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"voyago/internal/handler"
	"voyago/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	AuthHandler     *handler.AuthHandler
	GenerateHandler *handler.GenerateHandler
	TripHandler     *handler.TripHandler
	CreditHandler   *handler.CreditHandler
	RedisClient     *redis.Client
	NewRelicApp     *newrelic.Application
	JWTSecret       string
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auth := middleware.AuthMiddleware(deps.JWTSecret)

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Accounts.
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/register", deps.AuthHandler.Register)
			authRoutes.POST("/login", deps.AuthHandler.Login)
		}
		v1.GET("/me", auth, deps.AuthHandler.Me)

		// Generation.
		itineraries := v1.Group("/itineraries", auth)
		{
			itineraries.POST("/generate", deps.GenerateHandler.Generate)
		}

		// Trip records.
		trips := v1.Group("/trips", auth)
		{
			trips.POST("", deps.TripHandler.CreateTrip)
			trips.GET("", deps.TripHandler.ListTrips)
			trips.GET("/:id", deps.TripHandler.GetTrip)
		}

		// Credits. The purchase webhook authenticates with a shared
		// secret instead of a user token.
		credits := v1.Group("/credits")
		{
			credits.GET("", auth, deps.CreditHandler.GetBalance)
			credits.POST("/purchase", deps.CreditHandler.Purchase)
		}
	}

	return router
}
