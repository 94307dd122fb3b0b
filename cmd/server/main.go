package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"voyago/internal/app"
	"voyago/internal/config"
	"voyago/internal/handler"
	"voyago/internal/provider"
	internalRedis "voyago/internal/redis"
	"voyago/internal/repository/postgres"
	"voyago/internal/service"
)

func main() {
	// Load .env for local development; real deployments use the environment.
	_ = godotenv.Load()

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server := wireServer(db, redisClient, nrApp, cfg)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) *http.Server {
	// Initialize Redis stores.
	tripCache := internalRedis.NewTripCache(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)

	// Initialize repositories.
	userRepo := postgres.NewUserRepository(db)
	creditRepo := postgres.NewCreditRepository(db)
	tripRepo := postgres.NewTripRepository(db)

	// Initialize the generation provider, if configured.
	var providerClient service.Provider
	if cfg.Provider.Enabled && cfg.Provider.APIKey != "" {
		providerClient = provider.NewClient(cfg.Provider)
	} else {
		log.Println("Generation provider disabled; using local itineraries only")
	}

	// Initialize services.
	notificationService := service.NewNotificationService()
	creditService := service.NewCreditService(creditRepo, cfg.Credits.StartingBalance, cfg.Credits.MonthlyAllotment)
	itineraryService := service.NewItineraryService(providerClient)
	enricher := service.NewEnricher(
		cfg.Partners.HotelAffiliateID,
		cfg.Partners.FlightAffiliateID,
		cfg.Partners.ActivityAffiliateID,
	)
	generationService := service.NewGenerationService(
		creditService,
		itineraryService,
		enricher,
		notificationService,
		tripRepo,
		tripCache,
		lockStore,
		cfg.Credits.GenerationTimeout,
		cfg.Credits.LowBalanceThreshold,
	)

	// Initialize handlers.
	authHandler := handler.NewAuthHandler(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	generateHandler := handler.NewGenerateHandler(generationService)
	tripHandler := handler.NewTripHandler(tripRepo, tripCache)
	creditHandler := handler.NewCreditHandler(creditService, notificationService, cfg.Webhook.Secret)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		AuthHandler:     authHandler,
		GenerateHandler: generateHandler,
		TripHandler:     tripHandler,
		CreditHandler:   creditHandler,
		RedisClient:     redisClient,
		NewRelicApp:     nrApp,
		JWTSecret:       cfg.Auth.JWTSecret,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
