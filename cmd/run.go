package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"stacktrack/api"
	"stacktrack/cache"
	"stacktrack/config"
	"stacktrack/database"
	"stacktrack/events"
	"stacktrack/repository"
	"stacktrack/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting stacktrack server...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize cache store, Redis when configured and in-memory otherwise
	var store cache.Store
	if cfg.RedisURL != "" {
		log.Println("Connecting to Redis...")
		redisStore, err := cache.NewRedisStoreFromURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		store = redisStore
		log.Println("Redis connection established successfully")
	} else {
		log.Println("No REDIS_URL configured, using in-memory cache")
		store = cache.NewMemoryStore()
	}
	activeCache := cache.NewActiveSession(store, cfg.SessionCacheTTL)

	// Initialize event bus and the audit-log consumer
	log.Println("Initializing event bus...")
	eventBus := events.NewBus()
	events.RegisterAuditLog(eventBus)

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	log.Println("Initializing services...")
	bankrollService := service.NewBankrollService(uowFactory)
	sessionService := service.NewSessionService(uowFactory, activeCache)
	referenceService := service.NewReferenceService(uowFactory)
	analyticsService := service.NewAnalyticsService(uowFactory)
	log.Println("Services initialized successfully")

	// Initialize HTTP server
	authenticator := api.NewAuthenticator(cfg.JWTSecret)
	server := api.NewServer(bankrollService, sessionService, referenceService, analyticsService, authenticator)

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s in %s mode...", cfg.ListenAddr, cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or server failure
	select {
	case err := <-errChan:
		db.Close()
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	// Cleanup resources
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	log.Println("Shutdown completed")
	return nil
}
