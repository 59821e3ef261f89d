package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/waitwell/edflow/backend/internal/adapters/cache"
	"github.com/waitwell/edflow/backend/internal/adapters/database"
	"github.com/waitwell/edflow/backend/internal/adapters/events"
	"github.com/waitwell/edflow/backend/internal/adapters/providers/hospital"
	"github.com/waitwell/edflow/backend/internal/api/handlers"
	"github.com/waitwell/edflow/backend/internal/api/routes"
	"github.com/waitwell/edflow/backend/internal/application/services"
	"github.com/waitwell/edflow/backend/internal/domain/identity"
	"github.com/waitwell/edflow/backend/internal/infrastructure/clients/openai"
	"github.com/waitwell/edflow/backend/internal/infrastructure/clients/postgres"
	"github.com/waitwell/edflow/backend/internal/infrastructure/clients/redis"
	"github.com/waitwell/edflow/backend/internal/infrastructure/notifications"
	"github.com/waitwell/edflow/backend/internal/infrastructure/observability"
	"github.com/waitwell/edflow/backend/pkg/config"
	"github.com/waitwell/edflow/backend/pkg/secrets"
)

func main() {

	// Pull secrets (SMTP, OpenAI) into the environment before the
	// config reads it. A misconfigured Vault is not fatal; the affected
	// features simply stay disabled.
	vaultResult, vaultErr := secrets.ApplyVaultSecrets(context.Background(), secrets.LoadVaultConfigFromEnv(""))
	if vaultErr != nil {
		log.Printf("Warning: Failed to load Vault secrets: %v", vaultErr)
	} else if vaultResult.Enabled {
		log.Printf("Loaded %d secrets from Vault path %s", vaultResult.Loaded, vaultResult.Path)
	}

	// Load configuration

	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Environment)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Redis backs the last-good snapshot cache and the journey event
	// stream, so unlike a plain response cache it is required.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize Redis client: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis client initialized successfully")

	// Initialize adapters

	historyAdapter := database.NewVisitHistoryAdapter(pgClient)
	cacheProvider := cache.NewRedisAdapter(redisClient)
	eventBus := events.NewRedisEventBus(redisClient)
	log.Println("Event bus initialized successfully")

	hospitalProvider := hospital.NewProviderFromConfig(cfg.Hospital)
	if cfg.Hospital.BaseURL == "" {
		log.Println("Warning: HOSPITAL_BASE_URL is not set; using mock hospital provider")
	} else {
		log.Printf("Hospital provider initialized (schema=%s)", cfg.Hospital.Schema)
	}

	// Initialize services

	sessionService := services.NewJourneySessionService(
		hospitalProvider,
		cacheProvider,
		eventBus,
		historyAdapter,
		cfg.Hospital.PollInterval,
	)

	validator, err := identity.NewValidator(cfg.Identity.PublicOrigin)
	if err != nil {
		log.Fatalf("Failed to initialize wristband validator: %v", err)
	}

	var assistantService *services.AssistantService
	if cfg.OpenAI.APIKey == "" {
		log.Println("Warning: OPENAI_API_KEY is not set; assistant disabled")
	} else {
		openaiClient, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			log.Printf("Warning: Failed to initialize OpenAI client: %v", err)
		} else {
			assistantService = services.NewAssistantService(openaiClient, sessionService)
		}
	}

	var shareService *services.ShareService
	if cfg.SMTP.Username == "" {
		log.Println("Warning: SMTP_USERNAME is not set; status sharing disabled")
	} else {
		shareService = services.NewShareService(notifications.NewSMTPSender(cfg.SMTP), sessionService)
	}

	// Initialize handlers

	sessionHandler := handlers.NewSessionHandler(validator, sessionService)

	journeyHandler := handlers.NewJourneyHandler(sessionService, historyAdapter)

	var chatHandler *handlers.ChatHandler
	if assistantService != nil {
		chatHandler = handlers.NewChatHandler(assistantService)
	}

	var shareHandler *handlers.ShareHandler
	if shareService != nil {
		shareHandler = handlers.NewShareHandler(shareService)
	}

	sseHandler := handlers.NewSSEHandler(eventBus)

	// Set up router

	router := routes.NewRouter(
		sessionHandler,
		journeyHandler,
		chatHandler,
		shareHandler,
		sseHandler,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server. WriteTimeout stays unset because journey
	// streams hold their response open for the life of the session.
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Stop the active polling session before the server drains so no
	// commit races the event bus teardown.
	if patientID := sessionService.ActivePatientID(); patientID != "" {
		sessionService.StopSession(patientID)
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	// Close event bus
	if err := eventBus.Close(); err != nil {
		log.Printf("Error closing event bus: %v", err)
	}

	log.Println("Server stopped")
}
