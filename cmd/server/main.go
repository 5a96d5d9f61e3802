package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"stride/internal/capabilities"
	"stride/internal/config"
	"stride/internal/handler"
	"stride/internal/handler/sse"
	"stride/internal/middleware"
	"stride/internal/observability"
	"stride/internal/repository/postgres"
	postgresPlan "stride/internal/repository/postgres/plan"
	serviceLLM "stride/internal/service/llm"
	"stride/internal/service/llm/tools"
	servicePlan "stride/internal/service/plan"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, closeLog, err := config.NewLogger(cfg, "server")
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"provider", cfg.Provider,
		"model", cfg.Model,
		"version", version,
	)

	sentryEnabled, err := observability.InitSentry(cfg, version)
	if err != nil {
		logger.Warn("sentry initialization failed", "error", err)
	} else if sentryEnabled {
		logger.Info("sentry initialized")
		defer observability.Flush()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Setup LLM providers
	factory := serviceLLM.NewProviderFactory(cfg, logger)
	providerRegistry := serviceLLM.NewProviderRegistry(factory, cfg.Provider)
	if err := providerRegistry.Validate(); err != nil {
		log.Fatalf("Failed to setup LLM providers: %v", err)
	}
	defaultTransport, err := providerRegistry.GetProvider(cfg.Provider)
	if err != nil {
		log.Fatalf("Failed to setup LLM providers: %v", err)
	}
	catalog := serviceLLM.NewModelCatalog(defaultTransport, cfg.ModelCatalogTTL, nil)

	// Initialize capability registry
	capabilityRegistry, err := capabilities.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize capability registry: %v", err)
	}
	logger.Info("capability registry initialized")

	toolRegistry := tools.NewToolRegistryBuilder(logger).
		WithConfig(&tools.ToolConfig{MaxProgressionWeeks: cfg.MaxProgressionWeeks}).
		WithTrainingTools().
		Build()

	sessions := servicePlan.NewSessionRegistry(cfg.SessionRetention, nil)
	go sessions.StartCleanup(ctx, time.Minute)

	opts := []servicePlan.Option{
		servicePlan.WithCapabilities(capabilityRegistry),
	}
	if sentryEnabled {
		opts = append(opts, servicePlan.WithFailureReporter(observability.NewSentryReporter(nil)))
	}

	// Persistence is optional; without DATABASE_URL plans are returned but not stored.
	var planHandler *handler.PlanHandler
	if cfg.DatabaseURL != "" {
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()

		store := postgresPlan.NewStore(&postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(cfg.TablePrefix),
			Logger: logger,
		}, postgres.NewTransactionManager(pool, logger))
		if err := store.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to ensure schema: %v", err)
		}
		logger.Info("database connected", "table_prefix", cfg.TablePrefix)

		opts = append(opts, servicePlan.WithStore(store))
		planHandler = handler.NewPlanHandler(store, logger)
	}

	planService := servicePlan.NewService(
		servicePlan.ServiceConfig{
			DefaultModel: cfg.Model,
			MaxTokens:    cfg.MaxTokens,
			MaxRounds:    cfg.MaxRounds,
		},
		providerRegistry,
		toolRegistry,
		sessions,
		logger,
		opts...,
	)

	generationHandler := handler.NewGenerationHandler(planService, sse.DefaultConfig(), logger)
	modelsHandler := handler.NewModelsHandler(cfg, logger, capabilityRegistry, catalog)
	credentialHandler := handler.NewCredentialHandler(defaultTransport, logger)
	toolHandler := handler.NewToolHandler(toolRegistry, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.HealthCheck)

	// Generation routes
	mux.HandleFunc("POST /api/generations", generationHandler.Create)
	mux.HandleFunc("GET /api/generations/{id}", generationHandler.Get)
	mux.HandleFunc("GET /api/generations/{id}/events", generationHandler.Events) // SSE status stream
	mux.HandleFunc("POST /api/generations/{id}/response", generationHandler.Respond)
	mux.HandleFunc("POST /api/generations/{id}/cancel-input", generationHandler.CancelInput)
	mux.HandleFunc("DELETE /api/generations/{id}", generationHandler.Cancel)

	// Model and credential routes
	mux.HandleFunc("GET /api/models", modelsHandler.GetModels)
	mux.HandleFunc("POST /api/credentials/validate", credentialHandler.Validate)

	// Deterministic tools
	mux.HandleFunc("GET /api/tools", toolHandler.List)
	mux.HandleFunc("POST /api/tools/{name}", toolHandler.Run)

	if planHandler != nil {
		mux.HandleFunc("GET /api/plans/{id}", planHandler.GetPlan)
	}

	// Build middleware chain
	// Order: CORS → Logging → Recovery → Routes
	var h http.Handler = mux
	h = middleware.Recovery(logger)(h)
	h = middleware.Logging(logger)(h)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "Last-Event-ID"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("server stopped")
}
