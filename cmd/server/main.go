package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"halidom/internal/auth"
	"halidom/internal/config"
	"halidom/internal/handler"
	"halidom/internal/middleware"
	"halidom/internal/repository/postgres"
	"halidom/internal/service"
	servicePost "halidom/internal/service/post"
	serviceSync "halidom/internal/service/sync"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	// Optionally tee logs to a timestamped file (keeps the 5 most recent)
	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, 5)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create JWT verifier
	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create table names and make sure the schema exists
	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	sequenceAllocator := postgres.NewSequenceAllocator(repoConfig)
	postRepo := postgres.NewPostRepository(repoConfig)
	keyPointRepo := postgres.NewKeyPointRepository(repoConfig)
	unitNameRepo := postgres.NewUnitNameRepository(repoConfig)
	userSettingsRepo := postgres.NewUserSettingsRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Create services
	analysisService := servicePost.NewAnalysisService(sequenceAllocator, postRepo, logger)
	questService := servicePost.NewQuestService(sequenceAllocator, postRepo, logger)
	miscService := servicePost.NewMiscService(sequenceAllocator, postRepo, logger)
	keyPointService := serviceSync.NewKeyPointService(keyPointRepo, txManager, logger)
	unitNameService := serviceSync.NewUnitNameService(unitNameRepo, txManager, logger)
	userSettingsService := service.NewUserSettingsService(userSettingsRepo, logger)

	// Create handlers
	analysisHandler := handler.NewAnalysisHandler(analysisService, logger)
	questHandler := handler.NewQuestHandler(questService, logger)
	miscHandler := handler.NewMiscHandler(miscService, logger)
	keyPointHandler := handler.NewKeyPointHandler(keyPointService, logger)
	unitNameHandler := handler.NewUnitNameHandler(unitNameService, logger)
	userSettingsHandler := handler.NewUserSettingsHandler(userSettingsService, logger)
	healthHandler := handler.NewHealthHandler(pool)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", healthHandler.Check)

	// Analysis routes
	mux.HandleFunc("POST /api/analyses", middleware.RequireAdmin(analysisHandler.Publish))
	mux.HandleFunc("GET /api/analyses", analysisHandler.List)
	mux.HandleFunc("GET /api/analyses/availability", analysisHandler.Availability)
	mux.HandleFunc("GET /api/analyses/{id}", analysisHandler.Get)
	mux.HandleFunc("PATCH /api/analyses/{id}", middleware.RequireAdmin(analysisHandler.Edit))

	// Quest routes
	mux.HandleFunc("POST /api/quests", middleware.RequireAdmin(questHandler.Publish))
	mux.HandleFunc("GET /api/quests", questHandler.List)
	mux.HandleFunc("GET /api/quests/availability", questHandler.Availability)
	mux.HandleFunc("GET /api/quests/{id}", questHandler.Get)
	mux.HandleFunc("PATCH /api/quests/{id}", middleware.RequireAdmin(questHandler.Edit))

	// Misc article routes
	mux.HandleFunc("POST /api/articles", middleware.RequireAdmin(miscHandler.Publish))
	mux.HandleFunc("GET /api/articles", miscHandler.List)
	mux.HandleFunc("GET /api/articles/availability", miscHandler.Availability)
	mux.HandleFunc("GET /api/articles/{id}", miscHandler.Get)
	mux.HandleFunc("PATCH /api/articles/{id}", middleware.RequireAdmin(miscHandler.Edit))

	// Key point and unit name reference routes
	mux.HandleFunc("GET /api/key-points", keyPointHandler.GetAll)
	mux.HandleFunc("PUT /api/key-points", middleware.RequireAdmin(keyPointHandler.Sync))
	mux.HandleFunc("GET /api/unit-names", unitNameHandler.GetAll)
	mux.HandleFunc("PUT /api/unit-names", middleware.RequireAdmin(unitNameHandler.Sync))

	// User settings routes
	mux.HandleFunc("GET /api/users/me/settings", userSettingsHandler.GetSettings)
	mux.HandleFunc("PATCH /api/users/me/settings", userSettingsHandler.UpdateSettings)

	// Build middleware chain
	var srvHandler http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	srvHandler = middleware.Auth(jwtVerifier, "/health")(srvHandler)
	srvHandler = middleware.Recovery(logger)(srvHandler)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	srvHandler = corsHandler.Handler(srvHandler)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srvHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
