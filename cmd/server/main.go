package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dandantas/physicsai/internal/config"
	"github.com/dandantas/physicsai/internal/database"
	"github.com/dandantas/physicsai/internal/handler"
	"github.com/dandantas/physicsai/internal/llm"
	"github.com/dandantas/physicsai/internal/media"
	"github.com/dandantas/physicsai/internal/model"
	"github.com/dandantas/physicsai/internal/render"
	"github.com/dandantas/physicsai/internal/scheduler"
	"github.com/dandantas/physicsai/internal/service"
	"github.com/dandantas/physicsai/pkg/middleware"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	config.InitLogger(cfg)

	slog.Info("Starting PhysicsAI Simulation Service", "version", version)

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to MongoDB when the render-history archive is configured
	var db *database.MongoDB
	var renderRepo *database.RenderRepository
	if cfg.ArchiveEnabled() {
		var err error
		db, err = database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTimeout)
		if err != nil {
			slog.Error("Failed to connect to MongoDB", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := db.Disconnect(context.Background()); err != nil {
				slog.Error("Failed to disconnect from MongoDB", "error", err)
			}
		}()

		if err := database.CreateIndexes(ctx, db); err != nil {
			slog.Error("Failed to create indexes", "error", err)
			os.Exit(1)
		}

		renderRepo = database.NewRenderRepository(db)
	} else {
		slog.Info("Render history archive disabled, MONGO_URI not set")
	}

	// Initialize LLM gateway with retry on transient failures
	gemini := llm.NewGeminiClient(llm.GeminiOptions{
		APIKey:     cfg.GeminiAPIKey,
		Model:      cfg.GeminiModel,
		BaseURL:    cfg.GeminiBaseURL,
		HTTPClient: service.NewHTTPClient(cfg.GeminiTimeout),
	})
	gateway := llm.NewRetryingGateway(gemini)

	// Initialize render pipeline collaborators
	runner := render.NewManimRunner(cfg.RenderWorkRoot, cfg.RenderTimeout)
	uploader := media.NewCloudinaryClient(media.CloudinaryOptions{
		CloudName:  cfg.CloudinaryCloudName,
		APIKey:     cfg.CloudinaryAPIKey,
		APISecret:  cfg.CloudinaryAPISecret,
		Folder:     cfg.CloudinaryFolder,
		HTTPClient: service.NewHTTPClient(cfg.UploadTimeout),
	})

	// Initialize job store and services
	jobs := model.NewJobStore()

	var archiver service.Archiver
	if renderRepo != nil {
		archiver = renderRepo
	}

	loop := service.NewRenderLoop(gateway, runner, uploader, jobs, archiver, service.RenderLoopOptions{
		MaxAttempts:  cfg.RenderMaxAttempts,
		RepairStrict: cfg.RepairStrict,
		Temperature:  cfg.GeminiTemperature,
	})

	simulations := service.NewSimulationService(gateway, jobs, loop, service.SimulationOptions{
		Temperature: cfg.GeminiTemperature,
		MaxTokens:   cfg.GeminiMaxTokens,
	})

	// Initialize HTTP handlers
	router := handler.NewRouter(
		handler.NewSimulateHandler(simulations),
		handler.NewVideoHandler(simulations),
		handler.NewRepairHandler(simulations),
		handler.NewHistoryHandler(renderRepo),
		handler.NewHealthHandler(db, cfg.GeminiModel, cfg.GeminiAPIKey != "", version),
		middleware.CORSConfig{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   cfg.CORSAllowedMethods,
			AllowedHeaders:   cfg.CORSAllowedHeaders,
			AllowCredentials: cfg.CORSAllowCredentials,
			MaxAge:           cfg.CORSMaxAge,
		},
	)

	// Start the stale work directory sweeper
	var sweeper *scheduler.Sweeper
	if cfg.SweeperEnabled {
		sweeper = scheduler.NewSweeper(runner.WorkRoot(), cfg.SweeperSchedule, cfg.SweeperMaxAge)
		if err := sweeper.Start(); err != nil {
			slog.Error("Failed to start sweeper", "error", err)
			os.Exit(1)
		}
	}

	// Start HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router.Handler(),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	go func() {
		slog.Info("HTTP server listening",
			"port", cfg.HTTPPort,
			"model", cfg.GeminiModel,
			"render_max_attempts", cfg.RenderMaxAttempts,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	slog.Info("Received shutdown signal", "signal", sig.String())

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	if sweeper != nil {
		sweeper.Stop(shutdownCtx)
	}

	slog.Info("Shutdown complete")
}
