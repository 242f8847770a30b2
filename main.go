package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	appLogger "github.com/vetnav/facility-agent/app/logger"
	"github.com/vetnav/facility-agent/app/observability/metrics"
	"github.com/vetnav/facility-agent/app/tracer"
	"github.com/vetnav/facility-agent/config"
	"github.com/vetnav/facility-agent/internal/api/facility"
	"github.com/vetnav/facility-agent/internal/api/finder"
	"github.com/vetnav/facility-agent/internal/api/geocoding"
	"github.com/vetnav/facility-agent/internal/api/textgen"
	"github.com/vetnav/facility-agent/internal/api/transit"
	"github.com/vetnav/facility-agent/internal/api/weather"
	"github.com/vetnav/facility-agent/internal/cache"
	appRouter "github.com/vetnav/facility-agent/internal/router"
)

func main() {
	// Use standard log until slog is configured, in case godotenv fails
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger()
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tracer.InitTracingAndMetrics(cfg.Handlers.Prometheus.Port)
	metrics.InitAppMetrics()

	// --- Dependency Injection ---
	store := cache.NewMemoryStore(cfg.Facilities.CacheTTL)

	resolver := geocoding.NewNominatimResolver(
		cfg.Geocoding.BaseURL, cfg.Geocoding.UserAgent, cfg.Geocoding.Timeout, logger)

	directory := facility.NewVADirectory(
		cfg.Facilities.BaseURL, os.Getenv("VA_API_KEY"),
		cfg.Facilities.DefaultRadius, cfg.Facilities.MaxResults,
		cfg.Facilities.Timeout, cfg.Facilities.CacheTTL, store, logger)

	weatherProvider := weather.NewOpenWeatherMap(
		cfg.Weather.BaseURL, os.Getenv("OPENWEATHER_API_KEY"),
		cfg.Weather.Timeout, cfg.Weather.CacheTTL, store, logger)

	directions := transit.NewGoogleDirections(
		cfg.Transit.BaseURL, os.Getenv("GOOGLE_MAPS_API_KEY"), cfg.Transit.Timeout, logger)
	planner := transit.NewPlanner(directions, store, cfg.Transit.CacheTTL, logger)

	generator, err := setupGenerator(ctx, &cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize text generator", slog.Any("error", err))
		os.Exit(1)
	}
	analyzer := textgen.NewAnalyzer(generator, logger)

	facilityService := finder.NewService(resolver, directory, weatherProvider, planner, analyzer, logger)
	facilityHandler := finder.NewHandler(facilityService, cfg.Facilities.DefaultRadius, logger)

	mainRouter := appRouter.SetupRouter(&appRouter.Config{
		FacilityHandler: facilityHandler,
	})

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appLogger.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(cfg.Server.Timeout))
	router.Use(middleware.Compress(5, "application/json"))
	router.Mount("/", mainRouter)

	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:    serverAddress,
		Handler: router,
		// WriteTimeout is deliberately generous: find-stream holds the
		// response open while the pipeline runs.
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()

	logger.Info("Shutdown signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}

	logger.Info("Application shut down complete.")
}

// setupGenerator picks the text generation backend from config. Ollama is the
// default; Gemini requires GEMINI_API_KEY.
func setupGenerator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (textgen.Generator, error) {
	switch cfg.LLM.Provider {
	case "gemini":
		return textgen.NewGemini(ctx, os.Getenv("GEMINI_API_KEY"),
			cfg.LLM.Model, cfg.LLM.Temperature, cfg.LLM.MaxTokens, logger)
	default:
		return textgen.NewOllama(cfg.LLM.BaseURL, cfg.LLM.Model,
			cfg.LLM.Temperature, cfg.LLM.MaxTokens,
			cfg.LLM.GenerateTimeout, cfg.LLM.AnalysisTimeout, cfg.LLM.AvailabilityTimeout,
			logger), nil
	}
}

// setupLogger configures and returns the application logger.
func setupLogger() *slog.Logger {
	var logger *slog.Logger
	env := os.Getenv("APP_ENV")

	if env == "development" || env == "" {
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)")
	} else {
		jsonOpts := &slog.HandlerOptions{
			Level:     slog.LevelInfo,
			AddSource: false,
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	}
	return logger
}
