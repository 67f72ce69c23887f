package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/coderedlink/coderedlink/internal/config"
	"github.com/coderedlink/coderedlink/internal/handler"
	"github.com/coderedlink/coderedlink/internal/logger"
	"github.com/coderedlink/coderedlink/internal/middleware"
	"github.com/coderedlink/coderedlink/internal/repository"
	"github.com/coderedlink/coderedlink/internal/service"
	"github.com/coderedlink/coderedlink/internal/worker"
)

func main() {
	// ============================================================
	// LOAD CONFIGURATION
	// ============================================================
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log)
	log.Info("starting coderedlink",
		"environment", cfg.App.Environment,
		"port", cfg.Server.Port,
		"driver", cfg.Database.Driver,
		"base_url", cfg.App.BaseURL)

	// ============================================================
	// INITIALIZE LAYERS
	// ============================================================
	repo, err := repository.New(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Error("failed to initialize database", "error", err.Error())
		os.Exit(1)
	}

	svc := service.NewLinkService(repo, service.Options{
		CodeLength:   cfg.Codes.Length,
		CustomMin:    cfg.Codes.CustomMin,
		CustomMax:    cfg.Codes.CustomMax,
		MaxAttempts:  cfg.Codes.MaxAttempts,
		ReuseDeleted: cfg.Codes.ReuseDeleted,
		ListLimit:    cfg.App.ListLimit,
	})

	recorder := worker.NewRecorder(repo, log, cfg.Analytics.BufferSize)
	recorder.Start(cfg.Analytics.Workers)

	h := handler.NewLinkHandler(svc, recorder, log, cfg.App.NotFoundPath)
	router := h.SetupRoutes()

	// ============================================================
	// BUILD MIDDLEWARE CHAIN
	// ============================================================
	middlewares := []middleware.Middleware{
		middleware.RequestID,
		middleware.RecoveryWithLogger(log),
		middleware.LoggingWithLogger(log),
	}
	if cfg.RateLimit.Enabled {
		rateLimiter := middleware.NewRateLimiter(
			middleware.RateLimiterConfig{
				Rate:     cfg.RateLimit.Rate,
				Burst:    cfg.RateLimit.Burst,
				Interval: cfg.RateLimit.Interval,
				Cleanup:  cfg.RateLimit.Cleanup,
			},
			log,
		)
		middlewares = append(middlewares, rateLimiter.Middleware())
		log.Info("rate limiter enabled",
			"rate", cfg.RateLimit.Rate,
			"burst", cfg.RateLimit.Burst,
		)
	}

	wrappedRouter := middleware.Chain(router, middlewares...)

	// ============================================================
	// CREATE SERVER WITH CONFIG TIMEOUTS
	// ============================================================
	addr := ":" + cfg.Server.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      wrappedRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)

	go func() {
		log.Info("server listening", "addr", addr)
		serverErr <- server.ListenAndServe()
	}()

	// ============================================================
	// WAIT FOR SHUTDOWN OR ERROR
	// ============================================================
	select {
	case err := <-serverErr:
		log.Error("server error", "error", err.Error())
		os.Exit(1)

	case sig := <-shutdown:
		log.Info("shutdown signal received", "signal", sig.String())
		ctx, cancel := context.WithTimeout(
			context.Background(),
			cfg.Server.ShutdownTimeout,
		)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "error", err.Error())
			if err := server.Close(); err != nil {
				log.Error("forced shutdown failed", "error", err.Error())
			}
		}

		// Drain pending click events before closing the store.
		recorder.Close()

		if err := repo.Close(); err != nil {
			log.Error("failed to close database", "error", err.Error())
		}

		log.Info("server stopped")
	}
}
