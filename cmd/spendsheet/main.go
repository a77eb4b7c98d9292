package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"spendsheet/internal/amqp"
	"spendsheet/internal/config"
	apphttp "spendsheet/internal/http"
	applog "spendsheet/internal/log"
	"spendsheet/internal/services"
	ports "spendsheet/internal/sheets"
	mem "spendsheet/internal/sheets/memory"
	"spendsheet/internal/sheets/public"
	"spendsheet/internal/storage"
)

// sampleSheetURL is the synthetic source connected automatically in memory
// mode; the memory backend ignores it.
const sampleSheetURL = "https://docs.google.com/spreadsheets/d/sample/edit#gid=0"

func main() {
	// Load .env file if present (ignore error in production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	settings, err := storage.NewSettingsStore(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open settings store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer settings.Close()

	var events *amqp.Client
	if cfg.AMQPURL != "" {
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// Event publishing is optional; the dashboard works without it.
			logger.Warn("AMQP unavailable, events disabled", "error", err)
		} else {
			defer events.Close()
			logger.Info("AMQP event publishing enabled", "exchange", cfg.AMQPExchange)
		}
	}

	var fetcher ports.SnapshotFetcher
	switch cfg.DataBackend {
	case "memory":
		fetcher = mem.NewWithSampleData(cfg.SampleSize)
		logger.Info("Initialized memory backend", "backend", cfg.DataBackend, "sample_size", cfg.SampleSize)
	default:
		fetcher = public.NewClient(cfg.FetchTimeout, public.DateOrder(cfg.DateOrder))
		logger.Info("Initialized sheet backend", "backend", cfg.DataBackend, "date_order", cfg.DateOrder)
	}

	refresher := services.NewRefresher(fetcher, settings, events)
	expenses := services.NewExpenseService(refresher, events, cfg.WebhookTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Restore the persisted connection, then fall back to the configured one.
	refresher.Resume(ctx)
	if !refresher.Status().Connected {
		switch {
		case cfg.SheetURL != "":
			if err := refresher.Connect(ctx, cfg.SheetURL, cfg.WebhookURL); err != nil {
				logger.Warn("Initial connect failed", "error", err)
			}
		case cfg.DataBackend == "memory":
			if err := refresher.Connect(ctx, sampleSheetURL, ""); err != nil {
				logger.Warn("Sample data connect failed", "error", err)
			}
		}
	}

	go refresher.Run(ctx, cfg.RefreshInterval)

	srv := apphttp.NewServer(":"+cfg.Port, refresher, expenses)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting spendsheet server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"refresh_interval", cfg.RefreshInterval.String())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
