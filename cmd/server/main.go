package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/davidriles/folio/internal/api"
	"github.com/davidriles/folio/internal/config"
	"github.com/davidriles/folio/internal/fetch"
	"github.com/davidriles/folio/internal/library"
	"github.com/davidriles/folio/internal/pipeline"
	"github.com/davidriles/folio/internal/summarize"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage and clients.
	store, err := library.NewFileStore(cfg.LibraryDir)
	if err != nil {
		log.Error("failed to open library", "dir", cfg.LibraryDir, "error", err)
		os.Exit(1)
	}

	fetcher := fetch.NewFetcher(fetch.Options{
		Timeout:           cfg.FetchTimeout,
		UserAgent:         cfg.FetchUserAgent,
		MaxBytes:          cfg.FetchMaxBytes,
		RequestsPerSecond: cfg.FetchRatePerSec,
		Burst:             cfg.FetchBurst,
		CacheTTL:          cfg.FetchCacheTTL,
	})

	var stats *summarize.Stats
	var summarizer *summarize.Client
	if cfg.SummarizerEnabled() {
		stats = summarize.NewStats(time.Hour)
		summarizer, err = summarize.NewClient(summarize.Options{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Timeout: cfg.OpenAITimeout,
		}, stats)
		if err != nil {
			log.Error("failed to configure summarizer", "error", err)
			os.Exit(1)
		}
	} else {
		log.Info("summarizer disabled, no OPENAI_API_KEY set")
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, fetcher, store, summarizer, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting folio", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
