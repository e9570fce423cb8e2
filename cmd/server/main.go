package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snakechat-backend/internal/config"
	"snakechat-backend/internal/domain"
	"snakechat-backend/internal/gemini"
	"snakechat-backend/internal/handlers"
	"snakechat-backend/internal/logging"
	"snakechat-backend/internal/metrics"
	"snakechat-backend/internal/router"
	"snakechat-backend/internal/services"
)

func main() {
	if err := run(); err != nil {
		slog.Error("✗ startup failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// ──── Step 1: Load Environment Variables ────
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Info("🚀 Starting snake chat backend...")
	logger.Info("✓ Environment variables loaded", "env", cfg.Env)

	// ──── Step 2: Build Domain Filter ────
	keywords := domain.DefaultKeywords
	if cfg.KeywordsFile != "" {
		keywords, err = domain.LoadKeywordsFile(cfg.KeywordsFile)
		if err != nil {
			return err
		}
	}
	filter := domain.NewFilter(keywords)
	logger.Info("✓ Domain filter ready", "keywords", len(filter.Keywords()))

	// ──── Step 3: Initialize Gemini Client ────
	client, err := newGeminiClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()
	logger.Info("✓ Gemini client initialized", "transport", cfg.GeminiTransport)

	// ──── Step 4: Select Model ────
	selector := services.NewModelSelector(client, cfg.PreferredModel, logger)
	selection := selector.Static()
	if cfg.ModelProbe {
		probeCtx, cancel := context.WithTimeout(context.Background(), cfg.UpstreamTimeout)
		selection = selector.Probe(probeCtx)
		cancel()
	}
	logger.Info("✓ Using model", "model", selection.Active, "candidates", selection.Candidates, "probed", selection.Probed)

	// ──── Initialize Services & Handlers ────
	m := metrics.New()
	synth := services.NewSynthesizer(client, cfg.UpstreamTimeout, m, logger)
	chatService := services.NewChatService(filter, synth, selection, m, logger)
	chatHandler := handlers.NewChatHandler(chatService, client, logger)

	// ──── Step 5: Start HTTP Server ────
	r := router.New(chatHandler, m, cfg.CORSOrigin)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.UpstreamTimeout*time.Duration(len(selection.Candidates)) + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	logger.Info(fmt.Sprintf("✓ Server running on http://localhost:%s", cfg.Port))

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func newGeminiClient(cfg *config.Config) (gemini.Client, error) {
	if cfg.GeminiTransport == config.TransportSDK {
		client, err := gemini.NewSDKClient(context.Background(), cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	return gemini.NewRESTClient(cfg.GeminiAPIKey, cfg.GeminiAPIBase, nil), nil
}
