package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devstreak/internal/config"
	"devstreak/internal/content"
	"devstreak/internal/identity"
	"devstreak/internal/payments"
	"devstreak/internal/server"
	"devstreak/internal/storage/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	addrFlag := flag.String("addr", cfg.Addr, "HTTP listen address")
	dbFlag := flag.String("db", cfg.DatabasePath, "Path to sqlite database file")
	staticFlag := flag.String("static", cfg.StaticDir, "Directory with built dashboard")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	logger.Info("devstreak starting",
		slog.String("payments_env", cfg.PaymentEnvironment),
		slog.Bool("content_generation", cfg.AnthropicAPIKey != ""))

	store, err := sqlite.Open(*dbFlag, logger)
	if err != nil {
		logger.Error("unable to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	srv := server.New(server.Options{
		Store:       store,
		Verifier:    identity.NewHTTPVerifier(cfg.IdentityVerifyURL),
		Generator:   content.NewAnthropicGenerator(cfg.AnthropicAPIKey, cfg.AnthropicModel),
		Payments:    payments.NewHTTPProvider(cfg),
		Catalog:     payments.NewCatalog(cfg),
		Logger:      logger,
		StaticDir:   *staticFlag,
		SiteBaseURL: cfg.SiteBaseURL,
	})

	httpServer := &http.Server{
		Addr:    *addrFlag,
		Handler: srv.Engine(),
	}

	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
