package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	oshttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"accordion/internal/api"
	"accordion/internal/auth"
	"accordion/internal/commands"
	"accordion/internal/config"
	"accordion/internal/content"
	"accordion/internal/faq"
	"accordion/internal/filestore"
	"accordion/internal/http"
	"accordion/internal/storage"
	"accordion/internal/stubs"
	"accordion/internal/ws"

	"golang.org/x/sync/errgroup"
)

func run(ctx context.Context, importFile string) error {
	cfg, err := config.Load(importFile != "")
	if err != nil {
		return err
	}

	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	if importFile != "" {
		return commands.Import(importFile, cfg)
	}

	bbStorage, err := storage.NewBboltStorage(cfg.DBFile)
	if err != nil {
		return err
	}
	defer func() { _ = bbStorage.Close() }()

	files, err := filestore.NewLocalFileStore(cfg.UploadsPath)
	if err != nil {
		return err
	}

	authenticator, err := auth.NewAuthenticator(ctx, auth.Config{
		Username:     cfg.AdminUser,
		PasswordHash: cfg.AdminPasswordHash,
	}, logger)
	if err != nil {
		return err
	}
	if !authenticator.Enabled() {
		logger.Warn("ADMIN_PASSWORD_HASH is not set, admin endpoints will refuse all requests")
	}

	hub := ws.NewHub(logger)
	renderer := content.New(content.WithLogger(logger))
	faqService := faq.NewService(ctx, bbStorage, renderer, hub, cfg.RenderCacheTTL)

	if cfg.SeedDemo {
		n, err := stubs.Seed(faqService)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info("seeded demo entries", "count", n)
		}
	}

	apiHandlers := api.New(faqService, files, bbStorage, api.Config{
		BaseURL:       cfg.BaseURL,
		MaxUploadSize: cfg.MaxUploadSize,
	}, logger)
	live := ws.NewServer(hub, faqService, logger)

	adminServer := http.NewAdminServer(authenticator, apiHandlers, live, cfg.AdminAddr, logger)
	apiServer := http.NewAPIServer(apiHandlers, cfg.APIAddr, logger)

	g, gCtx := errgroup.WithContext(ctx)

	// Start Admin Server
	g.Go(func() error {
		err := adminServer.Start()
		if err != nil && err != oshttp.ErrServerClosed {
			return err
		}
		return nil
	})

	// Start API Server
	g.Go(func() error {
		err := apiServer.Start()
		if err != nil && err != oshttp.ErrServerClosed {
			return err
		}
		return nil
	})

	// Wait for context cancellation (signal)
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down servers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := adminServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Admin server shutdown error", "error", err)
		}
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("API server shutdown error", "error", err)
		}
		return nil
	})

	return g.Wait()
}

func main() {
	importFile := flag.String("import", "", "YAML file with FAQ entries to create through the admin API of a running server")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *importFile); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Application error", "error", err)
		os.Exit(1)
	}
}
