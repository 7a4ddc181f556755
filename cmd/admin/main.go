package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cloudstorage "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"finitefield.org/tours-admin/internal/admin/httpserver"
	"finitefield.org/tours-admin/internal/admin/httpserver/middleware"
	"finitefield.org/tours-admin/internal/admin/pages"
	"finitefield.org/tours-admin/internal/platform/config"
	"finitefield.org/tours-admin/internal/platform/observability"
	"finitefield.org/tours-admin/internal/platform/storage"
	"finitefield.org/tours-admin/internal/translation"
)

func main() {
	rootCtx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	baseLogger, err := observability.NewLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("admin").With(zap.String("environment", cfg.Server.Environment))
	rootCtx = observability.WithLogger(rootCtx, logger)

	store, closeStore, err := buildStore(rootCtx, cfg.Pages)
	if err != nil {
		logger.Fatal("failed to initialise page store", zap.Error(err))
	}
	defer closeStore()

	locale, err := translation.LoadLocale(cfg.Translation.TargetLanguage)
	if err != nil {
		logger.Fatal("unsupported target language",
			zap.String("lang", cfg.Translation.TargetLanguage),
			zap.Strings("supported", translation.SupportedLanguages()),
			zap.Error(err),
		)
	}

	pageService, err := pages.NewService(pages.Deps{
		Store:     store,
		Locale:    locale,
		Extension: cfg.Pages.Extension,
		Sanitize:  cfg.Translation.SanitizeInput,
		Logger:    logger.Named("pages"),
	})
	if err != nil {
		logger.Fatal("failed to initialise page service", zap.Error(err))
	}

	authenticator, err := buildAuthenticator(rootCtx, cfg.Firebase)
	if err != nil {
		logger.Fatal("failed to initialise authenticator", zap.Error(err))
	}

	srv := httpserver.New(httpserver.Config{
		Address:       cfg.Server.Address,
		BasePath:      cfg.Server.APIBasePath,
		Authenticator: authenticator,
		Pages:         pageService,
		Logger:        logger,
		ReadTimeout:   cfg.Server.ReadTimeout,
		WriteTimeout:  cfg.Server.WriteTimeout,
		IdleTimeout:   cfg.Server.IdleTimeout,
	})

	ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	logger.Info("admin server listening",
		zap.String("addr", cfg.Server.Address),
		zap.String("base_path", cfg.Server.APIBasePath),
		zap.String("lang", locale.Code),
	)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		cancel()
		stop()
		os.Exit(1)
	}
	logger.Info("admin server stopped")
}

// buildStore selects Cloud Storage when a bucket is configured and the local
// page directory otherwise.
func buildStore(ctx context.Context, cfg config.PagesConfig) (storage.Store, func(), error) {
	if cfg.Bucket == "" {
		store, err := storage.NewLocalStore(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}

	client, err := cloudstorage.NewClient(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("storage client: %w", err)
	}
	store, err := storage.NewGCSStore(client, cfg.Bucket, storage.WithPrefix(cfg.Dir))
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return store, func() { _ = client.Close() }, nil
}

func buildAuthenticator(ctx context.Context, cfg config.FirebaseConfig) (middleware.Authenticator, error) {
	logger := observability.FromContext(ctx)
	if cfg.ProjectID == "" {
		logger.Warn("firebase project not set; using passthrough authenticator")
		return middleware.DefaultAuthenticator(), nil
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}

	logger.Info("firebase authenticator enabled", zap.String("project", cfg.ProjectID))
	return middleware.NewFirebaseAuthenticator(client), nil
}
