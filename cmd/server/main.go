package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"filevault/internal/auth"
	"filevault/internal/config"
	"filevault/internal/db"
	"filevault/internal/httpapi"
	"filevault/internal/logging"
	"filevault/internal/service"
	"filevault/internal/storage"
	"filevault/internal/store"

	"go.uber.org/zap"
)

func main() {
	if err := config.LoadDotEnv(".env.local", ".env"); err != nil {
		log.Fatalf("load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	blobs, err := newBlobStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	scheme, err := auth.SchemeByName(cfg.PasswordScheme)
	if err != nil {
		return err
	}
	if scheme.Name() == config.PasswordSchemePlain {
		logger.Warn("passwords are stored in plain text, set PASSWORD_SCHEME=bcrypt to hash them")
	}

	st := store.New(pool)
	svc := service.New(service.Options{
		Directory:          st,
		Blobs:              blobs,
		PasswordScheme:     scheme,
		Logger:             logger,
		DefaultMaxFileSize: cfg.DefaultMaxFileSize,
	})

	if cfg.Bootstrap {
		created, err := svc.BootstrapAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		if created {
			announceAdmin(logger, cfg.AdminUsername, cfg.AdminPassword)
		}
		limit, err := svc.EnsureMaxFileSize(ctx)
		if err != nil {
			return fmt.Errorf("bootstrap max file size: %w", err)
		}
		logger.Info("max file size in effect", zap.Int64("max_file_size", limit))
	}

	authn := auth.NewAuthenticator(st, scheme)
	api := httpapi.New(cfg, svc, authn, logger)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      api.NewEcho(),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", cfg.ListenAddr),
			zap.String("storage_backend", cfg.StorageBackend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// announceAdmin prints the credentials of a freshly created admin account.
// It runs once, on the start that created the account.
func announceAdmin(logger *zap.Logger, username, password string) {
	logger.Warn("administrator account created, change its password",
		zap.String("username", username),
		zap.String("password", password))
}

func newBlobStorage(ctx context.Context, cfg config.Config) (storage.BlobStorage, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendS3:
		client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Region:       cfg.S3Region,
			Endpoint:     cfg.S3Endpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			UsePathStyle: cfg.S3UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		return storage.NewS3BlobStore(storage.S3Options{
			Client: client,
			Bucket: cfg.S3Bucket,
			Prefix: cfg.S3Prefix,
		}), nil
	default:
		return storage.NewLocalBlobStore(cfg.StorageRoot)
	}
}
