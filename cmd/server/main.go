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

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/AnshRaj112/travel-journal-backend/internal/config"
	"github.com/AnshRaj112/travel-journal-backend/internal/database"
	"github.com/AnshRaj112/travel-journal-backend/internal/handlers"
	"github.com/AnshRaj112/travel-journal-backend/internal/logging"
	"github.com/AnshRaj112/travel-journal-backend/internal/routes"
	"github.com/AnshRaj112/travel-journal-backend/internal/services"
	"github.com/AnshRaj112/travel-journal-backend/pkg/token"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()
	logger, err := logging.New(cfg.IsProduction())
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
	if err != nil {
		return err
	}
	defer database.Disconnect(client)

	if err := database.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	logger.Info("MongoDB indexes ensured")

	redisClient, err := database.ConnectRedis(ctx, cfg.RedisURI, logger)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	} else {
		logger.Warn("REDIS_URI not set: feed cache disabled, notifications delivered in-process only")
	}

	media, uploadsDir, err := newMediaStore(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info("media backend ready", zap.String("backend", cfg.MediaBackend))

	users := services.NewMongoUserStore(db, cfg.DBTimeout, cfg.MongoTransactions, logger)
	journals := services.NewMongoJournalStore(db, cfg.DBTimeout)
	notificationStore := services.NewMongoNotificationStore(db, cfg.DBTimeout)

	hub := services.NewHub(redisClient, logger)
	hub.Start(ctx)

	notifications := services.NewNotificationService(notificationStore, users, hub, logger)
	authService := services.NewAuthService(users, token.NewIssuer(cfg.JWTSecret, cfg.TokenTTL), cfg.BcryptCost, logger)
	feedCache := services.NewFeedCache(redisClient, cfg.FeedCacheTTL, logger)
	journalService := services.NewJournalService(services.JournalServiceDeps{
		Journals:     journals,
		Users:        users,
		Media:        media,
		Cache:        feedCache,
		Notifier:     notifications,
		ShareBaseURL: cfg.ShareBaseURL,
		Log:          logger,
	})
	socialService := services.NewSocialService(users, journals, media, feedCache, notifications, logger)
	intake := services.NewMediaIntake(media, services.MediaPolicy{
		MaxBytes:      cfg.MediaMaxBytes,
		RestrictTypes: cfg.MediaRestrictTypes,
		AllowedTypes:  cfg.MediaAllowedTypes,
		MaxFiles:      cfg.MaxJournalImages,
	}, logger)

	h := handlers.New(handlers.Deps{
		Auth:          authService,
		Journals:      journalService,
		Social:        socialService,
		Notifications: notifications,
		Media:         intake,
		Health:        database.Pinger{Client: client},
		Log:           logger,
		Production:    cfg.IsProduction(),
	})
	router := routes.NewRouter(h, routes.Options{
		Resolver:       authService,
		Log:            logger,
		AllowedOrigins: cfg.AllowedOrigins,
		Production:     cfg.IsProduction(),
		UploadsDir:     uploadsDir,
		TrustProxy:     cfg.TrustProxy,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("travel journal backend listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newMediaStore builds the configured backend. uploadsDir is non-empty only
// for the local backend, whose files the server serves itself.
func newMediaStore(ctx context.Context, cfg *config.Config) (services.MediaStore, string, error) {
	switch cfg.MediaBackend {
	case config.MediaBackendCloudinary:
		store, err := services.NewCloudinaryMediaStore(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		return store, "", err
	case config.MediaBackendMinio:
		store, err := services.NewMinioMediaStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL, cfg.MinioPublicURL)
		return store, "", err
	default:
		store, err := services.NewLocalMediaStore(cfg.UploadsDir, cfg.AppURL)
		if err != nil {
			return nil, "", err
		}
		return store, store.Dir(), nil
	}
}
