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

	"github.com/gin-gonic/gin"

	"github.com/sushilghimire07/Social-Media-App/internal/cache"
	"github.com/sushilghimire07/Social-Media-App/internal/config"
	"github.com/sushilghimire07/Social-Media-App/internal/domain"
	"github.com/sushilghimire07/Social-Media-App/internal/events"
	"github.com/sushilghimire07/Social-Media-App/internal/handler"
	"github.com/sushilghimire07/Social-Media-App/internal/hub"
	"github.com/sushilghimire07/Social-Media-App/internal/media"
	"github.com/sushilghimire07/Social-Media-App/internal/repository"
	"github.com/sushilghimire07/Social-Media-App/internal/service"
	"github.com/sushilghimire07/Social-Media-App/pkg/database"
	"github.com/sushilghimire07/Social-Media-App/pkg/jwt"
	pkglog "github.com/sushilghimire07/Social-Media-App/pkg/log"
	"github.com/sushilghimire07/Social-Media-App/pkg/middleware"
	"github.com/sushilghimire07/Social-Media-App/pkg/storage"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// 2. Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Level == "debug",
		ServiceName: "api-server",
	})
	logger := pkglog.L()

	// 3. Init DB (GORM, auto-migrate all models)
	dbConfig := &database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		FilePath:        cfg.Database.FilePath,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	db, err := database.New(dbConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to get underlying sql.DB")
	}
	defer sqlDB.Close()

	if err := database.AutoMigrate(db,
		&domain.UserModel{},
		&domain.FollowModel{},
		&domain.ConnectionModel{},
		&domain.PostModel{},
		&domain.PostLikeModel{},
		&domain.StoryModel{},
		&domain.MessageModel{},
	); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Msg("database migration completed")

	// 4. Init profile cache
	var userCache cache.UserCache
	if rc, err := cache.NewRedisUserCache(cfg.Redis, cfg.Cache.Prefix); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, profile cache disabled")
	} else {
		userCache = rc
		defer rc.Close()
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}

	// 5. Init storage + media processor
	store, err := newStorage(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	processor := media.NewImageProcessor(store, cfg.Media.MaxImageWidth, cfg.Media.JPEGQuality)

	// 6. Init Kafka producer
	var producer events.Producer
	if cfg.Kafka.Brokers != "" {
		p, err := events.NewConfluentProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to create kafka producer, event emission disabled")
		} else {
			producer = p
			defer p.Close()
			logger.Info().Str("topic", cfg.Kafka.Topic).Msg("kafka producer started")
		}
	} else {
		logger.Warn().Msg("KAFKA_BROKERS not configured; event emission disabled")
	}

	// 7. Create repositories
	userRepo := repository.NewGormUserRepository(db)
	followRepo := repository.NewGormFollowRepository(db)
	connectionRepo := repository.NewGormConnectionRepository(db)
	postRepo := repository.NewGormPostRepository(db)
	storyRepo := repository.NewGormStoryRepository(db)
	messageRepo := repository.NewGormMessageRepository(db)

	// 8. Create the live hub
	liveHub := hub.NewHub()
	defer liveHub.Close()

	// 9. Create services
	userService := service.NewUserService(userRepo, followRepo, connectionRepo, postRepo, processor, userCache, cfg.Cache.TTL)
	connectionService := service.NewConnectionService(connectionRepo, userRepo, producer)
	postService := service.NewPostService(postRepo, userRepo, followRepo, connectionRepo, processor)
	storyService := service.NewStoryService(storyRepo, userRepo, followRepo, connectionRepo, processor, producer)
	messageService := service.NewMessageService(messageRepo, userRepo, processor, liveHub)

	// 10. Create auth middleware
	verifier, err := newVerifier(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create token verifier")
	}
	authMiddleware := middleware.NewAuthMiddleware(verifier)

	// 11. Setup Gin router + HTTP server
	httpHandler := handler.NewHandler(userService, connectionService, postService, storyService, messageService, liveHub, authMiddleware)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	if cfg.Storage.Backend == "local" {
		r.Static("/uploads", cfg.Storage.Local.BasePath)
	}

	httpHandler.RegisterRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Str("driver", cfg.Database.Driver).Msg("api server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// 12. Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down api server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	liveHub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("api server stopped")
}

func newStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Backend {
	case "s3":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return storage.NewS3Storage(ctx, storage.S3Config{
			Endpoint:        cfg.Storage.S3.Endpoint,
			Region:          cfg.Storage.S3.Region,
			Bucket:          cfg.Storage.S3.Bucket,
			AccessKeyID:     cfg.Storage.S3.AccessKeyID,
			SecretAccessKey: cfg.Storage.S3.SecretAccessKey,
			UsePathStyle:    cfg.Storage.S3.UsePathStyle,
			PublicURL:       cfg.Storage.S3.PublicBaseURL,
		})
	default:
		return storage.NewLocalStorage(storage.LocalConfig{
			BasePath: cfg.Storage.Local.BasePath,
			BaseURL:  cfg.Storage.Local.BaseURL,
		})
	}
}

// newVerifier builds the token verifier. With no configured public key an
// in-process RSA keypair is generated, which only suits development.
func newVerifier(cfg *config.Config) (jwt.Verifier, error) {
	if cfg.Auth.PublicKeyPEM != "" {
		return jwt.NewVerifier([]byte(cfg.Auth.PublicKeyPEM), cfg.Auth.Issuer)
	}
	return jwt.NewManager(cfg.Auth.Issuer, cfg.Auth.TokenTTL)
}
