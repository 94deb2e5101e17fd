package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sushilghimire07/Social-Media-App/internal/cache"
	"github.com/sushilghimire07/Social-Media-App/internal/config"
	"github.com/sushilghimire07/Social-Media-App/internal/domain"
	"github.com/sushilghimire07/Social-Media-App/internal/mailer"
	"github.com/sushilghimire07/Social-Media-App/internal/media"
	"github.com/sushilghimire07/Social-Media-App/internal/repository"
	"github.com/sushilghimire07/Social-Media-App/internal/service"
	"github.com/sushilghimire07/Social-Media-App/internal/worker"
	"github.com/sushilghimire07/Social-Media-App/pkg/database"
	pkglog "github.com/sushilghimire07/Social-Media-App/pkg/log"
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
		ServiceName: "worker",
	})
	logger := pkglog.L()

	// 3. Init DB. The server owns migration; the worker migrates too so it
	// can run standalone in development.
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

	// 4. Init profile cache (for invalidation on identity sync)
	var userCache cache.UserCache
	if rc, err := cache.NewRedisUserCache(cfg.Redis, cfg.Cache.Prefix); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, cache invalidation disabled")
	} else {
		userCache = rc
		defer rc.Close()
	}

	// 5. Init storage + media processor (story media deletion)
	store, err := newStorage(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	processor := media.NewImageProcessor(store, cfg.Media.MaxImageWidth, cfg.Media.JPEGQuality)

	// 6. Create repositories and services
	userRepo := repository.NewGormUserRepository(db)
	followRepo := repository.NewGormFollowRepository(db)
	connectionRepo := repository.NewGormConnectionRepository(db)
	postRepo := repository.NewGormPostRepository(db)
	storyRepo := repository.NewGormStoryRepository(db)
	messageRepo := repository.NewGormMessageRepository(db)

	identityService := service.NewIdentityService(userRepo, postRepo, userCache)
	storyService := service.NewStoryService(storyRepo, userRepo, followRepo, connectionRepo, processor, nil)

	mail := mailer.NewSMTPMailer(cfg.SMTP)

	// 7. Start the event consumer
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jobs := worker.NewJobs(identityService, storyService, userRepo, connectionRepo, mail, cfg.Worker.ReminderDelay)
	defer jobs.Close()

	consumer, err := worker.NewConfluentConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.ConsumerGroup, jobs)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create kafka consumer")
	}
	if err := consumer.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to start kafka consumer")
	}
	logger.Info().Str("topic", cfg.Kafka.Topic).Str("group", cfg.Kafka.ConsumerGroup).Msg("worker consuming events")

	// 8. Start the cron scheduler
	scheduler := worker.NewScheduler(userRepo, messageRepo, storyRepo, storyService, mail, cfg.Worker.DigestSchedule, cfg.Worker.SweepInterval)
	if err := scheduler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start scheduler")
	}

	// 9. Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down worker")

	cancel()
	scheduler.Stop()
	if err := consumer.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close kafka consumer")
	}

	logger.Info().Msg("worker stopped")
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
