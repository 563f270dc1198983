package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"forum-account/internal/config"
	"forum-account/internal/db"
	"forum-account/internal/email"
	apihttp "forum-account/internal/http"
	"forum-account/internal/repository"
	"forum-account/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var (
		userRepo    repository.UserRepository
		postRepo    repository.AuthorNameRepository
		commentRepo repository.AuthorNameRepository
		ping        apihttp.PingFunc
	)
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		if err := db.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal("db schema", zap.Error(err))
		}
		userRepo = repository.NewPgUserRepository(pool)
		postRepo = repository.NewPgPostAuthorRepository(pool)
		commentRepo = repository.NewPgCommentAuthorRepository(pool)
		ping = func(ctx context.Context) error { return db.Ping(ctx, pool) }
	default:
		client, err := db.NewMongoClient(ctx, cfg)
		if err != nil {
			logger.Fatal("mongo connect", zap.Error(err))
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Warn("mongo disconnect", zap.Error(err))
			}
		}()
		database := client.Database(cfg.MongoDatabase)
		if err := db.EnsureIndexes(ctx, database); err != nil {
			logger.Fatal("mongo indexes", zap.Error(err))
		}
		userRepo = repository.NewMongoUserRepository(database)
		postRepo = repository.NewMongoPostAuthorRepository(database)
		commentRepo = repository.NewMongoCommentAuthorRepository(database)
		ping = func(ctx context.Context) error { return db.PingMongo(ctx, client) }
	}

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	resetWindow := time.Duration(cfg.ForgotRateWindow) * time.Minute
	resetLimiter := service.NewMemoryRateLimiter(resetWindow, cfg.ForgotRateMax)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory rate limiter", zap.Error(err))
		} else {
			resetLimiter = service.NewRedisResetRateLimiter(logger, redisClient, resetWindow, cfg.ForgotRateMax)
		}
		cancel()
	}

	jwtSvc := service.NewJWTService(cfg.AccessTokenSecret)
	hasher := service.NewBcryptHasher(cfg.BcryptCost)

	userSvc := service.NewUserService(logger, userRepo, postRepo, commentRepo, hasher, emailSender, resetLimiter)
	userHandler := apihttp.NewUserHandler(logger, userSvc, jwtSvc)
	healthHandler := apihttp.NewHealthHandler(logger, ping)
	router := apihttp.NewRouter(logger, userHandler, healthHandler, jwtSvc)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("store", cfg.StoreDriver),
	)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
