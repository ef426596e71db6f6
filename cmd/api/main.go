package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	_ "github.com/redmonkez12/favorite-movies-api/docs" // Swagger docs (generated)
	"github.com/redmonkez12/favorite-movies-api/internal/auth"
	"github.com/redmonkez12/favorite-movies-api/internal/config"
	"github.com/redmonkez12/favorite-movies-api/internal/database"
	"github.com/redmonkez12/favorite-movies-api/internal/email"
	httpServer "github.com/redmonkez12/favorite-movies-api/internal/http"
	"github.com/redmonkez12/favorite-movies-api/internal/logging"
	"github.com/redmonkez12/favorite-movies-api/internal/movie"
	"github.com/redmonkez12/favorite-movies-api/internal/queue"
	"github.com/redmonkez12/favorite-movies-api/internal/ratelimit"
	"github.com/redmonkez12/favorite-movies-api/internal/storage"
	"github.com/redmonkez12/favorite-movies-api/internal/user"
)

// @title           Favorite Movies API
// @version         1.0
// @description     Personal movie catalog with filtering, sorting and pagination, ownership-checked edits, poster uploads, and email/password or Google sign-in.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Driver,
		"uploads", cfg.Uploads.Driver,
		"email_transport", cfg.Email.Transport,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users, movies, closeDB, err := initStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	rateLimiter, closeLimiter, err := initRateLimiter(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLimiter()

	images, err := initImageStore(ctx, cfg.Uploads)
	if err != nil {
		return fmt.Errorf("failed to initialize image store: %w", err)
	}

	mailer, closeMailer, err := initMailer(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize mailer: %w", err)
	}
	defer closeMailer()

	tokenService, err := auth.NewTokenService(cfg.Auth.TokenType, cfg.Auth.PasetoKey, cfg.Auth.JWTSecret)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	var google auth.IDTokenVerifier
	if cfg.Auth.GoogleClientID != "" {
		google = auth.NewGoogleVerifier(cfg.Auth.GoogleClientID)
	}

	authService := auth.NewService(users, tokenService, mailer, google, logger, auth.Config{
		SessionTTL: cfg.Auth.SessionTTL,
		ResetURL:   cfg.Email.ResetPasswordURL,
	})
	defer authService.WaitForMail()

	movieService := movie.NewService(movies, images, logger)

	router := httpServer.NewRouter(cfg, httpServer.Handlers{
		Auth:           auth.NewHandler(authService, rateLimiter),
		AuthMiddleware: auth.NewMiddleware(tokenService),
		Movies:         movie.NewHandler(movieService, images, cfg.Uploads.MaxSize),
		Uploads:        storage.FileServer(images),
	}, logger)

	server := httpServer.NewServer(
		cfg.Server.Address(),
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initStores opens the user and movie stores for the configured driver and
// applies pending migrations when asked to.
func initStores(ctx context.Context, cfg *config.Config, logger *logging.Logger) (auth.UserStore, movie.Store, func(), error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		logger.Warn("using in-memory storage, data is lost on restart")
		users := user.NewMemoryRepository()
		return users, movie.NewMemoryRepository(movie.OwnersFrom(users)), func() {}, nil
	}

	sqlDB, err := database.Open(ctx, cfg.Database.ConnectionString())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, nil, nil, err
		}
		logger.Info("database migrations applied")
	}

	db := database.NewBunDB(sqlDB)
	return user.NewRepository(db), movie.NewRepository(db), func() { db.Close() }, nil
}

func initRateLimiter(ctx context.Context, cfg *config.Config) (ratelimit.Limiter, func(), error) {
	opts := ratelimit.Options{
		Limit:         cfg.RateLimit.AuthPerMinute,
		EmailCooldown: cfg.RateLimit.EmailCooldown,
	}

	if cfg.RateLimit.Driver == config.RateLimitDriverMemory {
		return ratelimit.NewMemoryLimiter(opts), func() {}, nil
	}

	redisClient, err := initRedis(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}
	return ratelimit.NewRedisLimiter(redisClient, opts), func() { redisClient.Close() }, nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

func initImageStore(ctx context.Context, cfg config.UploadsConfig) (storage.Store, error) {
	switch cfg.Driver {
	case config.UploadsDriverS3:
		return storage.NewS3Store(ctx, storage.S3Options{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			Endpoint:     cfg.S3Endpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			UsePathStyle: cfg.S3UsePathStyle,
		})
	case config.UploadsDriverMemory:
		return storage.NewMemoryStore(), nil
	default:
		return storage.NewLocalStore(cfg.Dir)
	}
}

func initMailer(cfg *config.Config, logger *logging.Logger) (auth.Mailer, func(), error) {
	if cfg.Email.Transport == config.EmailTransportKafka {
		producer := queue.NewProducer(cfg.Kafka)
		closeFn := func() {
			if err := producer.Close(); err != nil {
				logger.Warn("failed to close kafka producer", "error", err.Error())
			}
		}
		return producer, closeFn, nil
	}

	svc, err := email.NewService(cfg.Email, logger)
	if err != nil {
		return nil, nil, err
	}
	return svc, func() {}, nil
}
