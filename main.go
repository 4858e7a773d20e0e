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

	"github.com/gin-gonic/gin"
	"github.com/saurav0523/liaplusAI-Backend/internal/di"
	"github.com/saurav0523/liaplusAI-Backend/internal/handler"
	"github.com/saurav0523/liaplusAI-Backend/internal/metrics"
	"github.com/saurav0523/liaplusAI-Backend/internal/migrations"
	"github.com/saurav0523/liaplusAI-Backend/internal/repository"
	"github.com/saurav0523/liaplusAI-Backend/internal/security"
	"github.com/saurav0523/liaplusAI-Backend/internal/server"
	"github.com/saurav0523/liaplusAI-Backend/internal/service"
	"github.com/saurav0523/liaplusAI-Backend/pkg/config"
	"github.com/saurav0523/liaplusAI-Backend/pkg/database"
	"github.com/saurav0523/liaplusAI-Backend/pkg/kafka"
	"github.com/saurav0523/liaplusAI-Backend/pkg/logger"
	pkgmiddleware "github.com/saurav0523/liaplusAI-Backend/pkg/middleware"
	pkgredis "github.com/saurav0523/liaplusAI-Backend/pkg/redis"
	"github.com/saurav0523/liaplusAI-Backend/pkg/retry"
	"github.com/saurav0523/liaplusAI-Backend/pkg/telemetry"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       cfg.App.LogLevel,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting auth service...", zap.String("environment", cfg.App.Environment))

	ctx := context.Background()

	// Initialize OpenTelemetry
	telemetryCfg := &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}
	if _, err := telemetry.Init(ctx, telemetryCfg); err != nil {
		appLog.Warn("Failed to initialize telemetry", zap.Error(err))
	} else if telemetryCfg.Enabled {
		appLog.Info("Telemetry initialized", zap.String("collector", telemetryCfg.CollectorAddr))
	}
	defer telemetry.Shutdown(context.Background())

	if err := metrics.Init(); err != nil {
		appLog.Warn("Failed to initialize metrics", zap.Error(err))
	}

	// Run embedded migrations before the pool opens
	if cfg.Database.AutoMigrate {
		if err := migrate(cfg.Database.URL()); err != nil {
			appLog.Fatal("Database migration failed", zap.Error(err))
		}
		appLog.Info("Database migrations applied")
	}

	// Initialize database connection
	dbCfg := database.DefaultPostgresConfig()
	dbCfg.Host = cfg.Database.Host
	dbCfg.Port = cfg.Database.Port
	dbCfg.User = cfg.Database.User
	dbCfg.Password = cfg.Database.Password
	dbCfg.Database = cfg.Database.DBName
	dbCfg.SSLMode = cfg.Database.SSLMode
	dbCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	dbCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	dbCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	dbCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime
	dbCfg.EnableTracing = cfg.OTel.Enabled

	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal("Database connection failed", zap.Error(err))
	}
	defer db.Close()
	appLog.Info("Database connected", zap.Int32("max_conns", dbCfg.MaxConns))

	checkers := map[string]handler.HealthChecker{"postgres": db}

	// Initialize Redis (optional); it backs the shared rate limiter
	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		redisCfg := pkgredis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisClient, err = pkgredis.NewClient(ctx, redisCfg)
		if err != nil {
			appLog.Fatal("Redis connection failed", zap.Error(err))
		}
		defer redisClient.Close()
		checkers["redis"] = redisClient
		appLog.Info("Redis connected", zap.String("addr", redisCfg.Addr()))
	}

	// Verification email transport
	var emailSender service.EmailSender
	switch cfg.Email.Transport {
	case config.EmailTransportKafka:
		producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
			Brokers:       cfg.Kafka.Brokers,
			ClientID:      cfg.Kafka.ClientID,
			MaxRetries:    3,
			RetryInterval: time.Second,
		})
		if err != nil {
			appLog.Fatal("Kafka connection failed", zap.Error(err))
		}
		defer producer.Close()
		checkers["kafka"] = producer
		dlq := retry.NewDLQHandler(
			retry.NewKafkaDLQPublisher(producer, &retry.DLQConfig{TopicSuffix: ".dlq", Source: cfg.App.Name}),
			retry.DefaultConfig(),
			cfg.App.Name,
		)
		emailSender = service.NewKafkaEmailSender(producer, cfg.Email.Topic, cfg.Email.VerifyBaseURL, service.WithDLQ(dlq))
		appLog.Info("Verification emails published to Kafka", zap.String("topic", cfg.Email.Topic))
	default:
		emailSender = service.NewLogEmailSender(appLog, cfg.Email.VerifyBaseURL)
		appLog.Warn("Verification emails are only logged")
	}

	if cfg.JWT.Secret == config.DefaultJWTSecret {
		appLog.Warn("JWT_SECRET not set, using dev-only default (NEVER use in production)")
	}

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		ServiceName:    cfg.App.Name,
		AccountStore:   repository.NewPostgresAccountRepository(db),
		PostRepo:       repository.NewPostgresPostRepository(db),
		Hasher:         security.NewBcryptHasher(cfg.Security.BcryptCost),
		Sessions:       security.NewJWTCodec(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL, security.WithIssuer(cfg.JWT.Issuer)),
		Email:          emailSender,
		HealthCheckers: checkers,
		Logger:         appLog,
	})

	// Rate limiter for /auth
	rateCfg := pkgmiddleware.DefaultRateLimitConfig()
	rateCfg.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
	rateCfg.BurstSize = cfg.RateLimit.Burst

	var limiter pkgmiddleware.Limiter
	if cfg.RateLimit.Enabled {
		if redisClient != nil {
			limiter = pkgmiddleware.NewRedisRateLimiter(rateCfg, redisClient.Scripts())
		} else {
			local := pkgmiddleware.NewLocalRateLimiter(rateCfg)
			defer local.Stop()
			limiter = local
		}
	}

	var idempotency *pkgmiddleware.IdempotencyConfig
	if redisClient != nil {
		idempotency = pkgmiddleware.DefaultIdempotencyConfig(redisClient.Client())
	}

	corsCfg := pkgmiddleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	}

	// Setup Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := server.NewRouter(container, &server.RouterConfig{
		CORS:           corsCfg,
		RateLimiter:    limiter,
		RateLimit:      rateCfg,
		Idempotency:    idempotency,
		TrustedProxies: cfg.Server.TrustedProxies,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
	}

	// Start server in goroutine
	go func() {
		appLog.Info("Auth service listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	appLog.Info("Server exited gracefully")
}

func migrate(databaseURL string) error {
	m, err := migrations.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
