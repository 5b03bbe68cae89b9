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

	"scenario-admin/internal/client"
	"scenario-admin/internal/config"
	"scenario-admin/internal/handler"
	"scenario-admin/internal/logger"
	"scenario-admin/internal/messaging"
	"scenario-admin/internal/middleware"
	"scenario-admin/internal/session"
	"scenario-admin/internal/web"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func main() {
	log.Println("Starting scenario admin...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	zap.ReplaceGlobals(zapLogger)
	zapLogger.Info("Logger initialized", zap.String("env", cfg.Env), zap.String("logLevel", cfg.Logger.Level))

	// --- Session store and login rate limit store ---
	var (
		sessions       session.Store
		rateLimitStore ratelimit.Store
	)
	rateLimitWindow := time.Minute
	if cfg.Redis.Addr != "" {
		redisClient, err := setupRedis(cfg.Redis, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		sessions = session.NewRedisStore(redisClient, cfg.SessionTTL, zapLogger)
		rateLimitStore = ratelimit.RedisStore(&ratelimit.RedisOptions{
			RedisClient: redisClient,
			Rate:        rateLimitWindow,
			Limit:       cfg.LoginRateLimit,
		})
	} else {
		zapLogger.Warn("REDIS_ADDR not set, sessions are kept in memory")
		sessions = session.NewMemoryStore(cfg.SessionTTL, zapLogger)
		rateLimitStore = ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
			Rate:  rateLimitWindow,
			Limit: cfg.LoginRateLimit,
		})
	}

	// --- Audit publisher ---
	auditPublisher := messaging.NewNopPublisher(zapLogger)
	if cfg.RabbitMQ.URL != "" {
		rabbitConn, err := messaging.ConnectRabbitMQ(cfg.RabbitMQ.URL, 5, 5*time.Second, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer rabbitConn.Close()

		auditPublisher, err = messaging.NewRabbitMQAuditPublisher(rabbitConn, cfg.RabbitMQ.AuditQueueName, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to create audit publisher", zap.Error(err))
		}
	} else {
		zapLogger.Info("RABBITMQ_URL not set, audit events are not published")
	}
	defer func() {
		if err := auditPublisher.Close(); err != nil {
			zapLogger.Error("Failed to close audit publisher", zap.Error(err))
		}
	}()

	// --- Backend client ---
	backend, err := client.NewBackendClient(cfg.APIBaseURL, cfg.ClientTimeout, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create backend client", zap.Error(err))
	}

	renderer, err := web.NewRenderer(web.Templates(), cfg.IsDevelopment(), zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to load templates", zap.Error(err))
	}

	h := handler.NewAdminHandler(cfg, zapLogger, backend, sessions, auditPublisher)

	// --- Gin ---
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HTMLRender = renderer

	router.Use(gin.Recovery())
	router.Use(middleware.GinZapLogger(zapLogger))
	router.Use(handler.CustomErrorMiddleware(zapLogger))

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSAllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "HX-Request", "HX-Target", "HX-Current-URL", "HX-Trigger"}
	corsConfig.AllowCredentials = !corsConfig.AllowAllOrigins
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	h.RegisterRoutes(router, handler.NewLoginRateLimiter(rateLimitStore, zapLogger))

	// --- HTTP server ---
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLogger.Info("Scenario admin listening", zap.String("port", cfg.ServerPort), zap.String("api", cfg.APIBaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutdown signal received, stopping server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server stopped")
}

// setupRedis connects and pings redis, retrying while it starts up.
func setupRedis(cfg config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	maxRetries := 10
	retryDelay := 3 * time.Second
	logger.Info("Connecting to Redis", zap.String("address", opts.Addr), zap.Int("db", opts.DB), zap.Int("maxRetries", maxRetries))

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		attempt := i + 1
		redisClient := redis.NewClient(opts)

		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		pingCancel()
		if err == nil {
			logger.Info("Connected to Redis", zap.Int("attempt", attempt))
			return redisClient, nil
		}

		redisClient.Close()
		lastErr = fmt.Errorf("unable to ping redis (attempt %d/%d): %w", attempt, maxRetries, err)
		logger.Warn("Redis ping failed, retrying...", zap.Int("attempt", attempt), zap.Error(err))
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	return nil, fmt.Errorf("failed to connect to redis after %d attempts: %w", maxRetries, lastErr)
}
