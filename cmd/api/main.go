package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/yourusername/userauth-api/internal/config"
	"github.com/yourusername/userauth-api/internal/handler"
	"github.com/yourusername/userauth-api/internal/middleware"
	pgRepo "github.com/yourusername/userauth-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/userauth-api/internal/repository/redis"
	"github.com/yourusername/userauth-api/internal/service"
	"github.com/yourusername/userauth-api/internal/service/authprovider"
	"github.com/yourusername/userauth-api/internal/service/authscope"
	"github.com/yourusername/userauth-api/internal/service/gitlab"
	"github.com/yourusername/userauth-api/pkg/auth"
	"github.com/yourusername/userauth-api/pkg/database"
	"github.com/yourusername/userauth-api/pkg/logger"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("Failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log, os.Stderr)
	slog.SetDefault(log)
	isDev := logger.IsDev(cfg.Log)
	if !isDev {
		gin.SetMode(gin.ReleaseMode)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), log, isDev)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db, log); err != nil {
		log.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}

	// Redis не обязателен: без него нет кеша привязок и лимита логинов
	var redisClient redis.UniversalClient
	if cfg.Redis.Addr != "" || len(cfg.Redis.Addrs) > 0 {
		redisClient, err = database.NewUniversalRedisClient(cfg.Redis)
		if err != nil {
			log.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
	} else {
		log.Warn("Redis is not configured: binding cache and login rate limit are disabled")
	}

	store := pgRepo.NewStore(db)

	providerOpts := []authprovider.Option{authprovider.WithLogger(log)}
	if redisClient != nil && cfg.Cache.Enabled {
		cache, err := redisRepo.NewBindingCache(redisClient, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
		if err != nil {
			log.Error("Failed to create binding cache", "error", err)
			os.Exit(1)
		}
		providerOpts = append(providerOpts, authprovider.WithCache(cache))
	}

	// GitLab + расширение скоупов
	scopes := authscope.NewService(gitlab.ProviderName, store, log)
	gitlabProvider := gitlab.NewProvider(store, append(providerOpts, authprovider.WithExtension(scopes.Extension()))...)

	registry, err := authprovider.NewRegistry(gitlabProvider)
	if err != nil {
		log.Error("Failed to register auth providers", "error", err)
		os.Exit(1)
	}
	userService := service.NewUserService(store, registry, log)

	// Автор операций: из bearer токена или default_actor_id
	var jwtService *auth.JWTService
	if cfg.Auth.JWTSecret != "" {
		jwtService, err = auth.NewJWTService(cfg.Auth.JWTSecret, 24*time.Hour)
		if err != nil {
			log.Error("Failed to init JWT service", "error", err)
			os.Exit(1)
		}
	} else {
		log.Warn("auth.jwt_secret is empty: all calls run as the default actor", "actor_id", cfg.Auth.DefaultActorID)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if err := router.SetTrustedProxies(nil); err != nil {
		log.Warn("failed to set trusted proxies", "error", err)
	}

	// Настройка CORS
	if len(cfg.Server.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Retry-After"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	routes := handler.Routes{
		Providers:  handler.NewProviderHandler(registry, log),
		Scopes:     handler.NewScopeHandler(scopes, log),
		Users:      handler.NewUserHandler(userService, log),
		Actor:      middleware.NewActorMiddleware(jwtService, cfg.Auth.DefaultActorID, log),
		LoginLimit: middleware.LoginRateLimitConfig(cfg.RateLimit),
	}
	if redisClient != nil {
		routes.Limiter = middleware.NewRateLimiter(redisClient, log)
	}
	routes.Register(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info("Starting server", "port", cfg.Server.Port, "providers", registry.Names())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if sqlDB, err := database.GetSQLDB(db); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("Server exited properly")
}
