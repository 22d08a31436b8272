package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`

	// AllowedOrigins для CORS; пустой список разрешает только same-origin
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: "single", "sentinel" или "cluster". По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Для 'single' используется первый адрес.
	Addrs []string `mapstructure:"addrs"`

	// Addr: адрес для режима 'single', если Addrs пустой.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"` // мс
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"` // мс
}

// CacheConfig управляет кешем привязок в Redis
type CacheConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	TTLSeconds int  `mapstructure:"ttl_seconds"`
}

// AuthConfig определяет, кто считается автором операции (actor)
type AuthConfig struct {
	// JWTSecret: HS256 секрет для bearer токенов. Пустой секрет отключает проверку токенов.
	JWTSecret string `mapstructure:"jwt_secret"`

	// DefaultActorID используется, когда проверка токенов отключена
	DefaultActorID uint `mapstructure:"default_actor_id"`
}

// RateLimitConfig ограничивает попытки логина с одного IP
type RateLimitConfig struct {
	LoginMax      int `mapstructure:"login_max"`
	WindowSeconds int `mapstructure:"window_seconds"`
}

// LogConfig задает уровень и формат логов
type LogConfig struct {
	Level string `mapstructure:"level"` // debug|info|warn|error
	Env   string `mapstructure:"env"`   // dev включает цветной вывод tint
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// PostgresURL формирует URL для golang-migrate
func (d *DatabaseConfig) PostgresURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	vip := viper.New()

	// 1. Значения по умолчанию
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.read_timeout", 10)
	vip.SetDefault("server.write_timeout", 10)
	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("redis.mode", "single")
	vip.SetDefault("cache.enabled", true)
	vip.SetDefault("cache.ttl_seconds", 300)
	vip.SetDefault("auth.default_actor_id", 1)
	vip.SetDefault("rate_limit.login_max", 10)
	vip.SetDefault("rate_limit.window_seconds", 60)
	vip.SetDefault("log.level", "info")
	vip.SetDefault("log.env", "prod")

	// 2. Привязываем переменные окружения ЯВНО
	bindings := map[string]string{
		"server.port":               "SERVER_PORT",
		"server.allowed_origins":    "SERVER_ALLOWED_ORIGINS",
		"database.host":             "DATABASE_HOST",
		"database.port":             "DATABASE_PORT",
		"database.user":             "DATABASE_USER",
		"database.password":         "DATABASE_PASSWORD",
		"database.dbname":           "DATABASE_DBNAME",
		"database.sslmode":          "DATABASE_SSLMODE",
		"redis.mode":                "REDIS_MODE",
		"redis.addrs":               "REDIS_ADDRS",
		"redis.addr":                "REDIS_ADDR",
		"redis.password":            "REDIS_PASSWORD",
		"redis.db":                  "REDIS_DB",
		"redis.master_name":         "REDIS_MASTER_NAME",
		"cache.enabled":             "CACHE_ENABLED",
		"cache.ttl_seconds":         "CACHE_TTL_SECONDS",
		"auth.jwt_secret":           "AUTH_JWT_SECRET",
		"auth.default_actor_id":     "AUTH_DEFAULT_ACTOR_ID",
		"rate_limit.login_max":      "RATE_LIMIT_LOGIN_MAX",
		"rate_limit.window_seconds": "RATE_LIMIT_WINDOW_SECONDS",
		"log.level":                 "LOG_LEVEL",
		"log.env":                   "APP_ENV",
	}
	for key, env := range bindings {
		if err := vip.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	// 3. Файл конфигурации не обязателен: всё можно задать через окружение
	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				slog.Info("config file not found, using environment and defaults", "path", configPath)
			} else {
				slog.Warn("failed to read config file", "path", configPath, "error", err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// списки из окружения приходят одной строкой через запятую
	cfg.Redis.Addrs = splitList(strings.Join(cfg.Redis.Addrs, ","))
	cfg.Server.AllowedOrigins = splitList(strings.Join(cfg.Server.AllowedOrigins, ","))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
		return fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	switch c.Redis.Mode {
	case "single", "sentinel", "cluster":
	default:
		return fmt.Errorf("unsupported redis mode %q", c.Redis.Mode)
	}
	if c.Cache.Enabled && c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache.ttl_seconds must be positive when the cache is enabled")
	}
	if c.RateLimit.LoginMax <= 0 || c.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate_limit.login_max and rate_limit.window_seconds must be positive")
	}
	if c.Auth.JWTSecret == "" && c.Auth.DefaultActorID == 0 {
		return fmt.Errorf("auth.default_actor_id is required when auth.jwt_secret is empty")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
