package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Cart storage backends.
const (
	CartBackendDB     = "db"
	CartBackendRedis  = "redis"
	CartBackendMemory = "memory"
)

// Config is the process configuration, read from the environment.
type Config struct {
	AppPort           string
	DBDriver          string
	DatabaseDSN       string
	JWTSecret         string
	JWTExpiration     time.Duration
	RabbitMQURL       string
	CartBackend       string
	RedisAddress      string
	RedisPassword     string
	SessionExpiration time.Duration
	LogLevel          string
	AdminUsername     string
	AdminPassword     string
	AdminEmail        string
	CloudinaryName    string
	CloudinaryKey     string
	CloudinarySecret  string
	CORSOrigins       string
}

// Load reads the configuration from environment variables, falling back to
// development defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=sportshop port=5432 sslmode=disable")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("RABBITMQ_URL", "") // empty disables order events
	v.SetDefault("CART_BACKEND", CartBackendDB)
	v.SetDefault("REDIS_ADDRESS", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("SESSION_EXPIRATION", "720h")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", "admin123")
	v.SetDefault("ADMIN_EMAIL", "admin@sportmaroc.ma")
	v.SetDefault("CLOUDINARY_CLOUD_NAME", "")
	v.SetDefault("CLOUDINARY_API_KEY", "")
	v.SetDefault("CLOUDINARY_API_SECRET", "")
	v.SetDefault("CORS_ORIGINS", "*")
	v.AutomaticEnv() // Load environment variables

	cfg := &Config{
		AppPort:           v.GetString("APP_PORT"),
		DBDriver:          strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:       v.GetString("DATABASE_DSN"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		JWTExpiration:     v.GetDuration("JWT_EXPIRATION"),
		RabbitMQURL:       v.GetString("RABBITMQ_URL"),
		CartBackend:       strings.ToLower(v.GetString("CART_BACKEND")),
		RedisAddress:      v.GetString("REDIS_ADDRESS"),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		SessionExpiration: v.GetDuration("SESSION_EXPIRATION"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		AdminUsername:     v.GetString("ADMIN_USERNAME"),
		AdminPassword:     v.GetString("ADMIN_PASSWORD"),
		AdminEmail:        v.GetString("ADMIN_EMAIL"),
		CloudinaryName:    v.GetString("CLOUDINARY_CLOUD_NAME"),
		CloudinaryKey:     v.GetString("CLOUDINARY_API_KEY"),
		CloudinarySecret:  v.GetString("CLOUDINARY_API_SECRET"),
		CORSOrigins:       v.GetString("CORS_ORIGINS"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.CartBackend {
	case CartBackendDB, CartBackendRedis, CartBackendMemory:
	default:
		return fmt.Errorf("unsupported CART_BACKEND %q", c.CartBackend)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.SessionExpiration <= 0 {
		return fmt.Errorf("SESSION_EXPIRATION must be positive")
	}
	return nil
}
