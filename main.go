package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"sportshop/internal/config"
	"sportshop/internal/database"
	"sportshop/internal/logging"
	"sportshop/internal/middleware"
	"sportshop/internal/repositories"
	"sportshop/internal/server"
	"sportshop/internal/services"
	"sportshop/pkg/imagehost"
	"sportshop/pkg/rabbitmq"
)

const purgeInterval = time.Hour

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
	logger.Info("server gracefully stopped")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Database ---
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	// --- Repositories ---
	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)
	cartStore, dbCarts, closeCarts, err := newCartStore(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer closeCarts()

	// --- Optional RabbitMQ ---
	var publisher services.EventPublisher
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, logger)
		if err != nil {
			return err
		}
		defer mqClient.Close()
		publisher = mqClient
	} else {
		logger.Info("RABBITMQ_URL not set, order events disabled")
	}

	// --- Services ---
	productService := services.NewProductService(productRepo, logger)
	cartService := services.NewCartService(productRepo, cartStore, logger)
	orderService := services.NewOrderService(orderRepo, cartService, publisher, logger)
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiration, logger)
	adminService := services.NewAdminService(userRepo, orderRepo, cartStore, logger)

	if err := authService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return err
	}

	app := server.New(server.Deps{
		Products: productService,
		Carts:    cartService,
		Orders:   orderService,
		Auth:     authService,
		Admin:    adminService,
		Signer: imagehost.NewSigner(imagehost.Config{
			CloudName: cfg.CloudinaryName,
			APIKey:    cfg.CloudinaryKey,
			APISecret: cfg.CloudinarySecret,
		}),
		Sessions:    middleware.NewSessionStore(cfg.SessionExpiration),
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
		AccessLog:   true,
		Health: func() fiber.Map {
			return fiber.Map{"cartBackend": cfg.CartBackend, "events": mqClient != nil}
		},
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", zap.String("addr", cfg.AppPort))
		return app.Listen(cfg.AppPort)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		return app.ShutdownWithTimeout(10 * time.Second)
	})
	if mqClient != nil {
		g.Go(func() error {
			return mqClient.ConsumeOrderEvents(gctx, rabbitmq.LogOrderEvent(logger))
		})
	}
	if dbCarts != nil {
		g.Go(func() error {
			purgeGuestCarts(gctx, dbCarts, cfg.SessionExpiration, logger)
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newCartStore builds the configured cart backend. The GORM store is also
// returned on its own so stale guest carts can be purged.
func newCartStore(ctx context.Context, cfg *config.Config, db *gorm.DB) (repositories.CartStore, *repositories.GORMCartStore, func(), error) {
	switch cfg.CartBackend {
	case config.CartBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, nil, err
		}
		return repositories.NewRedisCartStore(client, cfg.SessionExpiration), nil, func() { client.Close() }, nil
	case config.CartBackendMemory:
		return repositories.NewMemoryCartStore(), nil, func() {}, nil
	default:
		store := repositories.NewGORMCartStore(db)
		return store, store, func() {}, nil
	}
}

// purgeGuestCarts drops guest carts whose session can no longer exist.
func purgeGuestCarts(ctx context.Context, store *repositories.GORMCartStore, maxAge time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.PurgeStale(ctx, time.Now().Add(-maxAge))
			if err != nil {
				logger.Warn("guest cart purge failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("purged stale guest cart lines", zap.Int64("lines", n))
			}
		}
	}
}
