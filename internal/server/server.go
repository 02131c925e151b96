package server

import (
	"errors"
	"time"

	"sportshop/internal/handlers"
	"sportshop/internal/middleware"
	"sportshop/internal/services"
	"sportshop/pkg/imagehost"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"
)

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Products *services.ProductService
	Carts    *services.CartService
	Orders   *services.OrderService
	Auth     *services.AuthService
	Admin    *services.AdminService
	Signer   *imagehost.Signer
	Sessions *session.Store
	Logger   *zap.Logger

	// CORSOrigins is a comma-separated allow list; empty disables CORS.
	CORSOrigins string
	// Health reports the state of optional dependencies on /health.
	Health func() fiber.Map
	// AccessLog toggles the request logger.
	AccessLog bool
}

// New builds the Fiber app with every route mounted under /api/v1.
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "sportshop",
		ErrorHandler: errorHandler(d.Logger),
	})

	// --- Middleware ---
	app.Use(recover.New())
	if d.AccessLog {
		app.Use(logger.New()) // Request logger
	}
	if d.CORSOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,
			AllowCredentials: d.CORSOrigins != "*",
		}))
	}

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		body := fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		}
		if d.Health != nil {
			for k, v := range d.Health() {
				body[k] = v
			}
		}
		return c.JSON(body)
	})

	// --- API Routes ---
	apiV1 := app.Group("/api/v1", middleware.Identify(d.Auth, d.Sessions, d.Logger))

	productHandler := handlers.NewProductHandler(d.Products, d.Logger)
	cartHandler := handlers.NewCartHandler(d.Carts, d.Logger)
	orderHandler := handlers.NewOrderHandler(d.Orders, d.Logger)
	authHandler := handlers.NewAuthHandler(d.Auth, d.Carts, d.Sessions, d.Logger)
	adminHandler := handlers.NewAdminHandler(d.Admin, d.Signer, d.Logger)

	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)
	cartHandler.RegisterRoutes(apiV1)
	orderHandler.RegisterRoutes(apiV1)
	adminHandler.RegisterImageRoutes(apiV1)

	adminRoutes := apiV1.Group("/admin", middleware.AdminRequired(d.Logger))
	orderHandler.RegisterAdminRoutes(adminRoutes)
	adminHandler.RegisterRoutes(adminRoutes)

	return app
}

// errorHandler keeps Fiber's own errors (404 route, 405, body limits) in the
// API's JSON shape.
func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
			return c.Status(code).JSON(fiber.Map{"message": "Internal server error"})
		}
		return c.Status(code).JSON(fiber.Map{"message": err.Error()})
	}
}
