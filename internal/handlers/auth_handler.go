package handlers

import (
	"sportshop/internal/middleware"
	"sportshop/internal/models"
	"sportshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	carts       *services.CartService
	sessions    *session.Store
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, carts *services.CartService, sessions *session.Store, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		carts:       carts,
		sessions:    sessions,
		validate:    validator.New(),
		logger:      logger,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", h.HandleLogout)
	authRoutes.Get("/me", middleware.AuthRequired(), h.HandleMe)
}

// HandleRegister handles new customer registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if handled, err := validateBody(c, h.validate, req); handled {
		return err
	}

	user, err := h.authService.RegisterUser(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin authenticates the user, binds the session to them, merges the
// guest cart into theirs and issues a JWT token for API clients.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if handled, err := validateBody(c, h.validate, req); handled {
		return err
	}

	user, token, err := h.authService.LoginUser(c.UserContext(), req.Username, req.Password)
	if err != nil {
		h.logger.Info("login failed", zap.String("username", req.Username), zap.Error(err))
		return respondError(c, h.logger, err)
	}

	previous := middleware.GetIdentity(c)
	if previous.IsGuest() && previous.SessionID != "" {
		if err := h.carts.MergeGuestCart(c.UserContext(), previous, models.UserIdentity(user.ID, user.IsAdmin)); err != nil {
			// The login itself succeeded; the guest lines stay where they were.
			h.logger.Warn("guest cart merge failed", zap.Uint("user_id", user.ID), zap.Error(err))
		}
	}

	if err := middleware.Login(c, h.sessions, user); err != nil {
		return respondError(c, h.logger, err)
	}
	h.logger.Info("user logged in", zap.Uint("user_id", user.ID))
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// HandleLogout ends the session.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	if err := middleware.Logout(c, h.sessions); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleMe returns the logged-in user.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	user, err := h.authService.GetUser(c.UserContext(), middleware.GetIdentity(c).UserID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(user)
}
