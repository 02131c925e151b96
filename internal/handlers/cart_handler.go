package handlers

import (
	"sportshop/internal/middleware"
	"sportshop/internal/models"
	"sportshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CartHandler handles HTTP requests for the shopping cart of the current
// guest session or user.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the cart routes.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Get("/summary", h.HandleSummary)
	cartRoutes.Post("/", h.HandleAddToCart)
	cartRoutes.Post("/:productId/decrement", h.HandleDecrement)
	cartRoutes.Delete("/:productId", h.HandleRemove)
	cartRoutes.Delete("/", h.HandleClear)
}

func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	items, err := h.service.GetCart(c.UserContext(), middleware.GetIdentity(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(items)
}

func (h *CartHandler) HandleSummary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.UserContext(), middleware.GetIdentity(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(summary)
}

// HandleAddToCart adds units of a product. Quantity defaults to 1 when
// omitted.
func (h *CartHandler) HandleAddToCart(c *fiber.Ctx) error {
	req := models.AddToCartRequest{Quantity: 1}
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if handled, err := validateBody(c, h.validate, req); handled {
		return err
	}

	items, err := h.service.AddToCart(c.UserContext(), middleware.GetIdentity(c), req.ProductID, req.Quantity)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(items)
}

func (h *CartHandler) HandleDecrement(c *fiber.Ctx) error {
	productID, err := paramID(c, "productId")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	items, err := h.service.DecrementCart(c.UserContext(), middleware.GetIdentity(c), productID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(items)
}

func (h *CartHandler) HandleRemove(c *fiber.Ctx) error {
	productID, err := paramID(c, "productId")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	items, err := h.service.RemoveFromCart(c.UserContext(), middleware.GetIdentity(c), productID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(items)
}

func (h *CartHandler) HandleClear(c *fiber.Ctx) error {
	if err := h.service.ClearCart(c.UserContext(), middleware.GetIdentity(c)); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
