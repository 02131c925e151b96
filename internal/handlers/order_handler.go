package handlers

import (
	"sportshop/internal/middleware"
	"sportshop/internal/models"
	"sportshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the order routes. Checkout is open to guests;
// reading orders needs a logged-in user.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", h.HandleCheckout)
	orderRoutes.Get("/", middleware.AuthRequired(), h.HandleListMyOrders)
	orderRoutes.Get("/:id", middleware.AuthRequired(), h.HandleGetOrderByID)
}

// RegisterAdminRoutes registers the order management routes on an admin group.
func (h *OrderHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/orders", h.HandleListAllOrders)
	router.Patch("/orders/:id", h.HandleUpdateOrderStatus)
}

// HandleCheckout turns the current cart into an order.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	var details models.CustomerDetails
	if err := c.BodyParser(&details); err != nil {
		return invalidBody(c, err)
	}
	if handled, err := validateBody(c, h.validate, details); handled {
		return err
	}

	order, err := h.service.Checkout(c.UserContext(), middleware.GetIdentity(c), details)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *OrderHandler) HandleListMyOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListMyOrders(c.UserContext(), middleware.GetIdentity(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID returns an order and its items to its owner or an admin.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	order, err := h.service.GetOrder(c.UserContext(), middleware.GetIdentity(c), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"order": order,
		"items": order.Items,
	})
}

func (h *OrderHandler) HandleListAllOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListAllOrders(c.UserContext(), middleware.GetIdentity(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(orders)
}

// UpdateStatusRequest is the body of an order status change.
type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if handled, err := validateBody(c, h.validate, req); handled {
		return err
	}

	order, err := h.service.UpdateOrderStatus(c.UserContext(), middleware.GetIdentity(c), id, req.Status)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(order)
}
