package handlers

import (
	"sportshop/internal/middleware"
	"sportshop/internal/services"
	"sportshop/pkg/imagehost"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AdminHandler serves the admin panel's customer, stats and upload routes.
type AdminHandler struct {
	service *services.AdminService
	signer  *imagehost.Signer
	logger  *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service *services.AdminService, signer *imagehost.Signer, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{service: service, signer: signer, logger: logger}
}

// RegisterRoutes registers the routes on a group already restricted to admins.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/customers", h.HandleListCustomers)
	router.Delete("/customers/:id", h.HandleDeleteCustomer)
	router.Get("/stats", h.HandleStats)
}

// RegisterImageRoutes registers the upload signature route.
func (h *AdminHandler) RegisterImageRoutes(router fiber.Router) {
	router.Get("/images/signature", middleware.AdminRequired(h.logger), h.HandleImageSignature)
}

func (h *AdminHandler) HandleListCustomers(c *fiber.Ctx) error {
	users, err := h.service.ListCustomers(c.UserContext(), middleware.GetIdentity(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(users)
}

func (h *AdminHandler) HandleDeleteCustomer(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := h.service.DeleteUser(c.UserContext(), middleware.GetIdentity(c), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdminHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext(), middleware.GetIdentity(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(stats)
}

// HandleImageSignature returns a signed payload for a direct browser upload.
func (h *AdminHandler) HandleImageSignature(c *fiber.Ctx) error {
	sig, err := h.signer.Sign()
	if err != nil {
		h.logger.Error("image signature failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"message": "Image uploads are not available",
			"error":   err.Error(),
		})
	}
	return c.JSON(sig)
}
