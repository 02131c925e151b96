package handlers

import (
	"sportshop/internal/middleware"
	"sportshop/internal/models"
	"sportshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the product routes. Writes are admin only.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/featured", h.HandleListFeatured)
	productRoutes.Get("/category/:category", h.HandleListByCategory)
	productRoutes.Get("/subcategory/:subcategory", h.HandleListBySubcategory)
	productRoutes.Get("/:id", h.HandleGetProduct)

	admin := middleware.AdminRequired(h.logger)
	productRoutes.Post("/", admin, h.HandleCreateProduct)
	productRoutes.Patch("/:id", admin, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", admin, h.HandleDeleteProduct)
}

// HandleListProducts lists the catalog, optionally filtered by the
// category, subcategory and featured query parameters.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	return h.list(c, models.ProductFilter{
		Category:     c.Query("category"),
		Subcategory:  c.Query("subcategory"),
		FeaturedOnly: c.QueryBool("featured", false),
	})
}

func (h *ProductHandler) HandleListFeatured(c *fiber.Ctx) error {
	return h.list(c, models.ProductFilter{FeaturedOnly: true})
}

func (h *ProductHandler) HandleListByCategory(c *fiber.Ctx) error {
	return h.list(c, models.ProductFilter{Category: c.Params("category")})
}

func (h *ProductHandler) HandleListBySubcategory(c *fiber.Ctx) error {
	return h.list(c, models.ProductFilter{Subcategory: c.Params("subcategory")})
}

func (h *ProductHandler) list(c *fiber.Ctx, filter models.ProductFilter) error {
	products, err := h.service.ListProducts(c.UserContext(), filter)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(products)
}

// HandleGetProduct retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	product, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(product)
}

// HandleCreateProduct adds a product to the catalog.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return invalidBody(c, err)
	}
	if handled, err := validateBody(c, h.validate, product); handled {
		return err
	}

	if err := h.service.CreateProduct(c.UserContext(), middleware.GetIdentity(c), &product); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct applies a partial update.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var patch models.ProductPatch
	if err := c.BodyParser(&patch); err != nil {
		return invalidBody(c, err)
	}
	if handled, err := validateBody(c, h.validate, patch); handled {
		return err
	}

	product, err := h.service.UpdateProduct(c.UserContext(), middleware.GetIdentity(c), id, patch)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct removes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := h.service.DeleteProduct(c.UserContext(), middleware.GetIdentity(c), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
