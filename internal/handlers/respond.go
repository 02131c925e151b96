package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"sportshop/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// respondError maps a service error to its HTTP status. Unknown errors are
// logged and reported as an opaque 500.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	var stockErr *models.StockError
	if errors.As(err, &stockErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":     stockErr.Kind.Error(),
			"error":       stockErr.Error(),
			"productId":   stockErr.ProductID,
			"productName": stockErr.ProductName,
			"requested":   stockErr.Requested,
			"available":   stockErr.Available,
		})
	}

	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, models.ErrEmptyCart),
		errors.Is(err, models.ErrInvalidStatus),
		errors.Is(err, models.ErrInvalidTransition):
		status = fiber.StatusBadRequest
	case errors.Is(err, models.ErrProductNotFound),
		errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrUserNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, models.ErrUsernameTaken),
		errors.Is(err, models.ErrEmailTaken):
		status = fiber.StatusConflict
	case errors.Is(err, models.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, models.ErrUnauthorized),
		errors.Is(err, models.ErrInvalidCredentials):
		status = fiber.StatusUnauthorized
	}

	if status == fiber.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Method()), zap.String("path", c.Path()), zap.Error(err))
		return c.Status(status).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}
	message := rootMessage(err)
	if status == fiber.StatusForbidden {
		message = "forbidden"
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

// rootMessage returns the message of the innermost wrapped error.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func invalidBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

// validateBody validates s and writes the 400 response when it fails.
// It returns handled=true when a response was written.
func validateBody(c *fiber.Ctx, validate *validator.Validate, s interface{}) (bool, error) {
	err := validate.Struct(s)
	if err == nil {
		return false, nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return true, invalidBody(c, err)
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return true, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// paramID parses a positive integer route parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", models.ErrInvalidInput, name, raw)
	}
	return uint(id), nil
}
