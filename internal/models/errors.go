package models

import (
	"errors"
	"fmt"
)

// Domain errors. Handlers translate them to HTTP statuses with errors.Is.
var (
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrInvalidInput       = errors.New("invalid input")
	ErrProductNotFound    = errors.New("product not found")
	ErrOutOfStock         = errors.New("out of stock")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrInvalidTransition  = errors.New("order status transition not allowed")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = fmt.Errorf("%w: admin role required", ErrUnauthorized)
)

// StockError reports a quantity that the catalog cannot satisfy. Kind is
// ErrOutOfStock on cart adds and ErrInsufficientStock at checkout.
type StockError struct {
	Kind        error
	ProductID   uint
	ProductName string
	Requested   int
	Available   int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("%v for product %s (id %d): requested %d, available %d",
		e.Kind, e.ProductName, e.ProductID, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error { return e.Kind }

// NotFoundError names the missing record.
type NotFoundError struct {
	Kind error
	ID   uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v: id %d", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return e.Kind }

// ProductNotFound builds the error for a missing product id.
func ProductNotFound(id uint) error {
	return &NotFoundError{Kind: ErrProductNotFound, ID: id}
}

// OrderNotFound builds the error for a missing order id.
func OrderNotFound(id uint) error {
	return &NotFoundError{Kind: ErrOrderNotFound, ID: id}
}

// UserNotFound builds the error for a missing user id.
func UserNotFound(id uint) error {
	return &NotFoundError{Kind: ErrUserNotFound, ID: id}
}
