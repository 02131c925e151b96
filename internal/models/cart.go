package models

import "time"

// CartLine is one persisted (product, quantity) pair of a cart. Owner is the
// storage key of the cart's identity, see Identity.CartKey.
type CartLine struct {
	Owner     string    `json:"-" gorm:"primaryKey;type:varchar(128)"`
	ProductID uint      `json:"productId" gorm:"primaryKey;autoIncrement:false"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	UpdatedAt time.Time `json:"-" gorm:"index"`
}

// CartItem is a cart line joined with live product data.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// AddToCartRequest is the body of an add-to-cart call.
type AddToCartRequest struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  int  `json:"quantity"`
}

// CartSummary is the priced view of a cart.
type CartSummary struct {
	Items    []CartItem `json:"items"`
	Subtotal int64      `json:"subtotal"`
	Shipping int64      `json:"shipping"`
	Total    int64      `json:"total"`
}
