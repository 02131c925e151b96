package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// orderTransitions lists the statuses reachable from each status.
// Delivered and cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped: {OrderStatusDelivered, OrderStatusCancelled},
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether an order in status s may move to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OrderItem represents a single item within an order.
type OrderItem struct {
	ID              uint  `json:"id" gorm:"primaryKey"`
	OrderID         uint  `json:"orderId" gorm:"index;not null"`
	ProductID       uint  `json:"productId" gorm:"index;not null"`
	Quantity        int   `json:"quantity" gorm:"not null"`
	PriceAtPurchase int64 `json:"priceAtPurchase" gorm:"not null"` // discounted unit price at checkout
}

// Order represents a customer order. TotalAmount is frozen at creation.
type Order struct {
	ID              uint        `json:"id" gorm:"primaryKey"`
	Reference       string      `json:"reference" gorm:"type:varchar(64);uniqueIndex"`
	UserID          *uint       `json:"userId" gorm:"index"` // nil for guest checkout
	Status          OrderStatus `json:"status" gorm:"type:varchar(20);not null;default:pending;index"`
	TotalAmount     int64       `json:"totalAmount" gorm:"not null"`
	CustomerName    string      `json:"customerName" gorm:"type:varchar(200);not null"`
	CustomerEmail   string      `json:"customerEmail" gorm:"type:varchar(255);not null"`
	CustomerPhone   string      `json:"customerPhone" gorm:"type:varchar(50);not null"`
	ShippingAddress string      `json:"shippingAddress" gorm:"type:text;not null"`
	Items           []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// OwnedBy reports whether the order belongs to the given user.
func (o *Order) OwnedBy(userID uint) bool {
	return o.UserID != nil && *o.UserID == userID
}

// CustomerDetails are the contact fields collected at checkout.
type CustomerDetails struct {
	CustomerName    string `json:"customerName" validate:"required,min=2,max=200"`
	CustomerEmail   string `json:"customerEmail" validate:"required,email"`
	CustomerPhone   string `json:"customerPhone" validate:"required,min=6,max=50"`
	ShippingAddress string `json:"shippingAddress" validate:"required,min=10,max=1000"`
}

// PopularProduct is a stats row: units sold per product.
type PopularProduct struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Sales int64  `json:"sales"`
}

// Stats summarizes sales for the admin dashboard.
type Stats struct {
	SalesByMonth    map[string]int64 `json:"salesByMonth"`
	TotalSales      int64            `json:"totalSales"`
	TotalOrders     int64            `json:"totalOrders"`
	TotalCustomers  int64            `json:"totalCustomers"`
	PopularProducts []PopularProduct `json:"popularProducts"`
}
