package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sportshop/internal/models"
	"sportshop/internal/pricing"
	"sportshop/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Routing keys of published order events.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// EventPublisher sends order events to a message broker.
type EventPublisher interface {
	PublishOrderEvent(routingKey string, payload interface{}) error
}

// OrderEvent is the payload of published order events.
type OrderEvent struct {
	OrderID     uint               `json:"orderId"`
	Reference   string             `json:"reference"`
	UserID      *uint              `json:"userId"`
	Status      models.OrderStatus `json:"status"`
	TotalAmount int64              `json:"totalAmount"`
	Items       []models.OrderItem `json:"items,omitempty"`
	OccurredAt  time.Time          `json:"occurredAt"`
}

// OrderService handles checkout and order management.
type OrderService struct {
	orders    repositories.OrderRepository
	carts     *CartService
	publisher EventPublisher // optional
	logger    *zap.Logger
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(orders repositories.OrderRepository, carts *CartService, publisher EventPublisher, logger *zap.Logger) *OrderService {
	return &OrderService{
		orders:    orders,
		carts:     carts,
		publisher: publisher,
		logger:    logger,
	}
}

// Checkout turns the identity's cart into a pending order. Stock is
// re-validated against the catalog; the order, its items and the stock
// decrements are written in one transaction. The cart is cleared afterwards
// on a best-effort basis.
func (s *OrderService) Checkout(ctx context.Context, id models.Identity, details models.CustomerDetails) (*models.Order, error) {
	key := id.CartKey()
	unlock := s.carts.locks.Lock(key)
	defer unlock()

	lines, err := s.carts.lines(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, models.ErrEmptyCart
	}

	products, err := s.carts.products.GetByIDs(ctx, productIDs(lines))
	if err != nil {
		return nil, err
	}

	var total int64
	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok || p.Stock < l.Quantity {
			return nil, &models.StockError{
				Kind:        models.ErrInsufficientStock,
				ProductID:   l.ProductID,
				ProductName: productName(p, l.ProductID),
				Requested:   l.Quantity,
				Available:   p.Stock,
			}
		}
		unit := pricing.EffectiveUnitPrice(p)
		total += unit * int64(l.Quantity)
		items = append(items, models.OrderItem{
			ProductID:       p.ID,
			Quantity:        l.Quantity,
			PriceAtPurchase: unit,
		})
	}

	order := &models.Order{
		Reference:       newOrderReference(),
		Status:          models.OrderStatusPending,
		TotalAmount:     total,
		CustomerName:    details.CustomerName,
		CustomerEmail:   details.CustomerEmail,
		CustomerPhone:   details.CustomerPhone,
		ShippingAddress: details.ShippingAddress,
		Items:           items,
	}
	if id.IsUser() {
		uid := id.UserID
		order.UserID = &uid
	}

	if err := s.orders.Create(ctx, order); err != nil {
		if errors.Is(err, models.ErrInsufficientStock) || errors.Is(err, models.ErrProductNotFound) {
			return nil, err
		}
		s.logger.Error("order transaction failed", zap.Stringer("identity", id), zap.Error(err))
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// The order is committed; a failed clear must not undo it.
	if err := s.carts.store.Clear(context.WithoutCancel(ctx), key); err != nil {
		s.logger.Warn("failed to clear cart after checkout",
			zap.Uint("order_id", order.ID), zap.Stringer("identity", id), zap.Error(err))
	}

	s.logger.Info("order created",
		zap.Uint("order_id", order.ID), zap.String("reference", order.Reference),
		zap.Int64("total_amount", order.TotalAmount), zap.Int("items", len(order.Items)))
	s.publish(EventOrderCreated, order)
	return order, nil
}

// GetOrder returns an order with its items to its owner or to an admin.
func (s *OrderService) GetOrder(ctx context.Context, actor models.Identity, orderID uint) (*models.Order, error) {
	if err := actor.RequireUser(); err != nil {
		return nil, err
	}
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && !order.OwnedBy(actor.UserID) {
		return nil, fmt.Errorf("%w: order %d belongs to another customer", models.ErrForbidden, orderID)
	}
	return order, nil
}

// ListMyOrders returns the actor's orders, newest first.
func (s *OrderService) ListMyOrders(ctx context.Context, actor models.Identity) ([]models.Order, error) {
	if err := actor.RequireUser(); err != nil {
		return nil, err
	}
	orders, err := s.orders.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return nonNil(orders), nil
}

// ListAllOrders returns every order. Admin only.
func (s *OrderService) ListAllOrders(ctx context.Context, actor models.Identity) ([]models.Order, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(orders), nil
}

// UpdateOrderStatus moves an order along its lifecycle. Admin only.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, actor models.Identity, orderID uint, status models.OrderStatus) (*models.Order, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidStatus, status)
	}

	current, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if current.Status == status {
		return current, nil
	}
	if !current.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, current.Status, status)
	}

	updated, err := s.orders.UpdateStatus(ctx, orderID, current.Status, status)
	if err != nil {
		return nil, err
	}
	s.logger.Info("order status updated",
		zap.Uint("order_id", orderID), zap.String("from", string(current.Status)), zap.String("to", string(status)))
	s.publish(EventOrderStatusChanged, updated)
	return updated, nil
}

func (s *OrderService) publish(routingKey string, order *models.Order) {
	if s.publisher == nil {
		return
	}
	event := OrderEvent{
		OrderID:     order.ID,
		Reference:   order.Reference,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Items:       order.Items,
		OccurredAt:  time.Now().UTC(),
	}
	if err := s.publisher.PublishOrderEvent(routingKey, event); err != nil {
		s.logger.Warn("failed to publish order event",
			zap.String("routing_key", routingKey), zap.Uint("order_id", order.ID), zap.Error(err))
	}
}

// newOrderReference returns a unique, time-prefixed order reference.
func newOrderReference() string {
	return time.Now().UTC().Format("20060102150405") + "-" + uuid.NewString()
}

func productName(p models.Product, id uint) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("#%d", id)
}

func nonNil(orders []models.Order) []models.Order {
	if orders == nil {
		return []models.Order{}
	}
	return orders
}
