// Package pricing computes prices in integer minor currency units.
package pricing

import "sportshop/internal/models"

const (
	// FreeShippingThreshold is the subtotal above which shipping is free.
	FreeShippingThreshold int64 = 50000
	// ShippingFee is the flat fee charged at or below the threshold.
	ShippingFee int64 = 3000
)

// EffectiveUnitPrice returns the product price after its percentage
// discount, rounded half away from zero.
func EffectiveUnitPrice(p models.Product) int64 {
	d := clampDiscount(p.Discount)
	if d == 0 {
		return p.Price
	}
	return divRoundHalfAway(p.Price*int64(100-d), 100)
}

// LineTotal is the effective unit price times quantity.
func LineTotal(p models.Product, quantity int) int64 {
	return EffectiveUnitPrice(p) * int64(quantity)
}

// CartTotal sums the line totals of items.
func CartTotal(items []models.CartItem) int64 {
	var total int64
	for _, it := range items {
		total += LineTotal(it.Product, it.Quantity)
	}
	return total
}

// Shipping returns the shipping fee for a subtotal.
func Shipping(subtotal int64) int64 {
	if subtotal > FreeShippingThreshold {
		return 0
	}
	return ShippingFee
}

// Summarize prices a cart.
func Summarize(items []models.CartItem) models.CartSummary {
	subtotal := CartTotal(items)
	shipping := Shipping(subtotal)
	if items == nil {
		items = []models.CartItem{}
	}
	return models.CartSummary{
		Items:    items,
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    subtotal + shipping,
	}
}

func clampDiscount(d int) int {
	switch {
	case d < 0:
		return 0
	case d > 100:
		return 100
	}
	return d
}

func divRoundHalfAway(n, d int64) int64 {
	q, r := n/d, n%d
	if r < 0 {
		r = -r
	}
	if 2*r >= d {
		if n < 0 {
			return q - 1
		}
		return q + 1
	}
	return q
}
