package pricing_test

import (
	"testing"

	"sportshop/internal/models"
	"sportshop/internal/pricing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveUnitPrice(t *testing.T) {
	tests := []struct {
		name     string
		price    int64
		discount int
		want     int64
	}{
		{"no discount", 10000, 0, 10000},
		{"twenty percent", 10000, 20, 8000},
		{"rounds down below half", 999, 15, 849},
		{"rounds half up", 3, 50, 2},
		{"rounds half away on one centime", 1, 50, 1},
		{"half on a larger price", 5, 10, 5},
		{"full discount", 4500, 100, 0},
		{"negative discount ignored", 4500, -5, 4500},
		{"discount above 100 capped", 4500, 150, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := models.Product{Price: tt.price, Discount: tt.discount}
			assert.Equal(t, tt.want, pricing.EffectiveUnitPrice(p))
		})
	}
}

func TestEffectiveUnitPriceNeverExceedsPrice(t *testing.T) {
	for price := int64(0); price <= 2000; price += 7 {
		for d := 0; d <= 100; d++ {
			p := models.Product{Price: price, Discount: d}
			got := pricing.EffectiveUnitPrice(p)
			if d == 0 {
				assert.Equal(t, price, got)
				continue
			}
			assert.LessOrEqual(t, got, price, "price=%d discount=%d", price, d)
			assert.GreaterOrEqual(t, got, int64(0))
		}
	}
}

func TestLineAndCartTotal(t *testing.T) {
	a := models.Product{ID: 1, Price: 10000}
	b := models.Product{ID: 2, Price: 10000, Discount: 20}
	items := []models.CartItem{
		{Product: a, Quantity: 2},
		{Product: b, Quantity: 3},
	}

	assert.Equal(t, int64(20000), pricing.LineTotal(a, 2))
	assert.Equal(t, int64(24000), pricing.LineTotal(b, 3))

	var sum int64
	for _, it := range items {
		sum += pricing.LineTotal(it.Product, it.Quantity)
	}
	assert.Equal(t, sum, pricing.CartTotal(items))
	assert.Equal(t, int64(44000), pricing.CartTotal(items))
	assert.Zero(t, pricing.CartTotal(nil))
}

func TestShipping(t *testing.T) {
	assert.Equal(t, pricing.ShippingFee, pricing.Shipping(0))
	assert.Equal(t, pricing.ShippingFee, pricing.Shipping(49999))
	assert.Equal(t, pricing.ShippingFee, pricing.Shipping(50000))
	assert.Equal(t, int64(0), pricing.Shipping(50001))
}

func TestSummarize(t *testing.T) {
	items := []models.CartItem{{Product: models.Product{Price: 30000}, Quantity: 2}}
	s := pricing.Summarize(items)
	assert.Equal(t, int64(60000), s.Subtotal)
	assert.Equal(t, int64(0), s.Shipping)
	assert.Equal(t, int64(60000), s.Total)

	empty := pricing.Summarize(nil)
	assert.NotNil(t, empty.Items)
	assert.Equal(t, pricing.ShippingFee, empty.Total)
}
