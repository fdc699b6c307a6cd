package pricing

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateBelowFreeShippingThreshold(t *testing.T) {
	totals := Calculate([]Line{{UnitPrice: decimal.NewFromInt(30), Quantity: 1}})

	assert.Equal(t, "30.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "5.00", totals.Shipping.StringFixed(2))
	assert.Equal(t, "2.40", totals.Tax.StringFixed(2))
	assert.Equal(t, "37.40", totals.Total.StringFixed(2))
}

func TestCalculateAboveFreeShippingThreshold(t *testing.T) {
	totals := Calculate([]Line{{UnitPrice: decimal.NewFromInt(60), Quantity: 1}})

	assert.Equal(t, "60.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "0.00", totals.Shipping.StringFixed(2))
	assert.Equal(t, "4.80", totals.Tax.StringFixed(2))
	assert.Equal(t, "64.80", totals.Total.StringFixed(2))
}

func TestCalculateThresholdBoundary(t *testing.T) {
	// Exactly 50 still pays shipping; free shipping starts strictly above.
	atThreshold := Calculate([]Line{{UnitPrice: decimal.NewFromInt(50), Quantity: 1}})
	assert.True(t, atThreshold.Shipping.Equal(FlatShippingFee))

	justAbove := Calculate([]Line{{UnitPrice: decimal.NewFromFloat(50.01), Quantity: 1}})
	assert.True(t, justAbove.Shipping.IsZero())
}

func TestCalculateEmptyCart(t *testing.T) {
	totals := Calculate(nil)
	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Tax.IsZero())
	assert.True(t, totals.Total.Equal(FlatShippingFee))
}

func TestCalculateTotalIdentity(t *testing.T) {
	// total == subtotal + shipping + tax must hold exactly for any cart.
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		var lines []Line
		for n := rng.Intn(8) + 1; n > 0; n-- {
			cents := rng.Intn(20000) + 1
			lines = append(lines, Line{
				UnitPrice: decimal.New(int64(cents), -2),
				Quantity:  rng.Intn(10) + 1,
			})
		}

		totals := Calculate(lines)
		require.True(t, totals.Total.Equal(totals.Subtotal.Add(totals.Shipping).Add(totals.Tax)),
			"identity broken for lines %v", lines)
		require.True(t, totals.Tax.Equal(totals.Subtotal.Mul(TaxRate)))
	}
}

func TestCalculateMultiplesOfQuantity(t *testing.T) {
	totals := Calculate([]Line{
		{UnitPrice: decimal.NewFromFloat(9.99), Quantity: 3},
		{UnitPrice: decimal.NewFromFloat(0.01), Quantity: 100},
	})
	assert.Equal(t, "30.97", totals.Subtotal.StringFixed(2))
}
