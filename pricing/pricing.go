// Package pricing derives checkout totals from cart line items. All
// arithmetic uses decimals; rounding happens only when amounts are formatted
// for display.
package pricing

import "github.com/shopspring/decimal"

var (
	// Orders with a subtotal strictly above the threshold ship free,
	// otherwise a flat fee applies.
	FreeShippingThreshold = decimal.NewFromInt(50)
	FlatShippingFee       = decimal.NewFromInt(5)

	// TaxRate is a flat 8% applied to the subtotal.
	TaxRate = decimal.NewFromFloat(0.08)
)

// Line is one (unit price, quantity) pair. UnitPrice is the effective price
// snapshotted when the line was added to the cart.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Totals breaks a cart down into its charge components.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Calculate computes totals for the given lines. Subtotal is the sum of
// unit price x quantity; shipping and tax follow the fixed marketplace
// policy; total is always the exact sum of the three.
func Calculate(lines []Line) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	shipping := FlatShippingFee
	if subtotal.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(TaxRate)

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}
