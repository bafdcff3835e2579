// internal/pricing/pricing.go

// Package pricing computes cart and order totals. Totals are always
// recomputed from scratch from the line items; nothing is cached or
// updated incrementally.
package pricing

import "github.com/shopspring/decimal"

// Rules holds the storefront pricing constants.
type Rules struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
}

// DefaultRules matches production: 8% flat tax, free shipping strictly
// above $35, $5.99 flat fee otherwise.
func DefaultRules() Rules {
	return Rules{
		TaxRate:               decimal.NewFromFloat(0.08),
		FreeShippingThreshold: decimal.NewFromFloat(35.0),
		ShippingFee:           decimal.NewFromFloat(5.99),
	}
}

// NewRules builds Rules from configured float values.
func NewRules(taxRate, freeShippingThreshold, shippingFee float64) Rules {
	return Rules{
		TaxRate:               decimal.NewFromFloat(taxRate),
		FreeShippingThreshold: decimal.NewFromFloat(freeShippingThreshold),
		ShippingFee:           decimal.NewFromFloat(shippingFee),
	}
}

// Line is one priced cart or order line.
type Line struct {
	UnitPrice float64
	Quantity  int
}

// Totals is the cent-rounded breakdown of a cart or order.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

// Compute returns subtotal = sum(price*qty), tax = subtotal*rate,
// shipping = 0 iff subtotal > threshold, each rounded to cents.
func Compute(rules Rules, lines []Line) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(
			decimal.NewFromFloat(line.UnitPrice).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	subtotal = subtotal.Round(2)

	tax := subtotal.Mul(rules.TaxRate).Round(2)

	shipping := rules.ShippingFee
	if subtotal.GreaterThan(rules.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	total := subtotal.Add(tax).Add(shipping).Round(2)

	return Totals{
		Subtotal: subtotal.InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		Shipping: shipping.InexactFloat64(),
		Total:    total.InexactFloat64(),
	}
}
