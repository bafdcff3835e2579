// internal/pricing/pricing_test.go
package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotals(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name     string
		lines    []Line
		expected Totals
	}{
		{
			name:  "single item over free shipping threshold",
			lines: []Line{{UnitPrice: 199.99, Quantity: 1}},
			expected: Totals{
				Subtotal: 199.99,
				Tax:      16.00,
				Shipping: 0,
				Total:    215.99,
			},
		},
		{
			name:  "small cart pays flat shipping",
			lines: []Line{{UnitPrice: 10, Quantity: 2}},
			expected: Totals{
				Subtotal: 20,
				Tax:      1.60,
				Shipping: 5.99,
				Total:    27.59,
			},
		},
		{
			name:  "subtotal exactly at threshold still pays shipping",
			lines: []Line{{UnitPrice: 35, Quantity: 1}},
			expected: Totals{
				Subtotal: 35,
				Tax:      2.80,
				Shipping: 5.99,
				Total:    43.79,
			},
		},
		{
			name:  "one cent over threshold ships free",
			lines: []Line{{UnitPrice: 35.01, Quantity: 1}},
			expected: Totals{
				Subtotal: 35.01,
				Tax:      2.80,
				Shipping: 0,
				Total:    37.81,
			},
		},
		{
			name:  "multiple lines accumulate",
			lines: []Line{{UnitPrice: 12.49, Quantity: 2}, {UnitPrice: 3.99, Quantity: 3}},
			expected: Totals{
				Subtotal: 36.95,
				Tax:      2.96,
				Shipping: 0,
				Total:    39.91,
			},
		},
		{
			name:  "empty cart is all zeros plus shipping",
			lines: nil,
			expected: Totals{
				Subtotal: 0,
				Tax:      0,
				Shipping: 5.99,
				Total:    5.99,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(rules, tt.lines)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestComputeAvoidsFloatDrift(t *testing.T) {
	// 0.1 * 3 must be exactly 0.30, not 0.30000000000000004.
	got := Compute(DefaultRules(), []Line{{UnitPrice: 0.1, Quantity: 3}})
	assert.Equal(t, 0.30, got.Subtotal)
	assert.Equal(t, 0.02, got.Tax)
}

func TestFreeShippingIsStrictlyGreaterThan(t *testing.T) {
	rules := DefaultRules()

	at := Compute(rules, []Line{{UnitPrice: 35.00, Quantity: 1}})
	over := Compute(rules, []Line{{UnitPrice: 35.00, Quantity: 1}, {UnitPrice: 0.01, Quantity: 1}})

	assert.Equal(t, 5.99, at.Shipping)
	assert.Equal(t, 0.0, over.Shipping)
}
