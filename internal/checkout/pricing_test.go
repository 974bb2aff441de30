package checkout_test

import (
	"testing"

	"github.com/nikolayk812/storefront/internal/checkout"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name     string
		subtotal string
		shipping string
		tax      string
		total    string
	}{
		{name: "below threshold", subtotal: "20", shipping: "5.99", tax: "1.6", total: "27.59"},
		{name: "at threshold pays shipping", subtotal: "35", shipping: "5.99", tax: "2.8", total: "43.79"},
		{name: "above threshold ships free", subtotal: "35.01", shipping: "0", tax: "2.8", total: "37.81"},
		{name: "tax rounds to cents", subtotal: "12.345", shipping: "5.99", tax: "0.99", total: "19.325"},
		{name: "empty", subtotal: "0", shipping: "5.99", tax: "0", total: "5.99"},
	}

	p := checkout.DefaultPolicy()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Summarize(decimal.RequireFromString(tt.subtotal))

			assert.True(t, got.Shipping.Equal(decimal.RequireFromString(tt.shipping)), "shipping %s", got.Shipping)
			assert.True(t, got.Tax.Equal(decimal.RequireFromString(tt.tax)), "tax %s", got.Tax)
			assert.True(t, got.Total.Equal(decimal.RequireFromString(tt.total)), "total %s", got.Total)
		})
	}
}

func TestSummarize_CustomPolicy(t *testing.T) {
	p := checkout.Policy{
		FreeShippingThreshold: decimal.NewFromInt(50),
		ShippingFee:           decimal.NewFromInt(4),
		TaxRate:               decimal.Zero,
	}

	got := p.Summarize(decimal.NewFromInt(40))
	assert.True(t, got.Total.Equal(decimal.NewFromInt(44)))
}
