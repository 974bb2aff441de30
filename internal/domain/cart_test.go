package domain_test

import (
	"math"
	"testing"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/currency"
)

func TestCartTotalAndCount(t *testing.T) {
	tests := []struct {
		name      string
		items     []domain.LineItem
		wantTotal string
		wantCount int
	}{
		{
			name: "two lines: ok",
			items: []domain.LineItem{
				{Product: product("p1", "10"), Quantity: 2},
				{Product: product("p2", "5"), Quantity: 3},
			},
			wantTotal: "35",
			wantCount: 5,
		},
		{
			name:      "empty cart: ok",
			wantTotal: "0",
			wantCount: 0,
		},
		{
			name: "fractional price: ok",
			items: []domain.LineItem{
				{Product: product("p1", "7.99"), Quantity: 3},
			},
			wantTotal: "23.97",
			wantCount: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := domain.Cart{Items: tt.items}

			assert.True(t, decimal.RequireFromString(tt.wantTotal).Equal(c.Total()), "total %s", c.Total())
			assert.Equal(t, tt.wantCount, c.Count())
		})
	}
}

func TestCartFind(t *testing.T) {
	shadeA := domain.Shade{ID: "shadeA"}
	c := domain.Cart{Items: []domain.LineItem{
		{Product: product("p1", "1"), Variant: domain.ShadeVariant(shadeA), Quantity: 1},
		{Product: product("p1", "1"), Variant: domain.NoVariant(), Quantity: 1},
	}}

	assert.Equal(t, 0, c.Find(domain.LineKey{ProductID: "p1", Variant: domain.ShadeKey("shadeA")}))
	assert.Equal(t, 1, c.Find(domain.LineKey{ProductID: "p1", Variant: domain.ParseVariantKey("default")}))
	assert.Equal(t, -1, c.Find(domain.LineKey{ProductID: "p2", Variant: domain.ShadeKey("shadeA")}))
	assert.Equal(t, -1, c.Find(domain.LineKey{ProductID: "", Variant: domain.ShadeKey("shadeA")}))
}

func TestVariantKey(t *testing.T) {
	// a real shade literally named "default" is still distinct from no variant
	realDefault := domain.ShadeVariant(domain.Shade{ID: "default"})
	assert.NotEqual(t, domain.NoVariant().Key(), realDefault.Key())

	assert.Equal(t, "default", domain.NoVariant().Key().String())
	assert.Equal(t, "rose", domain.ShadeVariant(domain.Shade{ID: "rose"}).Key().String())
	assert.Equal(t, domain.VariantKey{}, domain.ParseVariantKey(""))
	assert.Equal(t, domain.ShadeKey("rose"), domain.ParseVariantKey("rose"))
}

func TestShadeVariant_EmptyShadeID(t *testing.T) {
	v := domain.ShadeVariant(domain.Shade{Name: "Unnamed"})

	_, ok := v.Shade()
	assert.False(t, ok)
	assert.Equal(t, domain.ParseVariantKey(""), v.Key())
}

func TestClampQuantity(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{name: "below cap: ok", in: 3, want: 3},
		{name: "at cap: ok", in: domain.MaxLineQuantity, want: domain.MaxLineQuantity},
		{name: "above cap: clamped", in: domain.MaxLineQuantity + 1, want: domain.MaxLineQuantity},
		{name: "max int: clamped", in: math.MaxInt, want: domain.MaxLineQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ClampQuantity(tt.in))
		})
	}
}

func TestProductDefaultVariant(t *testing.T) {
	p := product("p1", "1")
	_, ok := p.DefaultVariant().Shade()
	assert.False(t, ok)

	p.Shades = []domain.Shade{{ID: "first"}, {ID: "second"}}
	s, ok := p.DefaultVariant().Shade()
	assert.True(t, ok)
	assert.Equal(t, "first", s.ID)
}

func TestMoneyString(t *testing.T) {
	m := domain.NewMoney(decimal.RequireFromString("35"), currency.USD)
	assert.Equal(t, "USD 35.00", m.String())
	assert.Equal(t, "USD 105.00", m.Mul(3).String())
	assert.Equal(t, "1000", domain.FormatAmount(decimal.NewFromInt(1000), currency.JPY))
}

func product(id, price string) domain.Product {
	return domain.Product{
		ID:    id,
		Name:  "Gloss " + id,
		Price: domain.NewMoney(decimal.RequireFromString(price), currency.USD),
	}
}
