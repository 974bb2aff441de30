package snapshot_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/snapshot"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

func TestEncodeDecode(t *testing.T) {
	shade := domain.Shade{ID: gofakeit.UUID(), Name: gofakeit.Color(), Color: gofakeit.HexColor(), Image: gofakeit.URL()}
	withShades := randomProduct()
	withShades.Shades = []domain.Shade{shade}
	original := domain.NewMoney(withShades.Price.Amount.Add(decimal.NewFromInt(2)), currency.USD)
	withShades.OriginalPrice = &original

	cart := domain.Cart{Items: []domain.LineItem{
		{Product: withShades, Variant: domain.ShadeVariant(shade), Quantity: 2},
		{Product: randomProduct(), Variant: domain.NoVariant(), Quantity: 1},
		// a real shade whose id collides with the external "default" spelling
		{Product: withShades, Variant: domain.ShadeVariant(domain.Shade{ID: "default"}), Quantity: 4},
	}}

	data, err := snapshot.Encode(cart)
	require.NoError(t, err)

	restored, err := snapshot.Decode(data)
	require.NoError(t, err)

	assertCart(t, cart, restored)
}

func TestDecodeLegacy(t *testing.T) {
	legacy := `[
		{"product":{"id":"43234567890","name":"Cherry Gloss","price":7.99,"image":"/a.jpg","images":["/a.jpg"],
			"description":"shiny","ingredients":[],"shades":[],"category":"gloss","isBestSeller":true,"isNew":false,"stock":50},
		 "shade":{"id":"default","name":"Default","color":"#FFB6C1","image":"/a.jpg"},"quantity":2},
		{"product":{"id":"43234567890","name":"Cherry Gloss","price":7.99},
		 "shade":{"id":"default","name":"Default","color":"#FFB6C1","image":"/a.jpg"},"quantity":1},
		{"product":{"id":"777","name":"Rose Balm","price":"12.50"},"shade":{"id":"rose","name":"Rose"},"quantity":1},
		{"product":{"id":"888","name":"Zero","price":1},"quantity":0},
		{"product":{"id":"","name":"Broken","price":1},"quantity":3}
	]`

	cart, err := snapshot.Decode([]byte(legacy))
	require.NoError(t, err)

	require.Len(t, cart.Items, 2)

	first := cart.Items[0]
	assert.Equal(t, "43234567890", first.Product.ID)
	assert.Equal(t, 3, first.Quantity)
	assert.Equal(t, domain.VariantKey{}, first.Variant.Key())
	assert.True(t, decimal.RequireFromString("7.99").Equal(first.Product.Price.Amount))
	assert.Equal(t, "USD", first.Product.Price.Currency.String())

	second := cart.Items[1]
	assert.Equal(t, domain.ShadeKey("rose"), second.Variant.Key())
}

func TestDecode_EmptyShadeIDAndQuantityCap(t *testing.T) {
	data := `{"version":1,"items":[
		{"product":{"id":"555","name":"Clear Gloss","price":"3"},"shade":{"id":"","name":"Clear"},"quantity":9223372036854775807},
		{"product":{"id":"555","name":"Clear Gloss","price":"3"},"quantity":5}
	]}`

	cart, err := snapshot.Decode([]byte(data))
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, domain.ParseVariantKey(""), cart.Items[0].Variant.Key())
	assert.Equal(t, domain.MaxLineQuantity, cart.Items[0].Quantity)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{name: "empty: error", data: "  ", wantErr: snapshot.ErrMalformed},
		{name: "garbage: error", data: "{{not-json", wantErr: snapshot.ErrMalformed},
		{name: "truncated legacy: error", data: `[{"product":`, wantErr: snapshot.ErrMalformed},
		{name: "missing version: error", data: `{"items":[]}`, wantErr: snapshot.ErrMalformed},
		{name: "future version: error", data: `{"version":7,"items":[]}`, wantErr: snapshot.ErrUnsupportedVersion},
		{name: "bad currency: error", data: `{"version":1,"items":[{"product":{"id":"1","price":"1","currency":"ZZZZ"},"quantity":1}]}`, wantErr: snapshot.ErrMalformed},
		{name: "scalar: error", data: `42`, wantErr: snapshot.ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := snapshot.Decode([]byte(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEncodeEmpty(t *testing.T) {
	data, err := snapshot.Encode(domain.Cart{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"items":[]}`, string(data))
}

func randomProduct() domain.Product {
	return domain.Product{
		ID:           gofakeit.UUID(),
		Name:         gofakeit.ProductName(),
		Price:        domain.NewMoney(decimal.NewFromFloat(gofakeit.Price(1, 100)), currency.USD),
		Image:        gofakeit.URL(),
		Images:       []string{gofakeit.URL()},
		Description:  gofakeit.ProductDescription(),
		Ingredients:  []string{gofakeit.Word()},
		Category:     gofakeit.ProductCategory(),
		IsBestSeller: gofakeit.Bool(),
		IsNew:        gofakeit.Bool(),
		Stock:        gofakeit.Number(0, 100),
	}
}

func assertCart(t *testing.T, expected, actual domain.Cart) {
	t.Helper()

	opts := cmp.Options{
		cmp.Comparer(func(x, y currency.Unit) bool {
			return x.String() == y.String()
		}),
		cmp.Comparer(func(x, y domain.Variant) bool {
			return x == y
		}),
		cmpopts.EquateEmpty(),
	}

	diff := cmp.Diff(expected, actual, opts)
	assert.Empty(t, diff)
}
