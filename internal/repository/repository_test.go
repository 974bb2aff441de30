package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"golang.org/x/text/currency"
)

func startPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	postgresContainer, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			"../migrations/01_cart_slots.up.sql"),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", fmt.Errorf("pc.ConnectionString: %w", err)
	}

	return postgresContainer, connStr, nil
}

func randomCart() domain.Cart {
	shade := domain.Shade{
		ID:    gofakeit.UUID(),
		Name:  gofakeit.Color(),
		Color: gofakeit.HexColor(),
		Image: gofakeit.URL(),
	}

	withShade := randomProduct()
	withShade.Shades = []domain.Shade{shade}

	return domain.Cart{Items: []domain.LineItem{
		{Product: withShade, Variant: domain.ShadeVariant(shade), Quantity: gofakeit.Number(1, 5)},
		{Product: randomProduct(), Variant: domain.NoVariant(), Quantity: gofakeit.Number(1, 5)},
	}}
}

func randomProduct() domain.Product {
	return domain.Product{
		ID:          gofakeit.UUID(),
		Name:        gofakeit.ProductName(),
		Price:       domain.NewMoney(decimal.NewFromFloat(gofakeit.Price(1, 100)), currency.USD),
		Image:       gofakeit.URL(),
		Images:      []string{gofakeit.URL(), gofakeit.URL()},
		Description: gofakeit.ProductDescription(),
		Category:    "gloss",
		IsNew:       gofakeit.Bool(),
		Stock:       gofakeit.Number(0, 100),
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
