package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

type ProductSource interface {
	ListProducts(ctx context.Context, first int) ([]domain.Product, error)
}
