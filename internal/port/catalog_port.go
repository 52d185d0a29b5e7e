package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/sweetshop/internal/domain"
)

type Catalog interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error)

	// DecrementIfAvailable subtracts quantity only if that much is available and
	// returns the unit price at that moment. It reports false when the
	// condition did not hold.
	DecrementIfAvailable(ctx context.Context, productID uuid.UUID, quantity int) (domain.Money, bool, error)

	CreateProduct(ctx context.Context, product domain.Product) (uuid.UUID, error)
	UpdatePrice(ctx context.Context, productID uuid.UUID, price domain.Money) error
	CountProducts(ctx context.Context) (int64, error)
}
