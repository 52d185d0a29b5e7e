package port

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/sweetshop/internal/domain"
)

// ErrStatusChanged means the stored status no longer matched the expected one.
var ErrStatusChanged = errors.New("purchase status changed concurrently")

type PurchaseRepository interface {
	GetPurchase(ctx context.Context, purchaseID uuid.UUID) (domain.Purchase, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Purchase, error)

	SearchPurchases(ctx context.Context, filter domain.PurchaseFilter) ([]domain.Purchase, error)

	// UpdateStatus applies the change only if the stored status still equals from.
	UpdateStatus(ctx context.Context, purchaseID uuid.UUID, from, to domain.OrderStatus) (domain.Purchase, error)
	SetEstimatedDelivery(ctx context.Context, purchaseID uuid.UUID, at time.Time) (domain.Purchase, error)
}
