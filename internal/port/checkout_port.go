package port

import (
	"context"
	"errors"
	"time"

	"github.com/nikolayk812/sweetshop/internal/domain"
)

var ErrKeyInUse = errors.New("idempotency key in use")

// CheckoutCommitter turns cart lines into purchases, decrements stock
// and clears the user's cart as one atomic unit.
type CheckoutCommitter interface {
	Commit(ctx context.Context, userID string, lines []domain.SnapshotLine, address domain.DeliveryAddress) ([]domain.Purchase, error)
}

type Notifier interface {
	Notify(ctx context.Context, outcome domain.CheckoutOutcome) error
}

type IdempotencyGuard interface {
	Acquire(ctx context.Context, userID, key string, ttl time.Duration) error
	Release(ctx context.Context, userID, key string) error
}
