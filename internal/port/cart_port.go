package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/sweetshop/internal/domain"
)

type CartRepository interface {
	// AddItem inserts a line or merges quantity into the existing line for the same product.
	AddItem(ctx context.Context, userID string, productID uuid.UUID, quantity int) (domain.CartLine, error)

	GetLine(ctx context.Context, userID string, lineID uuid.UUID) (domain.CartLine, error)
	UpdateQuantity(ctx context.Context, userID string, lineID uuid.UUID, quantity int) (domain.CartLine, error)

	DeleteLine(ctx context.Context, userID string, lineID uuid.UUID) (bool, error)
	Clear(ctx context.Context, userID string) (int64, error)

	Snapshot(ctx context.Context, userID string) (domain.CartSnapshot, error)
}
