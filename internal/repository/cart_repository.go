package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/sweetshop/internal/db"
	"github.com/nikolayk812/sweetshop/internal/domain"
	"github.com/nikolayk812/sweetshop/internal/port"
)

type cartRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewCart(pool *pgxpool.Pool) port.CartRepository {
	return &cartRepository{
		q:    db.New(pool),
		pool: pool,
	}
}

func NewCartWithTx(tx pgx.Tx) port.CartRepository {
	return &cartRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

func (r *cartRepository) AddItem(ctx context.Context, userID string, productID uuid.UUID, quantity int) (domain.CartLine, error) {
	if userID == "" {
		return domain.CartLine{}, errors.New("userID is empty")
	}

	if quantity < 1 {
		return domain.CartLine{}, fmt.Errorf("quantity[%d] is not positive", quantity)
	}

	q, err := toInt4("quantity", quantity)
	if err != nil {
		return domain.CartLine{}, err
	}

	arg := db.AddCartItemParams{
		UserID:    userID,
		ProductID: productID,
		Quantity:  q,
	}

	row, err := r.q.AddCartItem(ctx, arg)
	if err != nil {
		switch {
		case hasPgCode(err, foreignKeyViolation):
			return domain.CartLine{}, fmt.Errorf("q.AddCartItem: product %s: %w", productID, domain.ErrNotFound)
		case hasPgCode(err, numericValueOutOfRange), hasPgCode(err, checkViolation):
			// merged quantity overflowed int4
			return domain.CartLine{}, fmt.Errorf("q.AddCartItem: %w", domain.ErrInvalidRequest)
		}
		return domain.CartLine{}, fmt.Errorf("q.AddCartItem: %w", err)
	}

	return mapDBCartItemToDomain(row), nil
}

func (r *cartRepository) GetLine(ctx context.Context, userID string, lineID uuid.UUID) (domain.CartLine, error) {
	row, err := r.q.GetCartItem(ctx, db.GetCartItemParams{ID: lineID, UserID: userID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CartLine{}, fmt.Errorf("q.GetCartItem: %w", domain.ErrNotFound)
		}
		return domain.CartLine{}, fmt.Errorf("q.GetCartItem: %w", err)
	}

	return mapDBCartItemToDomain(row), nil
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, userID string, lineID uuid.UUID, quantity int) (domain.CartLine, error) {
	if quantity < 1 {
		return domain.CartLine{}, fmt.Errorf("quantity[%d] is not positive", quantity)
	}

	q, err := toInt4("quantity", quantity)
	if err != nil {
		return domain.CartLine{}, err
	}

	arg := db.UpdateCartItemQuantityParams{
		ID:       lineID,
		UserID:   userID,
		Quantity: q,
	}

	row, err := r.q.UpdateCartItemQuantity(ctx, arg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CartLine{}, fmt.Errorf("q.UpdateCartItemQuantity: %w", domain.ErrNotFound)
		}
		return domain.CartLine{}, fmt.Errorf("q.UpdateCartItemQuantity: %w", err)
	}

	return mapDBCartItemToDomain(row), nil
}

func (r *cartRepository) DeleteLine(ctx context.Context, userID string, lineID uuid.UUID) (bool, error) {
	arg := db.DeleteCartItemParams{
		ID:     lineID,
		UserID: userID,
	}

	rowsAffected, err := r.q.DeleteCartItem(ctx, arg)
	if err != nil {
		return false, fmt.Errorf("q.DeleteCartItem: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *cartRepository) Clear(ctx context.Context, userID string) (int64, error) {
	rowsAffected, err := r.q.ClearCart(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("q.ClearCart: %w", err)
	}

	return rowsAffected, nil
}

func (r *cartRepository) Snapshot(ctx context.Context, userID string) (domain.CartSnapshot, error) {
	var s domain.CartSnapshot

	rows, err := r.q.GetCartSnapshot(ctx, userID)
	if err != nil {
		return s, fmt.Errorf("q.GetCartSnapshot: %w", err)
	}

	lines, err := mapGetCartSnapshotRowsToDomain(rows)
	if err != nil {
		return s, fmt.Errorf("mapGetCartSnapshotRowsToDomain: %w", err)
	}

	return domain.CartSnapshot{
		UserID:     userID,
		Lines:      lines,
		CapturedAt: time.Now().UTC(),
	}, nil
}
