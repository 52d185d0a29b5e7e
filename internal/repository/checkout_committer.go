package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/sweetshop/internal/db"
	"github.com/nikolayk812/sweetshop/internal/domain"
	"github.com/nikolayk812/sweetshop/internal/port"
	"github.com/samber/lo"
)

type checkoutCommitter struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewCheckoutCommitter(pool *pgxpool.Pool) port.CheckoutCommitter {
	return &checkoutCommitter{
		q:    db.New(pool),
		pool: pool,
	}
}

func NewCheckoutCommitterWithTx(tx pgx.Tx) port.CheckoutCommitter {
	return &checkoutCommitter{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

// Commit decrements stock for every line with a conditioned update, inserts one
// pending purchase per line at the unit price read by that update, and clears
// the user's cart. Any line that cannot be fulfilled rolls everything back.
func (c *checkoutCommitter) Commit(ctx context.Context, userID string, lines []domain.SnapshotLine, address domain.DeliveryAddress) ([]domain.Purchase, error) {
	if userID == "" {
		return nil, errors.New("userID is empty")
	}

	if len(lines) == 0 {
		return nil, errors.New("no lines to commit")
	}

	address = address.Normalize()

	quantities := make([]int32, len(lines))
	for i, line := range lines {
		q, err := toInt4("quantity", line.Quantity)
		if err != nil {
			return nil, err
		}
		quantities[i] = q
	}

	purchases, err := withTx(ctx, c.pool, c.q, func(q *db.Queries) ([]domain.Purchase, error) {
		catalog := &catalogRepository{q: q}
		unitPrices := make([]domain.Money, len(lines))

		// lock products in a stable order so concurrent checkouts cannot deadlock
		for _, i := range lockOrder(lines) {
			line := lines[i]

			unitPrice, ok, err := catalog.DecrementIfAvailable(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return nil, fmt.Errorf("catalog.DecrementIfAvailable: %w", err)
			}
			if !ok {
				return nil, insufficientStockError(ctx, q, line)
			}

			unitPrices[i] = unitPrice
		}

		purchases := make([]domain.Purchase, 0, len(lines))

		for i, line := range lines {
			total := unitPrices[i].Mul(line.Quantity)

			row, err := q.InsertPurchase(ctx, db.InsertPurchaseParams{
				UserID:          userID,
				ProductID:       line.ProductID,
				Quantity:        quantities[i],
				TotalAmount:     total.Amount,
				TotalCurrency:   total.Currency.String(),
				DeliveryAddress: address.Address,
				DeliveryCity:    address.City,
				DeliveryPhone:   address.Phone,
			})
			if err != nil {
				return nil, fmt.Errorf("q.InsertPurchase: %w", err)
			}

			purchase, err := mapDBPurchaseToDomain(row)
			if err != nil {
				return nil, fmt.Errorf("mapDBPurchaseToDomain: %w", err)
			}

			purchases = append(purchases, purchase)
		}

		if _, err := q.ClearCart(ctx, userID); err != nil {
			return nil, fmt.Errorf("q.ClearCart: %w", err)
		}

		return purchases, nil
	})
	if err != nil {
		return nil, fmt.Errorf("withTx: %w", err)
	}

	return purchases, nil
}

func insufficientStockError(ctx context.Context, q *db.Queries, line domain.SnapshotLine) error {
	available, err := q.GetProductAvailability(ctx, line.ProductID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("q.GetProductAvailability: product %s: %w", line.ProductID, domain.ErrNotFound)
		}
		return fmt.Errorf("q.GetProductAvailability: %w", err)
	}

	return &domain.InsufficientStockError{
		ProductID: line.ProductID,
		Available: int(available),
	}
}

// lockOrder returns line indexes sorted by product id.
func lockOrder(lines []domain.SnapshotLine) []int {
	order := lo.Range(len(lines))

	slices.SortStableFunc(order, func(a, b int) int {
		return bytes.Compare(lines[a].ProductID[:], lines[b].ProductID[:])
	})

	return order
}
