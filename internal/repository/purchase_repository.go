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
	"github.com/samber/lo"
)

type purchaseRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewPurchase(pool *pgxpool.Pool) port.PurchaseRepository {
	return &purchaseRepository{
		q:    db.New(pool),
		pool: pool,
	}
}

func NewPurchaseWithTx(tx pgx.Tx) port.PurchaseRepository {
	return &purchaseRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

func (r *purchaseRepository) GetPurchase(ctx context.Context, purchaseID uuid.UUID) (domain.Purchase, error) {
	row, err := r.q.GetPurchase(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Purchase{}, fmt.Errorf("q.GetPurchase: %w", domain.ErrNotFound)
		}
		return domain.Purchase{}, fmt.Errorf("q.GetPurchase: %w", err)
	}

	purchase, err := mapDBPurchaseToDomain(row)
	if err != nil {
		return domain.Purchase{}, fmt.Errorf("mapDBPurchaseToDomain: %w", err)
	}

	return purchase, nil
}

func (r *purchaseRepository) ListByUser(ctx context.Context, userID string) ([]domain.Purchase, error) {
	if userID == "" {
		return nil, errors.New("userID is empty")
	}

	rows, err := r.q.ListPurchasesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("q.ListPurchasesByUser: %w", err)
	}

	purchases, err := mapDBPurchasesToDomain(rows)
	if err != nil {
		return nil, fmt.Errorf("mapDBPurchasesToDomain: %w", err)
	}

	return purchases, nil
}

func mapDomainPurchaseFilterToDBFilter(filter domain.PurchaseFilter) db.SearchPurchasesParams {
	statuses := lo.Map(filter.Statuses, func(s domain.OrderStatus, _ int) string {
		return string(s)
	})

	var purchasedAfter, purchasedBefore *time.Time

	if filter.PurchasedAt != nil {
		purchasedAfter = filter.PurchasedAt.After
		purchasedBefore = filter.PurchasedAt.Before
	}

	return db.SearchPurchasesParams{
		Ids:             nilSliceIfEmpty(filter.IDs),
		UserIds:         nilSliceIfEmpty(filter.UserIDs),
		ProductIds:      nilSliceIfEmpty(filter.ProductIDs),
		Statuses:        nilSliceIfEmpty(statuses),
		PurchasedAfter:  purchasedAfter,
		PurchasedBefore: purchasedBefore,
	}
}

func (r *purchaseRepository) SearchPurchases(ctx context.Context, filter domain.PurchaseFilter) ([]domain.Purchase, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter.Validate: %w", err)
	}

	rows, err := r.q.SearchPurchases(ctx, mapDomainPurchaseFilterToDBFilter(filter))
	if err != nil {
		return nil, fmt.Errorf("q.SearchPurchases: %w", err)
	}

	purchases, err := mapDBPurchasesToDomain(rows)
	if err != nil {
		return nil, fmt.Errorf("mapDBPurchasesToDomain: %w", err)
	}

	return purchases, nil
}

func (r *purchaseRepository) UpdateStatus(ctx context.Context, purchaseID uuid.UUID, from, to domain.OrderStatus) (domain.Purchase, error) {
	if purchaseID == uuid.Nil {
		return domain.Purchase{}, errors.New("purchaseID is empty")
	}

	if to == "" {
		return domain.Purchase{}, errors.New("status is empty")
	}

	purchase, err := withTx(ctx, r.pool, r.q, func(q *db.Queries) (domain.Purchase, error) {
		row, err := q.UpdatePurchaseStatus(ctx, db.UpdatePurchaseStatusParams{
			ToStatus:   string(to),
			ID:         purchaseID,
			FromStatus: string(from),
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.Purchase{}, missingPurchaseError(ctx, q, purchaseID, "q.UpdatePurchaseStatus", port.ErrStatusChanged)
			}
			return domain.Purchase{}, fmt.Errorf("q.UpdatePurchaseStatus: %w", err)
		}

		return mapDBPurchaseToDomain(row)
	})
	if err != nil {
		return domain.Purchase{}, fmt.Errorf("withTx: %w", err)
	}

	return purchase, nil
}

func (r *purchaseRepository) SetEstimatedDelivery(ctx context.Context, purchaseID uuid.UUID, at time.Time) (domain.Purchase, error) {
	if purchaseID == uuid.Nil {
		return domain.Purchase{}, errors.New("purchaseID is empty")
	}

	purchase, err := withTx(ctx, r.pool, r.q, func(q *db.Queries) (domain.Purchase, error) {
		row, err := q.SetPurchaseEstimatedDelivery(ctx, db.SetPurchaseEstimatedDeliveryParams{
			ID:                purchaseID,
			EstimatedDelivery: lo.ToPtr(at.UTC()),
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.Purchase{}, missingPurchaseError(ctx, q, purchaseID, "q.SetPurchaseEstimatedDelivery", nil)
			}
			return domain.Purchase{}, fmt.Errorf("q.SetPurchaseEstimatedDelivery: %w", err)
		}

		return mapDBPurchaseToDomain(row)
	})
	if err != nil {
		return domain.Purchase{}, fmt.Errorf("withTx: %w", err)
	}

	return purchase, nil
}

// missingPurchaseError explains why a conditional update matched no rows:
// the purchase does not exist, or its status did not satisfy the condition.
// With a nil cause a terminal status yields an InvalidTransitionError.
func missingPurchaseError(ctx context.Context, q *db.Queries, purchaseID uuid.UUID, op string, cause error) error {
	row, err := q.GetPurchase(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		}
		return fmt.Errorf("q.GetPurchase: %w", err)
	}

	if cause != nil {
		return fmt.Errorf("%s: %w", op, cause)
	}

	status := domain.OrderStatus(row.Status)
	return fmt.Errorf("%s: %w", op, &domain.InvalidTransitionError{From: status, To: status})
}
