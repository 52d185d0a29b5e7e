package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/sweetshop/internal/domain"
	"github.com/nikolayk812/sweetshop/internal/metrics"
	"github.com/nikolayk812/sweetshop/internal/port"
	"github.com/samber/lo"
	"golang.org/x/text/currency"
)

const maxTransitionAttempts = 3

// OrderService reads a user's purchases and moves them through fulfilment.
type OrderService struct {
	purchases       port.PurchaseRepository
	defaultCurrency currency.Unit
	metrics         *metrics.Metrics
	logger          *slog.Logger
}

func NewOrderService(purchases port.PurchaseRepository, defaultCurrency currency.Unit, m *metrics.Metrics, logger *slog.Logger) *OrderService {
	return &OrderService{
		purchases:       purchases,
		defaultCurrency: defaultCurrency,
		metrics:         m,
		logger:          logger.With("component", "orders"),
	}
}

// ListForUser returns all of the user's purchases, newest first.
func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]domain.Purchase, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}

	purchases, err := s.purchases.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("purchases.ListByUser: %w", err)
	}

	return purchases, nil
}

// SearchForUser returns the user's purchases in any of statuses, newest first.
// No statuses means all of them.
func (s *OrderService) SearchForUser(ctx context.Context, userID string, statuses []domain.OrderStatus) ([]domain.Purchase, error) {
	if len(statuses) == 0 {
		return s.ListForUser(ctx, userID)
	}

	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}

	for _, status := range statuses {
		if _, err := domain.ToOrderStatus(string(status)); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", domain.ErrInvalidRequest, status, err)
		}
	}

	purchases, err := s.purchases.SearchPurchases(ctx, domain.PurchaseFilter{
		UserIDs:  []string{userID},
		Statuses: lo.Uniq(statuses),
	})
	if err != nil {
		return nil, fmt.Errorf("purchases.SearchPurchases: %w", err)
	}

	return purchases, nil
}

// ActiveOrders excludes delivered and cancelled purchases.
func (s *OrderService) ActiveOrders(ctx context.Context, userID string) ([]domain.Purchase, error) {
	return s.SearchForUser(ctx, userID, domain.ActiveOrderStatuses())
}

// TotalSpent sums every purchase the user ever made, cancelled ones included.
func (s *OrderService) TotalSpent(ctx context.Context, userID string) (domain.Money, error) {
	purchases, err := s.ListForUser(ctx, userID)
	if err != nil {
		return domain.Money{}, err
	}

	return s.totalSpent(purchases)
}

func (s *OrderService) totalSpent(purchases []domain.Purchase) (domain.Money, error) {
	cur := s.defaultCurrency
	if len(purchases) > 0 {
		cur = purchases[0].TotalPrice.Currency
	}

	totals := lo.Map(purchases, func(p domain.Purchase, _ int) domain.Money {
		return p.TotalPrice
	})

	total, err := domain.SumMoney(cur, totals...)
	if err != nil {
		return domain.Money{}, fmt.Errorf("domain.SumMoney: %w", err)
	}

	return total, nil
}

func (s *OrderService) Summary(ctx context.Context, userID string) (domain.PurchaseSummary, error) {
	purchases, err := s.ListForUser(ctx, userID)
	if err != nil {
		return domain.PurchaseSummary{}, err
	}

	total, err := s.totalSpent(purchases)
	if err != nil {
		return domain.PurchaseSummary{}, err
	}

	return domain.PurchaseSummary{
		Orders:     len(purchases),
		Active:     lo.CountBy(purchases, domain.Purchase.IsActive),
		TotalSpent: total,
	}, nil
}

// GetPurchase returns a purchase only to the user who made it.
func (s *OrderService) GetPurchase(ctx context.Context, userID string, purchaseID uuid.UUID) (domain.Purchase, error) {
	if userID == "" {
		return domain.Purchase{}, domain.ErrUnauthenticated
	}

	purchase, err := s.purchases.GetPurchase(ctx, purchaseID)
	if err != nil {
		return domain.Purchase{}, fmt.Errorf("purchases.GetPurchase: %w", err)
	}

	if purchase.UserID != userID {
		return domain.Purchase{}, fmt.Errorf("purchase %s: %w", purchaseID, domain.ErrNotFound)
	}

	return purchase, nil
}

// TransitionStatus moves a purchase to status to. The store update is
// conditioned on the status that was validated, and is retried on a lost race.
func (s *OrderService) TransitionStatus(ctx context.Context, purchaseID uuid.UUID, to domain.OrderStatus) (domain.Purchase, error) {
	if _, err := domain.ToOrderStatus(string(to)); err != nil {
		return domain.Purchase{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	for range maxTransitionAttempts {
		current, err := s.purchases.GetPurchase(ctx, purchaseID)
		if err != nil {
			return domain.Purchase{}, fmt.Errorf("purchases.GetPurchase: %w", err)
		}

		if err := current.Status.ValidateTransition(to); err != nil {
			return domain.Purchase{}, err
		}

		updated, err := s.purchases.UpdateStatus(ctx, purchaseID, current.Status, to)
		if errors.Is(err, port.ErrStatusChanged) {
			continue
		}
		if err != nil {
			return domain.Purchase{}, fmt.Errorf("purchases.UpdateStatus: %w", err)
		}

		s.metrics.ObserveTransition(current.Status, to)
		s.logger.InfoContext(ctx, "order status changed",
			"purchase_id", purchaseID, "user_id", updated.UserID, "from", current.Status, "to", to)

		return updated, nil
	}

	return domain.Purchase{}, fmt.Errorf("purchase %s: %w", purchaseID, port.ErrStatusChanged)
}

// SetEstimatedDelivery is allowed while the order is not terminal.
func (s *OrderService) SetEstimatedDelivery(ctx context.Context, purchaseID uuid.UUID, at time.Time) (domain.Purchase, error) {
	if at.IsZero() {
		return domain.Purchase{}, fmt.Errorf("%w: estimated delivery is empty", domain.ErrInvalidRequest)
	}

	purchase, err := s.purchases.SetEstimatedDelivery(ctx, purchaseID, at)
	if err != nil {
		return domain.Purchase{}, fmt.Errorf("purchases.SetEstimatedDelivery: %w", err)
	}

	return purchase, nil
}
