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
)

const defaultNotifyTimeout = 2 * time.Second

// CheckoutService converts a cart snapshot into purchases. Stock is checked
// once up front for a fast failure, but only the committer's conditioned
// decrement guarantees that nothing is oversold.
type CheckoutService struct {
	carts     port.CartRepository
	catalog   port.Catalog
	committer port.CheckoutCommitter
	notifier  port.Notifier
	metrics   *metrics.Metrics
	logger    *slog.Logger

	notifyTimeout time.Duration
}

func NewCheckoutService(
	carts port.CartRepository,
	catalog port.Catalog,
	committer port.CheckoutCommitter,
	notifier port.Notifier,
	m *metrics.Metrics,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		carts:     carts,
		catalog:   catalog,
		committer: committer,
		notifier:  notifier,
		metrics:   m,
		logger:    logger.With("component", "checkout"),

		notifyTimeout: defaultNotifyTimeout,
	}
}

// WithNotifyTimeout bounds how long publishing an outcome may hold up the caller.
func (s *CheckoutService) WithNotifyTimeout(d time.Duration) *CheckoutService {
	if d > 0 {
		s.notifyTimeout = d
	}
	return s
}

// CheckoutCart snapshots the user's current cart and checks it out.
func (s *CheckoutService) CheckoutCart(ctx context.Context, userID string, address domain.DeliveryAddress) ([]domain.Purchase, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}

	snapshot, err := s.carts.Snapshot(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("carts.Snapshot: %w", err)
	}

	return s.Checkout(ctx, userID, snapshot, address)
}

// Checkout either creates one pending purchase per line, decrements stock and
// clears the cart, or changes nothing and returns a typed error.
func (s *CheckoutService) Checkout(ctx context.Context, userID string, snapshot domain.CartSnapshot, address domain.DeliveryAddress) ([]domain.Purchase, error) {
	start := time.Now()

	purchases, err := s.checkout(ctx, userID, snapshot, address)

	s.report(ctx, userID, snapshot, purchases, err, time.Since(start))

	return purchases, err
}

func (s *CheckoutService) checkout(ctx context.Context, userID string, snapshot domain.CartSnapshot, address domain.DeliveryAddress) ([]domain.Purchase, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}

	if err := validateSnapshot(userID, snapshot); err != nil {
		return nil, err
	}

	if err := address.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	// validation pass: first line that cannot be fulfilled wins
	wanted := make(map[uuid.UUID]int, len(snapshot.Lines))
	for _, line := range snapshot.Lines {
		product, err := s.catalog.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("catalog.GetProduct: %w", err)
		}

		wanted[line.ProductID] += line.Quantity
		if !product.CanFulfil(wanted[line.ProductID]) {
			return nil, &domain.InsufficientStockError{
				ProductID: line.ProductID,
				Available: product.AvailableQuantity,
			}
		}
	}

	purchases, err := s.committer.Commit(ctx, userID, snapshot.Lines, address.Normalize())
	if err != nil {
		return nil, fmt.Errorf("committer.Commit: %w", err)
	}

	return purchases, nil
}

func validateSnapshot(userID string, snapshot domain.CartSnapshot) error {
	if snapshot.IsEmpty() {
		return fmt.Errorf("%w: cart is empty", domain.ErrInvalidRequest)
	}

	if snapshot.UserID != "" && snapshot.UserID != userID {
		return fmt.Errorf("%w: cart belongs to another user", domain.ErrInvalidRequest)
	}

	for _, line := range snapshot.Lines {
		if line.UserID != "" && line.UserID != userID {
			return fmt.Errorf("%w: line %s belongs to another user", domain.ErrInvalidRequest, line.ID)
		}

		if line.Quantity < 1 {
			return fmt.Errorf("%w: line %s has quantity %d", domain.ErrInvalidRequest, line.ID, line.Quantity)
		}
	}

	return nil
}

func (s *CheckoutService) report(ctx context.Context, userID string, snapshot domain.CartSnapshot, purchases []domain.Purchase, err error, elapsed time.Duration) {
	outcome := checkoutOutcome(err)

	s.metrics.ObserveCheckout(outcome, snapshot.ItemCount())

	attrs := []any{
		"user_id", userID,
		"step", "checkout",
		"status", outcome,
		"lines", len(snapshot.Lines),
		"duration_ms", elapsed.Milliseconds(),
	}

	switch outcome {
	case metrics.OutcomeSuccess:
		s.logger.InfoContext(ctx, "checkout committed", attrs...)
	case metrics.OutcomeError:
		s.logger.ErrorContext(ctx, "checkout failed", append(attrs, "error", err)...)
	default:
		s.logger.InfoContext(ctx, "checkout rejected", append(attrs, "error", err)...)
	}

	if errors.Is(err, domain.ErrUnauthenticated) || s.notifier == nil {
		return
	}

	// the checkout already happened, a cancelled request must not drop the event,
	// but a stalled broker must not hold the response either
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	notifyErr := s.notifier.Notify(notifyCtx, domain.CheckoutOutcome{
		UserID:    userID,
		Purchases: purchases,
		Err:       err,
		At:        time.Now().UTC(),
	})
	if notifyErr != nil {
		s.logger.WarnContext(ctx, "checkout notification failed",
			"user_id", userID, "step", "notify", "error", notifyErr)
	}
}

func checkoutOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, domain.ErrInsufficientStock):
		return metrics.OutcomeInsufficientStock
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrNotFound):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}
