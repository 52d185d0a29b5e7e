package notify

import (
	"errors"
	"time"

	"github.com/nikolayk812/sweetshop/internal/domain"
	"github.com/samber/lo"
)

type CheckoutEvent struct {
	Type       string          `json:"type"`
	UserID     string          `json:"user_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Purchases  []PurchaseEvent `json:"purchases,omitempty"`
	Failure    *FailureEvent   `json:"failure,omitempty"`
}

type PurchaseEvent struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Total     string `json:"total"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
}

type FailureEvent struct {
	Reason    string `json:"reason"`
	Message   string `json:"message"`
	ProductID string `json:"product_id,omitempty"`
	Available *int   `json:"available,omitempty"`
}

func newCheckoutEvent(outcome domain.CheckoutOutcome) CheckoutEvent {
	event := CheckoutEvent{
		Type:       EventCheckoutSucceeded,
		UserID:     outcome.UserID,
		OccurredAt: outcome.At,
		Purchases: lo.Map(outcome.Purchases, func(p domain.Purchase, _ int) PurchaseEvent {
			return PurchaseEvent{
				ID:        p.ID.String(),
				ProductID: p.ProductID.String(),
				Quantity:  p.Quantity,
				Total:     p.TotalPrice.Amount.StringFixed(2),
				Currency:  p.TotalPrice.Currency.String(),
				Status:    string(p.Status),
			}
		}),
	}

	if outcome.Succeeded() {
		return event
	}

	event.Type = EventCheckoutFailed
	event.Failure = &FailureEvent{
		Reason:  failureReason(outcome.Err),
		Message: outcome.Err.Error(),
	}

	var stockErr *domain.InsufficientStockError
	if errors.As(outcome.Err, &stockErr) {
		event.Failure.ProductID = stockErr.ProductID.String()
		event.Failure.Available = lo.ToPtr(stockErr.Available)
	}

	return event
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
