package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/nikolayk812/sweetshop/internal/domain"
	"github.com/nikolayk812/sweetshop/internal/idempotency"
	"github.com/nikolayk812/sweetshop/internal/port"
	"github.com/nikolayk812/sweetshop/internal/service"
)

type CheckoutHandler struct {
	checkout       *service.CheckoutService
	guard          port.IdempotencyGuard
	idempotencyTTL time.Duration
	timeout        time.Duration
	logger         *slog.Logger
}

// NewCheckoutHandler accepts a nil guard, in which case Idempotency-Key is ignored.
func NewCheckoutHandler(
	checkout *service.CheckoutService,
	guard port.IdempotencyGuard,
	idempotencyTTL time.Duration,
	timeout time.Duration,
	logger *slog.Logger,
) *CheckoutHandler {
	return &CheckoutHandler{
		checkout:       checkout,
		guard:          guard,
		idempotencyTTL: idempotencyTTL,
		timeout:        timeout,
		logger:         logger,
	}
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req CheckoutRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	key := idempotency.Key(r)
	if key != "" && h.guard != nil {
		err := h.guard.Acquire(ctx, userID, key, h.idempotencyTTL)
		if errors.Is(err, port.ErrKeyInUse) {
			respondError(w, http.StatusConflict, "duplicate_request",
				"a checkout with this Idempotency-Key was already submitted")
			return
		}
		if err != nil {
			respondServiceError(w, r, h.logger, err)
			return
		}
	}

	purchases, err := h.checkout.CheckoutCart(ctx, userID, domain.DeliveryAddress{
		Address: req.Address,
		City:    req.City,
		Phone:   req.Phone,
	})
	if err != nil {
		h.release(ctx, userID, key)
		respondServiceError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
		Purchases: toPurchaseDTOs(purchases),
	})
}

// release frees the key after a failed attempt so the client can retry.
func (h *CheckoutHandler) release(ctx context.Context, userID, key string) {
	if key == "" || h.guard == nil {
		return
	}

	if err := h.guard.Release(context.WithoutCancel(ctx), userID, key); err != nil {
		h.logger.WarnContext(ctx, "idempotency key release failed",
			"user_id", userID, "step", "idempotency", "error", err)
	}
}
