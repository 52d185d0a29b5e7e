package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nikolayk812/sweetshop/internal/domain"
	"github.com/nikolayk812/sweetshop/internal/service"
)

type OrdersHandler struct {
	orders  *service.OrderService
	timeout time.Duration
	logger  *slog.Logger
}

func NewOrdersHandler(orders *service.OrderService, timeout time.Duration, logger *slog.Logger) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
		logger:  logger,
	}
}

// GET /api/v1/orders?status=pending&status=shipped
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var statuses []domain.OrderStatus

	for _, raw := range r.URL.Query()["status"] {
		status, err := domain.ToOrderStatus(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_status", fmt.Sprintf("unknown order status %q", raw))
			return
		}
		statuses = append(statuses, status)
	}

	h.list(w, r, func(ctx context.Context, userID string) ([]domain.Purchase, error) {
		return h.orders.SearchForUser(ctx, userID, statuses)
	})
}

// GET /api/v1/orders/active
func (h *OrdersHandler) ActiveOrders(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.orders.ActiveOrders)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request, fetch func(context.Context, string) ([]domain.Purchase, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	purchases, err := fetch(ctx, userID)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toPurchaseDTOs(purchases))
}

// GET /api/v1/orders/summary
func (h *OrdersHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	summary, err := h.orders.Summary(ctx, userID)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, SummaryDTO{
		Orders:     summary.Orders,
		Active:     summary.Active,
		TotalSpent: toMoneyDTO(summary.TotalSpent),
	})
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orderID, ok := parseUUIDParam(w, r, "order_id")
	if !ok {
		return
	}

	purchase, err := h.orders.GetPurchase(ctx, userID, orderID)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toPurchaseDTO(purchase))
}

// PATCH /api/v1/orders/{order_id}/status
//
// Mounted behind RequireRole(RoleFulfilment), so the order is not scoped to the caller.
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if getUserIDFromContext(r.Context()) == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orderID, ok := parseUUIDParam(w, r, "order_id")
	if !ok {
		return
	}

	var req UpdateStatusRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	status, err := domain.ToOrderStatus(req.Status)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_status", fmt.Sprintf("unknown status %q", req.Status))
		return
	}

	purchase, err := h.orders.TransitionStatus(ctx, orderID, status)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toPurchaseDTO(purchase))
}

// PATCH /api/v1/orders/{order_id}/estimated-delivery
func (h *OrdersHandler) SetEstimatedDelivery(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if getUserIDFromContext(r.Context()) == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orderID, ok := parseUUIDParam(w, r, "order_id")
	if !ok {
		return
	}

	var req EstimatedDeliveryRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	purchase, err := h.orders.SetEstimatedDelivery(ctx, orderID, req.EstimatedDelivery)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toPurchaseDTO(purchase))
}
