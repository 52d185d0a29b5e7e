package domain

import "errors"

type OrderStatus string

// remember to add new statuses to the validOrderStatuses map
const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var validOrderStatuses = map[OrderStatus]struct{}{
	OrderStatusPending:   {},
	OrderStatusConfirmed: {},
	OrderStatusPreparing: {},
	OrderStatusShipped:   {},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

// position on the fulfilment path, cancelled is off the path
var orderStatusStage = map[OrderStatus]int{
	OrderStatusPending:   0,
	OrderStatusConfirmed: 1,
	OrderStatusPreparing: 2,
	OrderStatusShipped:   3,
	OrderStatusDelivered: 4,
}

func ToOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := validOrderStatuses[status]; ok {
		return status, nil
	}

	return "", errors.New("invalid order status")
}

func OrderStatuses() []OrderStatus {
	result := make([]OrderStatus, 0, len(validOrderStatuses))
	for status := range validOrderStatuses {
		result = append(result, status)
	}
	return result
}

// ActiveOrderStatuses lists the non-terminal statuses in fulfilment order.
func ActiveOrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusPreparing,
		OrderStatusShipped,
	}
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo allows any forward move along the fulfilment path,
// including skipping stages, and cancellation from any non-terminal status.
func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	if _, ok := validOrderStatuses[s]; !ok || s.IsTerminal() {
		return false
	}

	if to == OrderStatusCancelled {
		return true
	}

	from, okFrom := orderStatusStage[s]
	next, okTo := orderStatusStage[to]

	return okFrom && okTo && next > from
}

func (s OrderStatus) ValidateTransition(to OrderStatus) error {
	if !s.CanTransitionTo(to) {
		return &InvalidTransitionError{From: s, To: to}
	}
	return nil
}
