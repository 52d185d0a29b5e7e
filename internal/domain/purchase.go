package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type DeliveryAddress struct {
	Address string
	City    string
	Phone   string
}

func (a DeliveryAddress) Normalize() DeliveryAddress {
	return DeliveryAddress{
		Address: strings.TrimSpace(a.Address),
		City:    strings.TrimSpace(a.City),
		Phone:   strings.TrimSpace(a.Phone),
	}
}

func (a DeliveryAddress) Validate() error {
	a = a.Normalize()

	var errs []error
	if a.Address == "" {
		errs = append(errs, errors.New("address is empty"))
	}
	if a.City == "" {
		errs = append(errs, errors.New("city is empty"))
	}
	if a.Phone == "" {
		errs = append(errs, errors.New("phone is empty"))
	}

	return errors.Join(errs...)
}

// Purchase is the durable record of one checked-out cart line.
// Only Status and EstimatedDelivery change after creation.
type Purchase struct {
	ID                uuid.UUID
	UserID            string
	ProductID         uuid.UUID
	Quantity          int
	TotalPrice        Money
	Delivery          DeliveryAddress
	Status            OrderStatus
	EstimatedDelivery *time.Time

	PurchasedAt time.Time
	UpdatedAt   time.Time
}

func (p Purchase) IsActive() bool {
	return !p.Status.IsTerminal()
}

type PurchaseSummary struct {
	Orders     int
	Active     int
	TotalSpent Money
}
