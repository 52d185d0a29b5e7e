package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PurchaseFilter has AND semantics across fields, OR semantics within each field slice
type PurchaseFilter struct {
	IDs         []uuid.UUID
	UserIDs     []string
	ProductIDs  []uuid.UUID
	Statuses    []OrderStatus
	PurchasedAt *TimeRange
}

func (f PurchaseFilter) Validate() error {
	if len(f.IDs) == 0 && len(f.UserIDs) == 0 && len(f.ProductIDs) == 0 && len(f.Statuses) == 0 && f.PurchasedAt == nil {
		return errors.New("all fields are empty")
	}

	if f.PurchasedAt != nil {
		if err := f.PurchasedAt.Validate(); err != nil {
			return fmt.Errorf("purchasedAt: %w", err)
		}
	}

	return nil
}

type TimeRange struct {
	Before *time.Time
	After  *time.Time
}

func (t TimeRange) Validate() error {
	if t.Before == nil && t.After == nil {
		return errors.New("both Before and After are nil")
	}

	if t.Before != nil && t.After != nil {
		if t.Before.Before(*t.After) {
			return fmt.Errorf("before is before After")
		}
	}

	return nil
}
