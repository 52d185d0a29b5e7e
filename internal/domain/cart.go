package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// MaxQuantity is the largest quantity a cart line, product or purchase can hold.
const MaxQuantity = math.MaxInt32

// ValidateQuantity accepts quantities in [1, MaxQuantity].
func ValidateQuantity(quantity int) error {
	if quantity < 1 || quantity > MaxQuantity {
		return fmt.Errorf("%w: quantity %d is out of range [1, %d]", ErrInvalidRequest, quantity, MaxQuantity)
	}
	return nil
}

// CartLine is one product in a user's cart. Quantity is always at least 1.
type CartLine struct {
	ID        uuid.UUID
	UserID    string
	ProductID uuid.UUID
	Quantity  int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartSnapshot is a point-in-time read of a cart joined with live product data.
// Lines are ordered by CreatedAt ascending.
type CartSnapshot struct {
	UserID     string
	Lines      []SnapshotLine
	CapturedAt time.Time
}

type SnapshotLine struct {
	CartLine
	Product Product
}

func (l SnapshotLine) Subtotal() Money {
	return l.Product.Price.Mul(l.Quantity)
}

// OverStock reports whether the line asks for more than is currently available.
func (l SnapshotLine) OverStock() bool {
	return !l.Product.CanFulfil(l.Quantity)
}

func (s CartSnapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}

func (s CartSnapshot) ItemCount() int {
	return lo.SumBy(s.Lines, func(l SnapshotLine) int {
		return l.Quantity
	})
}

// TotalPrice sums line subtotals. An empty cart totals zero with no currency.
func (s CartSnapshot) TotalPrice() (Money, error) {
	if s.IsEmpty() {
		return Money{}, nil
	}

	subtotals := lo.Map(s.Lines, func(l SnapshotLine, _ int) Money {
		return l.Subtotal()
	})

	return SumMoney(s.Lines[0].Product.Price.Currency, subtotals...)
}

func (s CartSnapshot) HasOverStock() bool {
	return lo.SomeBy(s.Lines, func(l SnapshotLine) bool {
		return l.OverStock()
	})
}
