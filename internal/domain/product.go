package domain

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID                uuid.UUID
	Name              string
	Category          string
	Price             Money
	AvailableQuantity int
	ImageRef          string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Product) CanFulfil(quantity int) bool {
	return quantity <= p.AvailableQuantity
}
