package http

import (
	"time"

	"github.com/nikolayk812/sweetshop/internal/domain"
	"github.com/samber/lo"
)

type MoneyDTO struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency,omitempty"`
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartLineDTO struct {
	ID        string   `json:"id"`
	ProductID string   `json:"product_id"`
	Name      string   `json:"name"`
	Category  string   `json:"category,omitempty"`
	ImageRef  string   `json:"image_ref,omitempty"`
	UnitPrice MoneyDTO `json:"unit_price"`
	Quantity  int      `json:"quantity"`
	Subtotal  MoneyDTO `json:"subtotal"`
	Available int      `json:"available"`
	OverStock bool     `json:"over_stock"`
}

type CartDTO struct {
	UserID    string        `json:"user_id"`
	Lines     []CartLineDTO `json:"lines"`
	ItemCount int           `json:"item_count"`
	Total     MoneyDTO      `json:"total"`
}

type LineDTO struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type CheckoutRequestDTO struct {
	Address string `json:"address"`
	City    string `json:"city"`
	Phone   string `json:"phone"`
}

type PurchaseDTO struct {
	ID                string     `json:"id"`
	ProductID         string     `json:"product_id"`
	Quantity          int        `json:"quantity"`
	TotalPrice        MoneyDTO   `json:"total_price"`
	Status            string     `json:"status"`
	Address           string     `json:"address"`
	City              string     `json:"city"`
	Phone             string     `json:"phone"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
	PurchasedAt       time.Time  `json:"purchased_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type CheckoutResponseDTO struct {
	Purchases []PurchaseDTO `json:"purchases"`
}

type SummaryDTO struct {
	Orders     int      `json:"orders"`
	Active     int      `json:"active"`
	TotalSpent MoneyDTO `json:"total_spent"`
}

type UpdateStatusRequestDTO struct {
	Status string `json:"status"`
}

type EstimatedDeliveryRequestDTO struct {
	EstimatedDelivery time.Time `json:"estimated_delivery"`
}

func toMoneyDTO(m domain.Money) MoneyDTO {
	dto := MoneyDTO{Amount: m.Amount.StringFixed(2)}
	if m.Currency != (domain.Money{}).Currency {
		dto.Currency = m.Currency.String()
	}
	return dto
}

func toCartDTO(snapshot domain.CartSnapshot, total domain.Money) CartDTO {
	return CartDTO{
		UserID: snapshot.UserID,
		Lines: lo.Map(snapshot.Lines, func(l domain.SnapshotLine, _ int) CartLineDTO {
			return CartLineDTO{
				ID:        l.ID.String(),
				ProductID: l.ProductID.String(),
				Name:      l.Product.Name,
				Category:  l.Product.Category,
				ImageRef:  l.Product.ImageRef,
				UnitPrice: toMoneyDTO(l.Product.Price),
				Quantity:  l.Quantity,
				Subtotal:  toMoneyDTO(l.Subtotal()),
				Available: l.Product.AvailableQuantity,
				OverStock: l.OverStock(),
			}
		}),
		ItemCount: snapshot.ItemCount(),
		Total:     toMoneyDTO(total),
	}
}

func toLineDTO(l domain.CartLine) LineDTO {
	return LineDTO{
		ID:        l.ID.String(),
		ProductID: l.ProductID.String(),
		Quantity:  l.Quantity,
	}
}

func toPurchaseDTO(p domain.Purchase) PurchaseDTO {
	return PurchaseDTO{
		ID:                p.ID.String(),
		ProductID:         p.ProductID.String(),
		Quantity:          p.Quantity,
		TotalPrice:        toMoneyDTO(p.TotalPrice),
		Status:            string(p.Status),
		Address:           p.Delivery.Address,
		City:              p.Delivery.City,
		Phone:             p.Delivery.Phone,
		EstimatedDelivery: p.EstimatedDelivery,
		PurchasedAt:       p.PurchasedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func toPurchaseDTOs(purchases []domain.Purchase) []PurchaseDTO {
	return lo.Map(purchases, func(p domain.Purchase, _ int) PurchaseDTO {
		return toPurchaseDTO(p)
	})
}
