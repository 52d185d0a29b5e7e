package repository

import (
	"fmt"

	"github.com/nikolayk812/sweetshop/internal/db"
	"github.com/nikolayk812/sweetshop/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

func toMoney(amount decimal.Decimal, currencyCode string) (domain.Money, error) {
	parsedCurrency, err := currency.ParseISO(currencyCode)
	if err != nil {
		return domain.Money{}, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
	}

	return domain.Money{Amount: amount, Currency: parsedCurrency}, nil
}

func mapDBCartItemToDomain(row db.CartItem) domain.CartLine {
	return domain.CartLine{
		ID:        row.ID,
		UserID:    row.UserID,
		ProductID: row.ProductID,
		Quantity:  int(row.Quantity),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func mapGetCartSnapshotRowToDomain(row db.GetCartSnapshotRow) (domain.SnapshotLine, error) {
	price, err := toMoney(row.PriceAmount, row.PriceCurrency)
	if err != nil {
		return domain.SnapshotLine{}, fmt.Errorf("toMoney: %w", err)
	}

	return domain.SnapshotLine{
		CartLine: domain.CartLine{
			ID:        row.ID,
			UserID:    row.UserID,
			ProductID: row.ProductID,
			Quantity:  int(row.Quantity),
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		},
		Product: domain.Product{
			ID:                row.ProductID,
			Name:              row.Name,
			Category:          row.Category,
			Price:             price,
			AvailableQuantity: int(row.AvailableQuantity),
			ImageRef:          row.ImageRef,
		},
	}, nil
}

func mapGetCartSnapshotRowsToDomain(rows []db.GetCartSnapshotRow) ([]domain.SnapshotLine, error) {
	var lines []domain.SnapshotLine

	for _, row := range rows {
		line, err := mapGetCartSnapshotRowToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapGetCartSnapshotRowToDomain: %w", err)
		}

		lines = append(lines, line)
	}

	return lines, nil
}

func mapDBProductToDomain(row db.Product) (domain.Product, error) {
	price, err := toMoney(row.PriceAmount, row.PriceCurrency)
	if err != nil {
		return domain.Product{}, fmt.Errorf("toMoney: %w", err)
	}

	return domain.Product{
		ID:                row.ID,
		Name:              row.Name,
		Category:          row.Category,
		Price:             price,
		AvailableQuantity: int(row.AvailableQuantity),
		ImageRef:          row.ImageRef,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}, nil
}

func mapDBPurchaseToDomain(row db.Purchase) (domain.Purchase, error) {
	total, err := toMoney(row.TotalAmount, row.TotalCurrency)
	if err != nil {
		return domain.Purchase{}, fmt.Errorf("toMoney: %w", err)
	}

	status, err := domain.ToOrderStatus(row.Status)
	if err != nil {
		return domain.Purchase{}, fmt.Errorf("domain.ToOrderStatus[%s]: %w", row.Status, err)
	}

	return domain.Purchase{
		ID:         row.ID,
		UserID:     row.UserID,
		ProductID:  row.ProductID,
		Quantity:   int(row.Quantity),
		TotalPrice: total,
		Delivery: domain.DeliveryAddress{
			Address: row.DeliveryAddress,
			City:    row.DeliveryCity,
			Phone:   row.DeliveryPhone,
		},
		Status:            status,
		EstimatedDelivery: row.EstimatedDelivery,
		PurchasedAt:       row.PurchasedAt,
		UpdatedAt:         row.UpdatedAt,
	}, nil
}

func mapDBPurchasesToDomain(rows []db.Purchase) ([]domain.Purchase, error) {
	var purchases []domain.Purchase

	for _, row := range rows {
		purchase, err := mapDBPurchaseToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapDBPurchaseToDomain: %w", err)
		}

		purchases = append(purchases, purchase)
	}

	return purchases, nil
}

func nilSliceIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}
