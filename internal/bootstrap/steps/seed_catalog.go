package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikolayk812/sweetshop/internal/domain"
	"github.com/nikolayk812/sweetshop/internal/port"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// SeedCatalog fills an empty catalog. A catalog that already has products is left alone.
type SeedCatalog struct {
	catalog  port.Catalog
	products []domain.Product
}

func NewSeedCatalog(catalog port.Catalog, products []domain.Product) (SeedCatalog, error) {
	var s SeedCatalog

	if catalog == nil {
		return s, errors.New("catalog is nil")
	}
	if len(products) == 0 {
		return s, errors.New("products are empty")
	}

	return SeedCatalog{
		catalog:  catalog,
		products: products,
	}, nil
}

func (s SeedCatalog) Name() string {
	return "seed_catalog"
}

func (s SeedCatalog) Run(ctx context.Context) error {
	count, err := s.catalog.CountProducts(ctx)
	if err != nil {
		return fmt.Errorf("catalog.CountProducts: %w", err)
	}

	if count > 0 {
		return nil
	}

	for idx, product := range s.products {
		if _, err := s.catalog.CreateProduct(ctx, product); err != nil {
			return fmt.Errorf("catalog.CreateProduct[%d]: %w", idx, err)
		}
	}

	return nil
}

// SampleSweets is the development catalog.
func SampleSweets(cur currency.Unit) []domain.Product {
	sweet := func(name, category, price string, available int) domain.Product {
		return domain.Product{
			Name:              name,
			Category:          category,
			Price:             domain.Money{Amount: decimal.RequireFromString(price), Currency: cur},
			AvailableQuantity: available,
		}
	}

	return []domain.Product{
		sweet("Strawberry Cheesecake", "cakes", "24.00", 8),
		sweet("Chocolate Truffle Box", "chocolate", "15.50", 20),
		sweet("Pistachio Macarons", "pastry", "12.00", 30),
		sweet("Salted Caramel Fudge", "candy", "6.75", 40),
		sweet("Lemon Meringue Tart", "pastry", "18.00", 6),
		sweet("Gummy Bears", "candy", "3.20", 100),
	}
}
