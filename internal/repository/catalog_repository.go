package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/sweetshop/internal/db"
	"github.com/nikolayk812/sweetshop/internal/domain"
	"github.com/nikolayk812/sweetshop/internal/port"
)

type catalogRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewCatalog(pool *pgxpool.Pool) port.Catalog {
	return &catalogRepository{
		q:    db.New(pool),
		pool: pool,
	}
}

func NewCatalogWithTx(tx pgx.Tx) port.Catalog {
	return &catalogRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

func (r *catalogRepository) GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	row, err := r.q.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, fmt.Errorf("q.GetProduct: %w", domain.ErrNotFound)
		}
		return domain.Product{}, fmt.Errorf("q.GetProduct: %w", err)
	}

	product, err := mapDBProductToDomain(row)
	if err != nil {
		return domain.Product{}, fmt.Errorf("mapDBProductToDomain: %w", err)
	}

	return product, nil
}

func (r *catalogRepository) DecrementIfAvailable(ctx context.Context, productID uuid.UUID, quantity int) (domain.Money, bool, error) {
	if quantity < 1 {
		return domain.Money{}, false, fmt.Errorf("quantity[%d] is not positive", quantity)
	}

	q, err := toInt4("quantity", quantity)
	if err != nil {
		return domain.Money{}, false, err
	}

	row, err := r.q.DecrementProductStock(ctx, db.DecrementProductStockParams{
		Quantity: q,
		ID:       productID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Money{}, false, nil
		}
		return domain.Money{}, false, fmt.Errorf("q.DecrementProductStock: %w", err)
	}

	unitPrice, err := toMoney(row.PriceAmount, row.PriceCurrency)
	if err != nil {
		return domain.Money{}, false, fmt.Errorf("toMoney: %w", err)
	}

	return unitPrice, true, nil
}

func (r *catalogRepository) CreateProduct(ctx context.Context, product domain.Product) (uuid.UUID, error) {
	if product.Name == "" {
		return uuid.Nil, errors.New("name is empty")
	}

	if product.AvailableQuantity < 0 {
		return uuid.Nil, fmt.Errorf("availableQuantity[%d] is negative", product.AvailableQuantity)
	}

	available, err := toInt4("availableQuantity", product.AvailableQuantity)
	if err != nil {
		return uuid.Nil, err
	}

	id, err := r.q.InsertProduct(ctx, db.InsertProductParams{
		Name:              product.Name,
		Category:          product.Category,
		PriceAmount:       product.Price.Amount,
		PriceCurrency:     product.Price.Currency.String(),
		AvailableQuantity: available,
		ImageRef:          product.ImageRef,
	})
	if err != nil {
		if hasPgCode(err, checkViolation) {
			return uuid.Nil, fmt.Errorf("q.InsertProduct: %w", domain.ErrInvalidRequest)
		}
		return uuid.Nil, fmt.Errorf("q.InsertProduct: %w", err)
	}

	return id, nil
}

func (r *catalogRepository) UpdatePrice(ctx context.Context, productID uuid.UUID, price domain.Money) error {
	rowsAffected, err := r.q.UpdateProductPrice(ctx, db.UpdateProductPriceParams{
		ID:            productID,
		PriceAmount:   price.Amount,
		PriceCurrency: price.Currency.String(),
	})
	if err != nil {
		return fmt.Errorf("q.UpdateProductPrice: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("q.UpdateProductPrice: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *catalogRepository) CountProducts(ctx context.Context) (int64, error) {
	count, err := r.q.CountProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("q.CountProducts: %w", err)
	}

	return count, nil
}
