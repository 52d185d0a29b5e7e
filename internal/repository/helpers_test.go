package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/nikolayk812/sweetshop/internal/db"
	"github.com/nikolayk812/sweetshop/internal/domain"
	"github.com/nikolayk812/sweetshop/internal/port"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"golang.org/x/text/currency"
)

// startPostgres runs a disposable postgres with the schema migrated.
func startPostgres(ctx context.Context) (testcontainers.Container, string, error) {
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("sweetshop"),
		postgres.WithUsername("sweetshop"),
		postgres.WithPassword("sweetshop"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return container, "", fmt.Errorf("container.ConnectionString: %w", err)
	}

	if err := db.Migrate(connStr); err != nil {
		return container, "", fmt.Errorf("db.Migrate: %w", err)
	}

	return container, connStr, nil
}

func randomCurrency() currency.Unit {
	return []currency.Unit{currency.EUR, currency.USD, currency.GBP}[gofakeit.Number(0, 2)]
}

func fakeProduct(available int) domain.Product {
	return domain.Product{
		Name:     gofakeit.Dessert(),
		Category: gofakeit.RandomString([]string{"chocolate", "candy", "cake", "pastry"}),
		Price: domain.Money{
			Amount:   decimal.NewFromFloat(gofakeit.Price(1, 100)).Round(2),
			Currency: randomCurrency(),
		},
		AvailableQuantity: available,
		ImageRef:          gofakeit.URL(),
	}
}

func fakeAddress() domain.DeliveryAddress {
	address := gofakeit.Address()

	return domain.DeliveryAddress{
		Address: address.Street,
		City:    address.City,
		Phone:   gofakeit.Phone(),
	}
}

func createProduct(t *testing.T, catalog port.Catalog, available int) domain.Product {
	t.Helper()

	product := fakeProduct(available)

	id, err := catalog.CreateProduct(t.Context(), product)
	require.NoError(t, err)

	product.ID = id
	return product
}

var moneyComparer = cmp.Options{
	cmp.Comparer(func(x, y currency.Unit) bool {
		return x.String() == y.String()
	}),
	cmp.Comparer(func(x, y decimal.Decimal) bool {
		return x.Equal(y)
	}),
}

func assertProduct(t *testing.T, expected, actual domain.Product) {
	t.Helper()

	opts := cmp.Options{
		cmpopts.IgnoreFields(domain.Product{}, "CreatedAt", "UpdatedAt"),
		moneyComparer,
	}

	diff := cmp.Diff(expected, actual, opts)
	assert.Empty(t, diff)
}

func assertPurchase(t *testing.T, expected, actual domain.Purchase) {
	t.Helper()

	// ID and timestamps are assigned by the database
	opts := cmp.Options{
		cmpopts.IgnoreFields(domain.Purchase{}, "ID", "PurchasedAt", "UpdatedAt"),
		cmpopts.EquateApproxTime(0),
		moneyComparer,
	}

	diff := cmp.Diff(expected, actual, opts)
	assert.Empty(t, diff)

	assert.NotEqual(t, uuid.Nil, actual.ID)
	assert.False(t, actual.PurchasedAt.IsZero())
	assert.False(t, actual.UpdatedAt.IsZero())
}
