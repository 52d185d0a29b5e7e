package repository_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/sweetshop/internal/domain"
	"github.com/nikolayk812/sweetshop/internal/port"
	"github.com/nikolayk812/sweetshop/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"golang.org/x/text/currency"
)

type catalogRepositorySuite struct {
	suite.Suite

	pool      *pgxpool.Pool
	repo      port.Catalog
	container testcontainers.Container
}

// entry point to run the tests in the suite
func TestCatalogRepositorySuite(t *testing.T) {
	suite.Run(t, new(catalogRepositorySuite))
}

// before all tests in the suite
func (suite *catalogRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	var (
		connStr string
		err     error
	)

	suite.container, connStr, err = startPostgres(ctx)
	suite.Require().NoError(err)

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.Require().NoError(err)

	suite.repo = repository.NewCatalog(suite.pool)
}

// after all tests in the suite
func (suite *catalogRepositorySuite) TearDownSuite() {
	ctx := suite.T().Context()

	if suite.pool != nil {
		suite.pool.Close()
	}
	if suite.container != nil {
		suite.NoError(suite.container.Terminate(ctx))
	}
}

func (suite *catalogRepositorySuite) TestCreateAndGetProduct() {
	tests := []struct {
		name        string
		productFunc func() domain.Product
		wantError   string
	}{
		{
			name:        "valid product: ok",
			productFunc: func() domain.Product { return fakeProduct(12) },
		},
		{
			name:        "sold out product: ok",
			productFunc: func() domain.Product { return fakeProduct(0) },
		},
		{
			name: "empty name: error",
			productFunc: func() domain.Product {
				p := fakeProduct(1)
				p.Name = ""
				return p
			},
			wantError: "name is empty",
		},
		{
			name:        "negative stock: error",
			productFunc: func() domain.Product { return fakeProduct(-1) },
			wantError:   "availableQuantity[-1] is negative",
		},
		{
			name: "negative price: invalid request",
			productFunc: func() domain.Product {
				p := fakeProduct(1)
				p.Price.Amount = decimal.NewFromInt(-1)
				return p
			},
			wantError: "q.InsertProduct: invalid request",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			product := tt.productFunc()

			id, err := suite.repo.CreateProduct(ctx, product)
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			actual, err := suite.repo.GetProduct(ctx, id)
			require.NoError(t, err)

			product.ID = id
			assertProduct(t, product, actual)
		})
	}
}

func (suite *catalogRepositorySuite) TestGetProductNotFound() {
	_, err := suite.repo.GetProduct(suite.T().Context(), uuid.New())
	suite.EqualError(err, "q.GetProduct: not found")
	suite.ErrorIs(err, domain.ErrNotFound)
}

func (suite *catalogRepositorySuite) TestDecrementIfAvailable() {
	tests := []struct {
		name          string
		available     int
		quantities    []int
		wantOK        []bool
		wantRemaining int
	}{
		{
			name:          "partial: ok",
			available:     5,
			quantities:    []int{2},
			wantOK:        []bool{true},
			wantRemaining: 3,
		},
		{
			name:          "exact stock down to zero: ok",
			available:     3,
			quantities:    []int{3},
			wantOK:        []bool{true},
			wantRemaining: 0,
		},
		{
			name:          "more than available: unchanged",
			available:     2,
			quantities:    []int{3},
			wantOK:        []bool{false},
			wantRemaining: 2,
		},
		{
			name:          "second buyer loses: unchanged after first",
			available:     4,
			quantities:    []int{3, 2},
			wantOK:        []bool{true, false},
			wantRemaining: 1,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			product := createProduct(t, suite.repo, tt.available)

			for i, q := range tt.quantities {
				unitPrice, ok, err := suite.repo.DecrementIfAvailable(ctx, product.ID, q)
				require.NoError(t, err)
				assert.Equal(t, tt.wantOK[i], ok)

				if ok {
					assert.True(t, product.Price.Equal(unitPrice), unitPrice.String())
				}
			}

			actual, err := suite.repo.GetProduct(ctx, product.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRemaining, actual.AvailableQuantity)
		})
	}
}

func (suite *catalogRepositorySuite) TestDecrementUnknownProduct() {
	_, ok, err := suite.repo.DecrementIfAvailable(suite.T().Context(), uuid.New(), 1)
	suite.NoError(err)
	suite.False(ok)
}

func (suite *catalogRepositorySuite) TestQuantityOutOfInt4Range() {
	t := suite.T()
	ctx := t.Context()

	product := createProduct(t, suite.repo, 5)

	_, _, err := suite.repo.DecrementIfAvailable(ctx, product.ID, domain.MaxQuantity+1)
	suite.ErrorIs(err, domain.ErrInvalidRequest)

	_, err = suite.repo.CreateProduct(ctx, domain.Product{
		Name:              "jawbreaker",
		Price:             product.Price,
		AvailableQuantity: domain.MaxQuantity + 1,
	})
	suite.ErrorIs(err, domain.ErrInvalidRequest)

	// nothing wrapped around to a small value
	actual, err := suite.repo.GetProduct(ctx, product.ID)
	suite.Require().NoError(err)
	suite.Equal(5, actual.AvailableQuantity)
}

func (suite *catalogRepositorySuite) TestUpdatePrice() {
	t := suite.T()
	ctx := t.Context()

	product := createProduct(t, suite.repo, 1)
	newPrice := domain.Money{Amount: decimal.RequireFromString("42.50"), Currency: currency.CHF}

	require.NoError(t, suite.repo.UpdatePrice(ctx, product.ID, newPrice))

	actual, err := suite.repo.GetProduct(ctx, product.ID)
	require.NoError(t, err)

	product.Price = newPrice
	assertProduct(t, product, actual)

	err = suite.repo.UpdatePrice(ctx, uuid.New(), newPrice)
	require.EqualError(t, err, "q.UpdateProductPrice: not found")
}

func (suite *catalogRepositorySuite) TestCountProducts() {
	t := suite.T()
	ctx := t.Context()

	before, err := suite.repo.CountProducts(ctx)
	suite.Require().NoError(err)

	createProduct(t, suite.repo, 1)
	createProduct(t, suite.repo, 2)

	after, err := suite.repo.CountProducts(ctx)
	suite.Require().NoError(err)
	suite.Equal(before+2, after)
}
