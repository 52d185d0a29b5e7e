package repository_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/sweetshop/internal/domain"
	"github.com/nikolayk812/sweetshop/internal/port"
	"github.com/nikolayk812/sweetshop/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
)

type checkoutCommitterSuite struct {
	suite.Suite

	pool      *pgxpool.Pool
	committer port.CheckoutCommitter
	carts     port.CartRepository
	catalog   port.Catalog
	purchases port.PurchaseRepository
	container testcontainers.Container
}

// entry point to run the tests in the suite
func TestCheckoutCommitterSuite(t *testing.T) {
	suite.Run(t, new(checkoutCommitterSuite))
}

// before all tests in the suite
func (suite *checkoutCommitterSuite) SetupSuite() {
	ctx := suite.T().Context()

	var (
		connStr string
		err     error
	)

	suite.container, connStr, err = startPostgres(ctx)
	suite.Require().NoError(err)

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.Require().NoError(err)

	suite.committer = repository.NewCheckoutCommitter(suite.pool)
	suite.carts = repository.NewCart(suite.pool)
	suite.catalog = repository.NewCatalog(suite.pool)
	suite.purchases = repository.NewPurchase(suite.pool)
}

// after all tests in the suite
func (suite *checkoutCommitterSuite) TearDownSuite() {
	ctx := suite.T().Context()

	if suite.pool != nil {
		suite.pool.Close()
	}
	if suite.container != nil {
		suite.NoError(suite.container.Terminate(ctx))
	}
}

type cartEntry struct {
	available int
	quantity  int
}

func (suite *checkoutCommitterSuite) fillCart(t *testing.T, userID string, entries ...cartEntry) ([]domain.Product, domain.CartSnapshot) {
	t.Helper()

	var products []domain.Product
	for _, e := range entries {
		p := createProduct(t, suite.catalog, e.available)
		_, err := suite.carts.AddItem(t.Context(), userID, p.ID, e.quantity)
		require.NoError(t, err)
		products = append(products, p)
	}

	snapshot, err := suite.carts.Snapshot(t.Context(), userID)
	require.NoError(t, err)

	return products, snapshot
}

func (suite *checkoutCommitterSuite) availability(t *testing.T, products []domain.Product) []int {
	t.Helper()

	var result []int
	for _, p := range products {
		actual, err := suite.catalog.GetProduct(t.Context(), p.ID)
		require.NoError(t, err)
		result = append(result, actual.AvailableQuantity)
	}
	return result
}

func (suite *checkoutCommitterSuite) TestCommit() {
	tests := []struct {
		name          string
		entries       []cartEntry
		wantRemaining []int
		wantShortLine int // index of the line that fails, -1 for success
		wantAvailable int
	}{
		{
			name:          "single line: ok",
			entries:       []cartEntry{{available: 5, quantity: 2}},
			wantRemaining: []int{3},
			wantShortLine: -1,
		},
		{
			name:          "exact stock on every line: ok",
			entries:       []cartEntry{{available: 1, quantity: 1}, {available: 4, quantity: 4}},
			wantRemaining: []int{0, 0},
			wantShortLine: -1,
		},
		{
			name:          "second line short: rolled back",
			entries:       []cartEntry{{available: 5, quantity: 1}, {available: 1, quantity: 2}},
			wantRemaining: []int{5, 1},
			wantShortLine: 1,
			wantAvailable: 1,
		},
		{
			name:          "sold out line: rolled back",
			entries:       []cartEntry{{available: 0, quantity: 1}, {available: 9, quantity: 3}},
			wantRemaining: []int{0, 9},
			wantShortLine: 0,
			wantAvailable: 0,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			userID := gofakeit.UUID()
			address := fakeAddress()

			products, snapshot := suite.fillCart(t, userID, tt.entries...)

			purchases, err := suite.committer.Commit(ctx, userID, snapshot.Lines, address)

			if tt.wantShortLine >= 0 {
				require.ErrorIs(t, err, domain.ErrInsufficientStock)

				var stockErr *domain.InsufficientStockError
				require.True(t, errors.As(err, &stockErr))
				assert.Equal(t, products[tt.wantShortLine].ID, stockErr.ProductID)
				assert.Equal(t, tt.wantAvailable, stockErr.Available)

				assert.Empty(t, purchases)
				assert.Equal(t, tt.wantRemaining, suite.availability(t, products))

				// nothing committed: cart intact, no purchases
				after, err := suite.carts.Snapshot(ctx, userID)
				require.NoError(t, err)
				assert.Len(t, after.Lines, len(tt.entries))

				stored, err := suite.purchases.ListByUser(ctx, userID)
				require.NoError(t, err)
				assert.Empty(t, stored)
				return
			}
			require.NoError(t, err)
			require.Len(t, purchases, len(tt.entries))

			for i, line := range snapshot.Lines {
				expected := domain.Purchase{
					UserID:     userID,
					ProductID:  line.ProductID,
					Quantity:   line.Quantity,
					TotalPrice: products[i].Price.Mul(line.Quantity),
					Delivery:   address,
					Status:     domain.OrderStatusPending,
				}
				assertPurchase(t, expected, purchases[i])
			}

			assert.Equal(t, tt.wantRemaining, suite.availability(t, products))

			after, err := suite.carts.Snapshot(ctx, userID)
			require.NoError(t, err)
			assert.True(t, after.IsEmpty())
		})
	}
}

func (suite *checkoutCommitterSuite) TestCommitPinsPriceAtCommitTime() {
	t := suite.T()
	ctx := t.Context()

	userID := gofakeit.UUID()
	products, snapshot := suite.fillCart(t, userID, cartEntry{available: 10, quantity: 3})

	// price changes after the snapshot was taken
	commitPrice := products[0].Price
	commitPrice.Amount = commitPrice.Amount.Add(decimal.NewFromInt(1))
	require.NoError(t, suite.catalog.UpdatePrice(ctx, products[0].ID, commitPrice))

	purchases, err := suite.committer.Commit(ctx, userID, snapshot.Lines, fakeAddress())
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.True(t, commitPrice.Mul(3).Amount.Equal(purchases[0].TotalPrice.Amount))

	// and never changes afterwards
	laterPrice := commitPrice
	laterPrice.Amount = laterPrice.Amount.Mul(decimal.NewFromInt(2))
	require.NoError(t, suite.catalog.UpdatePrice(ctx, products[0].ID, laterPrice))

	stored, err := suite.purchases.GetPurchase(ctx, purchases[0].ID)
	require.NoError(t, err)
	assert.True(t, commitPrice.Mul(3).Amount.Equal(stored.TotalPrice.Amount))
}

func (suite *checkoutCommitterSuite) TestConcurrentCommitsNeverOversell() {
	t := suite.T()
	ctx := t.Context()

	const (
		stock   = 3
		buyers  = 10
		perUser = 1
	)

	product := createProduct(t, suite.catalog, stock)

	snapshots := make([]domain.CartSnapshot, buyers)
	userIDs := make([]string, buyers)
	for i := range buyers {
		userIDs[i] = gofakeit.UUID()
		_, err := suite.carts.AddItem(ctx, userIDs[i], product.ID, perUser)
		require.NoError(t, err)

		snapshots[i], err = suite.carts.Snapshot(ctx, userIDs[i])
		require.NoError(t, err)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		failures  []error
	)

	for i := range buyers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := suite.committer.Commit(ctx, userIDs[i], snapshots[i].Lines, fakeAddress())

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			succeeded++
		}()
	}
	wg.Wait()

	assert.Equal(t, stock/perUser, succeeded)
	for _, err := range failures {
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	}

	actual, err := suite.catalog.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, actual.AvailableQuantity)
}

func (suite *checkoutCommitterSuite) TestOpposingLineOrderDoesNotDeadlock() {
	t := suite.T()
	ctx := t.Context()

	const rounds = 10

	first := createProduct(t, suite.catalog, rounds*2)
	second := createProduct(t, suite.catalog, rounds*2)

	for range rounds {
		forward, backward := gofakeit.UUID(), gofakeit.UUID()

		for _, step := range []struct {
			userID string
			order  []domain.Product
		}{
			{userID: forward, order: []domain.Product{first, second}},
			{userID: backward, order: []domain.Product{second, first}},
		} {
			for _, p := range step.order {
				_, err := suite.carts.AddItem(ctx, step.userID, p.ID, 1)
				require.NoError(t, err)
			}
		}

		forwardCart, err := suite.carts.Snapshot(ctx, forward)
		require.NoError(t, err)
		backwardCart, err := suite.carts.Snapshot(ctx, backward)
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make([]error, 2)

		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = suite.committer.Commit(ctx, forward, forwardCart.Lines, fakeAddress())
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = suite.committer.Commit(ctx, backward, backwardCart.Lines, fakeAddress())
		}()
		wg.Wait()

		require.NoError(t, errs[0])
		require.NoError(t, errs[1])
	}

	assert.Equal(t, []int{0, 0}, suite.availability(t, []domain.Product{first, second}))
}

func (suite *checkoutCommitterSuite) TestCommitValidation() {
	ctx := suite.T().Context()

	_, err := suite.committer.Commit(ctx, "", []domain.SnapshotLine{{}}, fakeAddress())
	suite.EqualError(err, "userID is empty")

	_, err = suite.committer.Commit(ctx, gofakeit.UUID(), nil, fakeAddress())
	suite.EqualError(err, "no lines to commit")
}
