package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/sweetshop/internal/domain"
	"github.com/nikolayk812/sweetshop/internal/idempotency"
	"github.com/nikolayk812/sweetshop/internal/memory"
	"github.com/nikolayk812/sweetshop/internal/metrics"
	"github.com/nikolayk812/sweetshop/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

type testServer struct {
	store   *memory.Store
	metrics *metrics.Metrics
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	store := memory.NewStore()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	carts := service.NewCartService(store, store, logger)
	checkout := service.NewCheckoutService(store, store, store, nil, m, logger)
	orders := service.NewOrderService(store, currency.USD, m, logger)

	return &testServer{
		store:   store,
		metrics: m,
		handler: NewRouter(Handlers{
			Cart:           NewCartHandler(carts, 5*time.Second, logger),
			Checkout:       NewCheckoutHandler(checkout, idempotency.NewMemoryGuard(), time.Hour, 5*time.Second, logger),
			Orders:         NewOrdersHandler(orders, 5*time.Second, logger),
			Metrics:        m,
			MetricsHandler: metrics.Handler(reg),
		}),
	}
}

func (s *testServer) product(t *testing.T, available int, price string) domain.Product {
	t.Helper()

	id, err := s.store.CreateProduct(t.Context(), domain.Product{
		Name:              "Lemon tart",
		Price:             domain.Money{Amount: decimal.RequireFromString(price), Currency: currency.USD},
		AvailableQuantity: available,
	})
	require.NoError(t, err)

	p, err := s.store.GetProduct(t.Context(), id)
	require.NoError(t, err)
	return p
}

type request struct {
	method  string
	path    string
	userID  string
	body    any
	headers map[string]string
}

func (s *testServer) do(t *testing.T, req request) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if req.body != nil {
		raw, err := json.Marshal(req.body)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	r := httptest.NewRequest(req.method, req.path, body)
	if req.userID != "" {
		r.Header.Set(UserIDHeader, req.userID)
	}
	for k, v := range req.headers {
		r.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

var fulfilment = map[string]string{RolesHeader: "support, Fulfilment"}

var checkoutBody = CheckoutRequestDTO{Address: "1 Candy Lane", City: "Sugartown", Phone: "555-0100"}

func TestCartEndpoints(t *testing.T) {
	s := newTestServer(t)
	p := s.product(t, 2, "3.00")

	w := s.do(t, request{method: http.MethodPost, path: "/api/v1/cart/items", userID: "u1",
		body: AddItemRequestDTO{ProductID: p.ID.String(), Quantity: 1}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, request{method: http.MethodPost, path: "/api/v1/cart/items", userID: "u1",
		body: AddItemRequestDTO{ProductID: p.ID.String(), Quantity: 2}})
	require.Equal(t, http.StatusCreated, w.Code)
	line := decode[LineDTO](t, w)
	assert.Equal(t, 3, line.Quantity)

	w = s.do(t, request{method: http.MethodGet, path: "/api/v1/cart", userID: "u1"})
	require.Equal(t, http.StatusOK, w.Code)
	cart := decode[CartDTO](t, w)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 3, cart.ItemCount)
	assert.Equal(t, MoneyDTO{Amount: "9.00", Currency: "USD"}, cart.Total)
	assert.True(t, cart.Lines[0].OverStock)
	assert.Equal(t, "Lemon tart", cart.Lines[0].Name)

	w = s.do(t, request{method: http.MethodPut, path: "/api/v1/cart/items/" + line.ID, userID: "u1",
		body: UpdateQuantityRequestDTO{Quantity: 2}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[LineDTO](t, w).Quantity)

	w = s.do(t, request{method: http.MethodPut, path: "/api/v1/cart/items/" + line.ID, userID: "u1",
		body: UpdateQuantityRequestDTO{Quantity: 0}})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, request{method: http.MethodGet, path: "/api/v1/cart", userID: "u1"})
	cart = decode[CartDTO](t, w)
	assert.Empty(t, cart.Lines)
	assert.Equal(t, MoneyDTO{Amount: "0.00"}, cart.Total)

	w = s.do(t, request{method: http.MethodPut, path: "/api/v1/cart/items/" + line.ID, userID: "u1",
		body: UpdateQuantityRequestDTO{Quantity: 0}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, request{method: http.MethodDelete, path: "/api/v1/cart/items/" + line.ID, userID: "u1"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, request{method: http.MethodDelete, path: "/api/v1/cart", userID: "u1"})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCartEndpoints_Errors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name     string
		req      request
		wantCode int
		wantErr  string
	}{
		{
			name:     "no identity",
			req:      request{method: http.MethodGet, path: "/api/v1/cart"},
			wantCode: http.StatusUnauthorized,
			wantErr:  "unauthorized",
		},
		{
			name: "bad product id",
			req: request{method: http.MethodPost, path: "/api/v1/cart/items", userID: "u1",
				body: AddItemRequestDTO{ProductID: "nope", Quantity: 1}},
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid_product_id",
		},
		{
			name: "unknown product",
			req: request{method: http.MethodPost, path: "/api/v1/cart/items", userID: "u1",
				body: AddItemRequestDTO{ProductID: uuid.NewString(), Quantity: 1}},
			wantCode: http.StatusNotFound,
			wantErr:  "not_found",
		},
		{
			name: "zero quantity",
			req: request{method: http.MethodPost, path: "/api/v1/cart/items", userID: "u1",
				body: AddItemRequestDTO{ProductID: uuid.NewString(), Quantity: 0}},
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid_request",
		},
		{
			name: "quantity above int4",
			req: request{method: http.MethodPost, path: "/api/v1/cart/items", userID: "u1",
				body: AddItemRequestDTO{ProductID: uuid.NewString(), Quantity: 1 << 32}},
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid_request",
		},
		{
			name: "unknown line",
			req: request{method: http.MethodPut, path: "/api/v1/cart/items/" + uuid.NewString(), userID: "u1",
				body: UpdateQuantityRequestDTO{Quantity: 2}},
			wantCode: http.StatusNotFound,
			wantErr:  "not_found",
		},
		{
			name: "unknown field",
			req: request{method: http.MethodPut, path: "/api/v1/cart/items/" + uuid.NewString(), userID: "u1",
				body: map[string]any{"qty": 2}},
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid_request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.req)
			require.Equal(t, tt.wantCode, w.Code, w.Body.String())
			assert.Equal(t, tt.wantErr, decode[ErrorResponse](t, w).Code)
		})
	}
}

func TestCheckoutEndpoint(t *testing.T) {
	s := newTestServer(t)
	p1 := s.product(t, 5, "3.00")
	p2 := s.product(t, 1, "10.00")

	for _, item := range []AddItemRequestDTO{
		{ProductID: p1.ID.String(), Quantity: 2},
		{ProductID: p2.ID.String(), Quantity: 2},
	} {
		w := s.do(t, request{method: http.MethodPost, path: "/api/v1/cart/items", userID: "u1", body: item})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	headers := map[string]string{idempotency.Header: "attempt-1"}

	// p2 is short, the key is released for the retry
	w := s.do(t, request{method: http.MethodPost, path: "/api/v1/checkout", userID: "u1", body: checkoutBody, headers: headers})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	errResp := decode[ErrorResponse](t, w)
	assert.Equal(t, "insufficient_stock", errResp.Code)
	assert.Equal(t, p2.ID.String(), errResp.Details["product_id"])
	assert.EqualValues(t, 1, errResp.Details["available"])

	w = s.do(t, request{method: http.MethodGet, path: "/api/v1/cart", userID: "u1"})
	line := decode[CartDTO](t, w).Lines[1]

	w = s.do(t, request{method: http.MethodPut, path: "/api/v1/cart/items/" + line.ID, userID: "u1",
		body: UpdateQuantityRequestDTO{Quantity: 1}})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, request{method: http.MethodPost, path: "/api/v1/checkout", userID: "u1", body: checkoutBody, headers: headers})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[CheckoutResponseDTO](t, w)
	require.Len(t, resp.Purchases, 2)
	assert.Equal(t, MoneyDTO{Amount: "6.00", Currency: "USD"}, resp.Purchases[0].TotalPrice)
	assert.Equal(t, MoneyDTO{Amount: "10.00", Currency: "USD"}, resp.Purchases[1].TotalPrice)
	assert.Equal(t, "pending", resp.Purchases[0].Status)

	w = s.do(t, request{method: http.MethodPost, path: "/api/v1/checkout", userID: "u1", body: checkoutBody, headers: headers})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "duplicate_request", decode[ErrorResponse](t, w).Code)

	// empty cart without a key
	w = s.do(t, request{method: http.MethodPost, path: "/api/v1/checkout", userID: "u1", body: checkoutBody})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, request{method: http.MethodPost, path: "/api/v1/cart/items", userID: "u1",
		body: AddItemRequestDTO{ProductID: p1.ID.String(), Quantity: 1}})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, request{method: http.MethodPost, path: "/api/v1/checkout", userID: "u1",
		body: CheckoutRequestDTO{Address: "x", City: "y"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[ErrorResponse](t, w).Error, "phone is empty")
}

func TestOrdersEndpoints(t *testing.T) {
	s := newTestServer(t)
	p := s.product(t, 5, "2.50")

	w := s.do(t, request{method: http.MethodPost, path: "/api/v1/cart/items", userID: "u1",
		body: AddItemRequestDTO{ProductID: p.ID.String(), Quantity: 2}})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, request{method: http.MethodPost, path: "/api/v1/checkout", userID: "u1", body: checkoutBody})
	require.Equal(t, http.StatusCreated, w.Code)
	order := decode[CheckoutResponseDTO](t, w).Purchases[0]

	w = s.do(t, request{method: http.MethodGet, path: "/api/v1/orders/" + order.ID, userID: "u1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, order.ID, decode[PurchaseDTO](t, w).ID)

	w = s.do(t, request{method: http.MethodGet, path: "/api/v1/orders/" + order.ID, userID: "u2"})
	require.Equal(t, http.StatusNotFound, w.Code)

	eta := time.Date(2030, 5, 1, 10, 0, 0, 0, time.UTC)
	w = s.do(t, request{method: http.MethodPatch, path: "/api/v1/orders/" + order.ID + "/estimated-delivery", userID: "ops", headers: fulfilment,
		body: EstimatedDeliveryRequestDTO{EstimatedDelivery: eta}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, decode[PurchaseDTO](t, w).EstimatedDelivery)

	w = s.do(t, request{method: http.MethodPatch, path: "/api/v1/orders/" + order.ID + "/status", userID: "ops", headers: fulfilment,
		body: UpdateStatusRequestDTO{Status: "shipped"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "shipped", decode[PurchaseDTO](t, w).Status)

	w = s.do(t, request{method: http.MethodPatch, path: "/api/v1/orders/" + order.ID + "/status", userID: "ops", headers: fulfilment,
		body: UpdateStatusRequestDTO{Status: "confirmed"}})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errResp := decode[ErrorResponse](t, w)
	assert.Equal(t, "invalid_transition", errResp.Code)
	assert.Equal(t, map[string]any{"from": "shipped", "to": "confirmed"}, errResp.Details)

	w = s.do(t, request{method: http.MethodPatch, path: "/api/v1/orders/" + order.ID + "/status", userID: "ops", headers: fulfilment,
		body: UpdateStatusRequestDTO{Status: "lost"}})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, request{method: http.MethodGet, path: "/api/v1/orders/active", userID: "u1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]PurchaseDTO](t, w), 1)

	w = s.do(t, request{method: http.MethodPatch, path: "/api/v1/orders/" + order.ID + "/status", userID: "ops", headers: fulfilment,
		body: UpdateStatusRequestDTO{Status: "delivered"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, request{method: http.MethodGet, path: "/api/v1/orders/active", userID: "u1"})
	assert.Empty(t, decode[[]PurchaseDTO](t, w))

	w = s.do(t, request{method: http.MethodGet, path: "/api/v1/orders", userID: "u1"})
	assert.Len(t, decode[[]PurchaseDTO](t, w), 1)

	w = s.do(t, request{method: http.MethodGet, path: "/api/v1/orders?status=delivered", userID: "u1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]PurchaseDTO](t, w), 1)

	w = s.do(t, request{method: http.MethodGet, path: "/api/v1/orders?status=pending&status=shipped", userID: "u1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]PurchaseDTO](t, w))

	w = s.do(t, request{method: http.MethodGet, path: "/api/v1/orders?status=lost", userID: "u1"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_status", decode[ErrorResponse](t, w).Code)

	w = s.do(t, request{method: http.MethodGet, path: "/api/v1/orders/summary", userID: "u1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, SummaryDTO{
		Orders:     1,
		Active:     0,
		TotalSpent: MoneyDTO{Amount: "5.00", Currency: "USD"},
	}, decode[SummaryDTO](t, w))

	assert.InDelta(t, 1, testutil.ToFloat64(s.metrics.StatusTransitions.WithLabelValues("shipped", "delivered")), 0)
}

func TestOrdersEndpoints_FulfilmentOnly(t *testing.T) {
	s := newTestServer(t)
	p := s.product(t, 1, "1.00")

	w := s.do(t, request{method: http.MethodPost, path: "/api/v1/cart/items", userID: "u1",
		body: AddItemRequestDTO{ProductID: p.ID.String(), Quantity: 1}})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, request{method: http.MethodPost, path: "/api/v1/checkout", userID: "u1", body: checkoutBody})
	require.Equal(t, http.StatusCreated, w.Code)
	order := decode[CheckoutResponseDTO](t, w).Purchases[0]

	statusPath := "/api/v1/orders/" + order.ID + "/status"
	etaPath := "/api/v1/orders/" + order.ID + "/estimated-delivery"
	cancelBody := UpdateStatusRequestDTO{Status: "cancelled"}
	etaBody := EstimatedDeliveryRequestDTO{EstimatedDelivery: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}

	tests := []struct {
		name     string
		req      request
		wantCode int
		wantErr  string
	}{
		{
			name:     "other shopper cancels: forbidden",
			req:      request{method: http.MethodPatch, path: statusPath, userID: "u2", body: cancelBody},
			wantCode: http.StatusForbidden,
			wantErr:  "forbidden",
		},
		{
			name:     "owner cancels: forbidden",
			req:      request{method: http.MethodPatch, path: statusPath, userID: "u1", body: cancelBody},
			wantCode: http.StatusForbidden,
			wantErr:  "forbidden",
		},
		{
			name: "shopper with another role: forbidden",
			req: request{method: http.MethodPatch, path: etaPath, userID: "u2", body: etaBody,
				headers: map[string]string{RolesHeader: "support"}},
			wantCode: http.StatusForbidden,
			wantErr:  "forbidden",
		},
		{
			name:     "role without identity: unauthorized",
			req:      request{method: http.MethodPatch, path: statusPath, body: cancelBody, headers: fulfilment},
			wantCode: http.StatusUnauthorized,
			wantErr:  "unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.req)
			require.Equal(t, tt.wantCode, w.Code, w.Body.String())
			assert.Equal(t, tt.wantErr, decode[ErrorResponse](t, w).Code)
		})
	}

	w = s.do(t, request{method: http.MethodGet, path: "/api/v1/orders/" + order.ID, userID: "u1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pending", decode[PurchaseDTO](t, w).Status)

	w = s.do(t, request{method: http.MethodPatch, path: statusPath, userID: "ops", body: cancelBody, headers: fulfilment})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "cancelled", decode[PurchaseDTO](t, w).Status)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, request{method: http.MethodGet, path: "/health"})
	require.Equal(t, http.StatusOK, w.Code)

	s.do(t, request{method: http.MethodGet, path: "/api/v1/orders/" + uuid.NewString(), userID: "u1"})

	assert.InDelta(t, 1, testutil.ToFloat64(s.metrics.Requests.WithLabelValues("GET /api/v1/orders/{order_id}", "404")), 0)

	w = s.do(t, request{method: http.MethodGet, path: "/metrics"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sweetshop_http_requests_total")
}
