package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/yourqueen-golang/internal/auth"
	"github.com/01moynul/yourqueen-golang/internal/cache"
	"github.com/01moynul/yourqueen-golang/internal/handlers"
	"github.com/01moynul/yourqueen-golang/internal/models"
	"github.com/01moynul/yourqueen-golang/internal/orders"
	"github.com/01moynul/yourqueen-golang/internal/orders/orderstest"
	"github.com/01moynul/yourqueen-golang/internal/routes"
	"github.com/01moynul/yourqueen-golang/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	orders *orderstest.Store
	mock   sqlmock.Sqlmock
	tokens *auth.Manager
	redis  *miniredis.Miniredis
}

func newServer(t *testing.T) *testServer {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	orderStore := orderstest.New()
	tokens := auth.NewManager("test-secret", time.Hour)
	h := &handlers.Handlers{
		Store:  store.New(db),
		Orders: orders.NewService(orderStore),
		Stats:  cache.NewStatsCache(rdb, time.Minute),
		Tokens: tokens,
	}

	return &testServer{
		router: routes.SetupRouter(h, routes.Options{FrontendURL: "http://localhost:3000"}),
		orders: orderStore,
		mock:   mock,
		tokens: tokens,
		redis:  mr,
	}
}

// do sends a request as userID (0 means anonymous).
func (s *testServer) do(t *testing.T, method, path, body string, userID int64) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if userID > 0 {
		token, err := s.tokens.GenerateToken(userID, models.RoleCustomer)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// expectRole answers the role lookup RequireRoles makes for staff routes.
func (s *testServer) expectRole(userID int64, role string) {
	s.mock.ExpectQuery(regexpQuote("SELECT role FROM users WHERE id = ?")).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow(role))
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func seedGoldHoopCart(s *testServer, userID int64) {
	s.orders.AddProduct(models.Product{
		ID:            1,
		Name:          "Gold Hoop",
		Price:         decimal.NewFromInt(1000),
		DiscountPrice: decimal.NewNullDecimal(decimal.NewFromInt(800)),
		StockQuantity: 5,
		IsActive:      true,
	})
	s.orders.AddUser(userID)
	s.orders.AddCartLine(userID, 1, 2)
}

const checkoutBody = `{"shippingAddress":{"fullName":"Asha Rai","city":"Kathmandu"},"paymentMethod":"cod"}`

func TestHealth(t *testing.T) {
	s := newServer(t)
	w := s.do(t, http.MethodGet, "/api/health", "", 0)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPlaceOrder(t *testing.T) {
	s := newServer(t)
	seedGoldHoopCart(s, 7)

	w := s.do(t, http.MethodPost, "/api/orders", checkoutBody, 7)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	order := decode(t, w)["order"].(map[string]any)
	assert.Equal(t, "1600", order["subtotal"])
	assert.Equal(t, "208", order["tax"])
	assert.Equal(t, "200", order["shippingFee"])
	assert.Equal(t, "2008", order["totalAmount"])
	assert.Equal(t, "pending", order["orderStatus"])
	assert.Regexp(t, `^YQ-\d+-[0-9A-F]{9}$`, order["orderNumber"])

	assert.Empty(t, s.orders.CartLines(7))
	assert.Equal(t, 3, s.orders.Product(1).StockQuantity)
	assert.Equal(t, int64(20), s.orders.LoyaltyPoints(7))
}

func TestPlaceOrderErrors(t *testing.T) {
	tests := []struct {
		name   string
		seed   func(s *testServer)
		body   string
		userID int64
		want   int
	}{
		{"anonymous", func(*testServer) {}, checkoutBody, 0, http.StatusUnauthorized},
		{"empty cart", func(s *testServer) { s.orders.AddUser(7) }, checkoutBody, 7, http.StatusBadRequest},
		{"too many units", func(s *testServer) {
			seedGoldHoopCart(s, 7)
			s.orders.AddCartLine(7, 1, 6)
		}, checkoutBody, 7, http.StatusConflict},
		{"inactive product", func(s *testServer) {
			seedGoldHoopCart(s, 7)
			p := s.orders.Product(1)
			p.IsActive = false
			s.orders.AddProduct(p)
		}, checkoutBody, 7, http.StatusConflict},
		{"unknown payment method", func(s *testServer) { seedGoldHoopCart(s, 7) },
			`{"shippingAddress":{"city":"Kathmandu"},"paymentMethod":"paypal"}`, 7, http.StatusBadRequest},
		{"address is not an object", func(s *testServer) { seedGoldHoopCart(s, 7) },
			`{"shippingAddress":"Kathmandu","paymentMethod":"cod"}`, 7, http.StatusBadRequest},
		{"malformed body", func(s *testServer) { seedGoldHoopCart(s, 7) }, `{`, 7, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newServer(t)
			tc.seed(s)

			w := s.do(t, http.MethodPost, "/api/orders", tc.body, tc.userID)
			assert.Equal(t, tc.want, w.Code, w.Body.String())
			assert.Contains(t, decode(t, w), "error")
			assert.Zero(t, s.orders.OrderCount())
		})
	}
}

func TestCustomerStatusChange(t *testing.T) {
	tests := []struct {
		name    string
		current string
		owner   int64
		body    string
		want    int
	}{
		{"cancel pending", models.OrderStatusPending, 7, `{"status":"cancelled"}`, http.StatusOK},
		{"cancel processing", models.OrderStatusProcessing, 7, `{"status":"cancelled"}`, http.StatusBadRequest},
		{"advance own order", models.OrderStatusPending, 7, `{"status":"shipped"}`, http.StatusBadRequest},
		{"someone else's order", models.OrderStatusPending, 8, `{"status":"cancelled"}`, http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newServer(t)
			id := s.orders.PutOrder(models.Order{UserID: tc.owner, OrderStatus: tc.current, PaymentStatus: models.PaymentStatusPending})

			w := s.do(t, http.MethodPut, "/api/orders/"+itoa(id)+"/status", tc.body, 7)
			assert.Equal(t, tc.want, w.Code, w.Body.String())
		})
	}
}

func TestGetOrderDetails(t *testing.T) {
	s := newServer(t)
	mine := s.orders.PutOrder(models.Order{UserID: 7, OrderNumber: "YQ-1-AAAAAAAAA", OrderStatus: models.OrderStatusPending})
	theirs := s.orders.PutOrder(models.Order{UserID: 8, OrderStatus: models.OrderStatusPending})

	w := s.do(t, http.MethodGet, "/api/orders/"+itoa(mine), "", 7)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "YQ-1-AAAAAAAAA", decode(t, w)["order"].(map[string]any)["orderNumber"])

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/orders/"+itoa(theirs), "", 7).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/orders/abc", "", 7).Code)

	w = s.do(t, http.MethodGet, "/api/orders", "", 7)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["orders"], 1)
}

func TestCardPayment(t *testing.T) {
	s := newServer(t)
	pending := s.orders.PutOrder(models.Order{UserID: 7, PaymentMethod: models.PaymentMethodCOD,
		OrderStatus: models.OrderStatusPending, PaymentStatus: models.PaymentStatusPending})
	cancelled := s.orders.PutOrder(models.Order{UserID: 7, OrderStatus: models.OrderStatusCancelled,
		PaymentStatus: models.PaymentStatusPending})

	w := s.do(t, http.MethodPost, "/api/payments/card", `{"orderId":`+itoa(pending)+`}`, 7)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	order := decode(t, w)["order"].(map[string]any)
	assert.Equal(t, "card", order["paymentMethod"])
	assert.Equal(t, "completed", order["paymentStatus"])
	assert.Equal(t, "processing", order["orderStatus"])

	w = s.do(t, http.MethodPost, "/api/payments/card", `{"orderId":`+itoa(cancelled)+`}`, 7)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestKhaltiFlow(t *testing.T) {
	s := newServer(t)
	id := s.orders.PutOrder(models.Order{UserID: 7, PaymentMethod: models.PaymentMethodCOD,
		OrderStatus: models.OrderStatusPending, PaymentStatus: models.PaymentStatusFailed})

	w := s.do(t, http.MethodPost, "/api/payments/khalti", `{"orderId":`+itoa(id)+`}`, 7)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	session := decode(t, w)
	assert.True(t, strings.HasPrefix(session["pidx"].(string), "mock_khalti_"))

	// Only the owner can confirm.
	w = s.do(t, http.MethodPost, "/api/payments/khalti/verify", `{"orderId":`+itoa(id)+`,"pidx":"x"}`, 8)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/payments/khalti/verify", `{"orderId":`+itoa(id)+`,"pidx":"x"}`, 7)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	order := decode(t, w)["order"].(map[string]any)
	assert.Equal(t, "khalti", order["paymentMethod"])
	assert.Equal(t, "completed", order["paymentStatus"])
	assert.Equal(t, "processing", order["orderStatus"])
}

func TestVerifyKhaltiLeavesClosedOrdersAlone(t *testing.T) {
	tests := []struct {
		name  string
		order models.Order
	}{
		{"cancelled", models.Order{UserID: 7, PaymentMethod: models.PaymentMethodKhalti,
			OrderStatus: models.OrderStatusCancelled, PaymentStatus: models.PaymentStatusPending}},
		{"never initiated", models.Order{UserID: 7, PaymentMethod: models.PaymentMethodCOD,
			OrderStatus: models.OrderStatusPending, PaymentStatus: models.PaymentStatusPending}},
		{"already paid", models.Order{UserID: 7, PaymentMethod: models.PaymentMethodKhalti,
			OrderStatus: models.OrderStatusPending, PaymentStatus: models.PaymentStatusCompleted}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newServer(t)
			id := s.orders.PutOrder(tc.order)

			w := s.do(t, http.MethodPost, "/api/payments/khalti/verify", `{"orderId":`+itoa(id)+`,"pidx":"x"}`, 7)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			order, err := s.orders.GetOrder(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, tc.order.OrderStatus, order.OrderStatus)
			assert.Equal(t, tc.order.PaymentStatus, order.PaymentStatus)
			assert.Equal(t, tc.order.PaymentMethod, order.PaymentMethod)
		})
	}
}

func TestAdminOrderRoutes(t *testing.T) {
	s := newServer(t)
	id := s.orders.PutOrder(models.Order{UserID: 7, OrderStatus: models.OrderStatusCompleted, PaymentStatus: models.PaymentStatusCompleted})

	s.expectRole(2, models.RoleCustomer)
	w := s.do(t, http.MethodGet, "/api/admin/orders", "", 2)
	assert.Equal(t, http.StatusForbidden, w.Code)

	s.expectRole(3, models.RoleManager)
	w = s.do(t, http.MethodGet, "/api/admin/orders?status=bogus", "", 3)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.expectRole(3, models.RoleManager)
	w = s.do(t, http.MethodGet, "/api/admin/orders?status=completed", "", 3)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["orders"], 1)
	assert.Equal(t, float64(1), body["pagination"].(map[string]any)["total"])

	// Staff may move an order anywhere, even out of a terminal state.
	s.expectRole(3, models.RoleManager)
	w = s.do(t, http.MethodPut, "/api/admin/orders/"+itoa(id)+"/status", `{"orderStatus":"pending","paymentStatus":"refunded"}`, 3)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	order := decode(t, w)["order"].(map[string]any)
	assert.Equal(t, "pending", order["orderStatus"])
	assert.Equal(t, "refunded", order["paymentStatus"])

	s.expectRole(3, models.RoleManager)
	w = s.do(t, http.MethodPut, "/api/admin/orders/"+itoa(id)+"/status", `{}`, 3)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestManagerCannotDeleteProducts(t *testing.T) {
	s := newServer(t)
	s.expectRole(3, models.RoleManager)

	w := s.do(t, http.MethodDelete, "/api/admin/products/1", "", 3)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateProductValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero price", `{"name":"Ring","category":"sets","price":"0"}`},
		{"discount above price", `{"name":"Ring","category":"sets","price":"100","discountPrice":"150"}`},
		{"unknown category", `{"name":"Ring","category":"watches","price":"100"}`},
		{"missing name", `{"category":"sets","price":"100"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newServer(t)
			s.expectRole(3, models.RoleAdmin)
			w := s.do(t, http.MethodPost, "/api/admin/products", tc.body, 3)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestDashboardStatsAreCached(t *testing.T) {
	s := newServer(t)

	s.expectRole(1, models.RoleAdmin)
	s.mock.ExpectQuery(regexpQuote("(SELECT COUNT(*) FROM users WHERE role = 'customer')")).
		WillReturnRows(sqlmock.NewRows([]string{"a", "b", "c", "d", "e", "f"}).AddRow(5, 20, 8, "4016.00", 2, 1))
	s.expectRole(1, models.RoleAdmin)

	for i := 0; i < 2; i++ {
		w := s.do(t, http.MethodGet, "/api/admin/stats", "", 1)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		stats := decode(t, w)["stats"].(map[string]any)
		assert.Equal(t, float64(8), stats["totalOrders"])
		assert.Equal(t, "4016", stats["totalRevenue"])
	}
	assert.True(t, s.redis.Exists(cache.DashboardStatsKey))
	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestPlaceOrderInvalidatesStats(t *testing.T) {
	s := newServer(t)
	seedGoldHoopCart(s, 7)
	require.NoError(t, s.redis.Set(cache.DashboardStatsKey, `{"totalOrders":0}`))

	w := s.do(t, http.MethodPost, "/api/orders", checkoutBody, 7)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.False(t, s.redis.Exists(cache.DashboardStatsKey))
}
