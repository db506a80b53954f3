package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"freshmart/internal/config"
	"freshmart/internal/handler"
	"freshmart/internal/infra/db"
	"freshmart/internal/infra/mailer"
	"freshmart/internal/infra/payment"
	"freshmart/internal/infra/pdf"
	infraRepo "freshmart/internal/infra/repository"
	"freshmart/internal/infra/security"
	"freshmart/internal/metrics"
	"freshmart/internal/notification"
	"freshmart/internal/server"
	"freshmart/internal/usecase"
	"freshmart/internal/validator"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// sqlite上に本番と同じ組み立てでechoを作る
func newTestServer(t *testing.T) (*echo.Echo, *usecase.AdminUsecase) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := db.Connect(config.DBConfig{Driver: config.DriverSQLite, DSN: dsn})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })

	log := zap.NewNop()
	reg := prometheus.NewRegistry()
	appMetrics := metrics.New(reg)

	dispatcher, err := notification.NewDispatcher(2, mailer.NewLogMailer(log), appMetrics, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dispatcher.Release(time.Second) })
	notifier := notification.NewService(dispatcher)

	users := infraRepo.NewUserGormRepository(gdb)
	products := infraRepo.NewProductGormRepository(gdb)
	carts := infraRepo.NewCartGormRepository(gdb)
	orders := infraRepo.NewOrderGormRepository(gdb)
	audit := infraRepo.NewAuditLogGormRepository(gdb)
	tx := infraRepo.NewTxManagerGorm(gdb)

	idGen := security.UUIDGenerator{}
	clock := security.SystemClock{}
	hasher := security.NewBcryptPasswordHasher(bcrypt.MinCost)
	issuer := security.NewJWTIssuer("test-secret", time.Hour)

	authUC := usecase.NewAuthUsecase(users, validator.NewAuthValidator(), hasher, security.NewBcryptPasswordVerifier(), issuer, idGen, clock, notifier)
	productUC := usecase.NewProductUsecase(products, tx, idGen, clock)
	orderUC := usecase.NewOrderUsecase(usecase.OrderDeps{
		Tx:        tx,
		Orders:    orders,
		Products:  products,
		Users:     users,
		Addresses: validator.NewAddressValidator(),
		Notifier:  notifier,
		Invoices:  pdf.NewInvoiceRenderer(),
		Metrics:   appMetrics,
		IDGen:     idGen,
		Clock:     clock,
	})
	statsUC := usecase.NewStatsUsecase(users, orders, products)
	adminUC := usecase.NewAdminUsecase(users, products, audit, tx, hasher, idGen, clock)

	productH := handler.NewProductHandler(productUC)
	e := server.New(server.Options{
		Handlers: server.Handlers{
			Auth:         handler.NewAuthHandler(authUC),
			Product:      productH,
			AdminProduct: handler.NewAdminProductHandler(productUC),
			Vendor:       handler.NewVendorHandler(productH, orderUC, statsUC),
			Cart:         handler.NewCartHandler(usecase.NewCartUsecase(carts, products, idGen, clock)),
			Order:        handler.NewOrderHandler(orderUC),
			Payment:      handler.NewPaymentHandler(usecase.NewPaymentUsecase(payment.NewMock(clock), orderUC, clock)),
			Admin:        handler.NewAdminHandler(adminUC, statsUC),
		},
		Guard:    handler.NewGuard(issuer, users),
		Gatherer: reg,
		Observer: appMetrics,
		Logger:   log,
	})
	return e, adminUC
}

type response struct {
	code   int
	header http.Header
	body   []byte
}

func (r response) json(t *testing.T) map[string]any {
	t.Helper()
	var v map[string]any
	require.NoError(t, json.Unmarshal(r.body, &v), string(r.body))
	return v
}

func (r response) list(t *testing.T) []any {
	t.Helper()
	var v []any
	require.NoError(t, json.Unmarshal(r.body, &v), string(r.body))
	return v
}

func do(t *testing.T, e *echo.Echo, method, path, bearer string, body any) response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return response{code: rec.Code, header: rec.Header(), body: rec.Body.Bytes()}
}

func requireStatus(t *testing.T, r response, want int) {
	t.Helper()
	require.Equal(t, want, r.code, "body=%s", string(r.body))
}

func login(t *testing.T, e *echo.Echo, email, password string) string {
	t.Helper()
	r := do(t, e, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	requireStatus(t, r, http.StatusOK)
	tok, _ := r.json(t)["token"].(string)
	require.NotEmpty(t, tok)
	return tok
}

var address = map[string]string{
	"fullName": "Asha Rao",
	"phone":    "9876543210",
	"address":  "12 MG Road",
	"city":     "Bengaluru",
	"state":    "KA",
	"pincode":  "560001",
}

// Test: 出品→承認→カート→代引き注文→管理者のステータス更新
func TestMarketplaceFlow(t *testing.T) {
	e, adminUC := newTestServer(t)

	_, err := adminUC.EnsureAdmin(context.Background(), usecase.EnsureAdminInput{Email: "admin@freshmart.com", Password: "Admin123!"})
	require.NoError(t, err)

	r := do(t, e, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Veggie Vendor", "email": "vendor@example.com", "password": "secret1", "role": "vendor",
	})
	requireStatus(t, r, http.StatusCreated)
	assert.Equal(t, "User registered successfully", r.json(t)["message"])

	r = do(t, e, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Shopper", "email": "user@example.com", "password": "secret1",
	})
	requireStatus(t, r, http.StatusCreated)

	r = do(t, e, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Sneaky", "email": "sneaky@example.com", "password": "secret1", "role": "admin",
	})
	requireStatus(t, r, http.StatusForbidden)

	adminTok := login(t, e, "admin@freshmart.com", "Admin123!")
	vendorTok := login(t, e, "vendor@example.com", "secret1")
	userTok := login(t, e, "user@example.com", "secret1")

	// 出品
	r = do(t, e, http.MethodPost, "/products", userTok, map[string]any{"name": "X", "price": 1, "category": "Y"})
	requireStatus(t, r, http.StatusForbidden)

	r = do(t, e, http.MethodPost, "/vendor/products", vendorTok, map[string]any{
		"name": "Alphonso Mango", "price": 100, "stock": 5, "category": "Fruits",
	})
	requireStatus(t, r, http.StatusCreated)
	product := r.json(t)["product"].(map[string]any)
	productID := product["_id"].(string)
	assert.Equal(t, false, product["isApproved"])
	assert.Equal(t, float64(100), product["price"])

	r = do(t, e, http.MethodGet, "/products", "", nil)
	requireStatus(t, r, http.StatusOK)
	assert.Empty(t, r.list(t))

	r = do(t, e, http.MethodGet, "/products/pending", vendorTok, nil)
	requireStatus(t, r, http.StatusForbidden)

	r = do(t, e, http.MethodPut, "/products/approve/"+productID, adminTok, nil)
	requireStatus(t, r, http.StatusOK)

	r = do(t, e, http.MethodGet, "/products?keyword=mango&maxPrice=150", "", nil)
	requireStatus(t, r, http.StatusOK)
	assert.Len(t, r.list(t), 1)

	// カート
	r = do(t, e, http.MethodPost, "/cart", "", map[string]any{"productId": productID, "quantity": 1})
	requireStatus(t, r, http.StatusUnauthorized)
	assert.Equal(t, "Not authorized, no token", r.json(t)["message"])

	r = do(t, e, http.MethodPost, "/cart", userTok, map[string]any{"productId": productID, "quantity": 0})
	requireStatus(t, r, http.StatusBadRequest)

	r = do(t, e, http.MethodPost, "/cart", userTok, map[string]any{"productId": productID, "quantity": 3})
	requireStatus(t, r, http.StatusOK)
	items := r.json(t)["items"].([]any)
	require.Len(t, items, 1)

	// 注文
	r = do(t, e, http.MethodPost, "/orders", userTok, map[string]any{"deliveryAddress": address, "paymentMethod": "Online"})
	requireStatus(t, r, http.StatusBadRequest)

	r = do(t, e, http.MethodPost, "/orders", userTok, map[string]any{"deliveryAddress": address, "paymentMethod": "COD"})
	requireStatus(t, r, http.StatusCreated)
	order := r.json(t)["order"].(map[string]any)
	orderID := order["_id"].(string)
	assert.Equal(t, float64(300), order["totalAmount"])
	assert.Equal(t, "Placed", order["status"])

	r = do(t, e, http.MethodGet, "/orders/my-orders", userTok, nil)
	requireStatus(t, r, http.StatusOK)
	assert.Len(t, r.list(t), 1)

	r = do(t, e, http.MethodGet, "/vendor/orders", vendorTok, nil)
	requireStatus(t, r, http.StatusOK)
	assert.Len(t, r.list(t), 1)

	r = do(t, e, http.MethodGet, "/orders/"+orderID, vendorTok, nil)
	requireStatus(t, r, http.StatusForbidden)

	r = do(t, e, http.MethodGet, "/orders/all", userTok, nil)
	requireStatus(t, r, http.StatusForbidden)

	r = do(t, e, http.MethodGet, "/orders/all", adminTok, nil)
	requireStatus(t, r, http.StatusOK)
	assert.Len(t, r.list(t), 1)

	// 管理者のステータス更新
	r = do(t, e, http.MethodPut, "/orders/"+orderID+"/status", adminTok, map[string]string{"status": "Delivered"})
	requireStatus(t, r, http.StatusBadRequest)
	assert.Equal(t, "Cannot change status from Placed to Delivered", r.json(t)["message"])

	r = do(t, e, http.MethodPut, "/orders/"+orderID+"/status", adminTok, map[string]string{"status": "Processing"})
	requireStatus(t, r, http.StatusOK)

	r = do(t, e, http.MethodPut, "/orders/"+orderID+"/cancel", userTok, nil)
	requireStatus(t, r, http.StatusBadRequest)
	assert.Equal(t, "Cannot cancel order at this stage", r.json(t)["message"])

	// 請求書
	r = do(t, e, http.MethodGet, "/orders/"+orderID+"/invoice", userTok, nil)
	requireStatus(t, r, http.StatusOK)
	assert.Equal(t, "application/pdf", r.header.Get(echo.HeaderContentType))
	assert.Contains(t, r.header.Get(echo.HeaderContentDisposition), "invoice-"+orderID+".pdf")
	assert.True(t, bytes.HasPrefix(r.body, []byte("%PDF-")))

	// 集計
	r = do(t, e, http.MethodGet, "/admin/stats", adminTok, nil)
	requireStatus(t, r, http.StatusOK)
	stats := r.json(t)
	assert.Equal(t, float64(3), stats["totalUsers"])
	assert.Equal(t, float64(1), stats["totalOrders"])
	assert.Equal(t, float64(300), stats["totalRevenue"])

	r = do(t, e, http.MethodGet, "/vendor/stats", vendorTok, nil)
	requireStatus(t, r, http.StatusOK)
	assert.Equal(t, float64(300), r.json(t)["totalRevenue"])

	r = do(t, e, http.MethodGet, "/admin/audit-logs?action=UPDATE_ORDER_STATUS", adminTok, nil)
	requireStatus(t, r, http.StatusOK)
	assert.Len(t, r.list(t), 1)

	r = do(t, e, http.MethodGet, "/metrics", "", nil)
	requireStatus(t, r, http.StatusOK)
	assert.True(t, strings.Contains(string(r.body), `freshmart_orders_created_total{method="COD"} 1`))
}

// Test: 削除されたユーザーのトークンは使えない
func TestDeletedUserToken(t *testing.T) {
	e, adminUC := newTestServer(t)
	admin, err := adminUC.EnsureAdmin(context.Background(), usecase.EnsureAdminInput{Email: "admin@freshmart.com", Password: "Admin123!"})
	require.NoError(t, err)
	adminTok := login(t, e, "admin@freshmart.com", "Admin123!")

	r := do(t, e, http.MethodPost, "/auth/register", "", map[string]string{"name": "Gone", "email": "gone@example.com", "password": "secret1"})
	requireStatus(t, r, http.StatusCreated)
	goneID := r.json(t)["userId"].(string)
	goneTok := login(t, e, "gone@example.com", "secret1")

	r = do(t, e, http.MethodGet, "/user/profile", goneTok, nil)
	requireStatus(t, r, http.StatusOK)
	assert.Equal(t, goneID, r.json(t)["id"])

	r = do(t, e, http.MethodDelete, "/admin/users/"+admin.ID, adminTok, nil)
	requireStatus(t, r, http.StatusBadRequest)

	r = do(t, e, http.MethodDelete, "/admin/users/"+goneID, adminTok, nil)
	requireStatus(t, r, http.StatusOK)
	assert.Equal(t, "User removed", r.json(t)["message"])

	r = do(t, e, http.MethodGet, "/user/profile", goneTok, nil)
	requireStatus(t, r, http.StatusUnauthorized)
	assert.Equal(t, "Not authorized, user not found", r.json(t)["message"])
}

// Test: モック決済でオンライン注文
func TestMockPaymentFlow(t *testing.T) {
	e, adminUC := newTestServer(t)
	_, err := adminUC.Seed(context.Background())
	require.NoError(t, err)
	userTok := login(t, e, "user@freshmart.com", "User123!")

	r := do(t, e, http.MethodGet, "/products?category=Bakery", "", nil)
	requireStatus(t, r, http.StatusOK)
	list := r.list(t)
	require.Len(t, list, 1)
	breadID := list[0].(map[string]any)["_id"].(string)

	r = do(t, e, http.MethodPost, "/cart", userTok, map[string]any{"productId": breadID, "quantity": 2})
	requireStatus(t, r, http.StatusOK)

	r = do(t, e, http.MethodPost, "/payment/create-order", userTok, map[string]any{"amount": 110})
	requireStatus(t, r, http.StatusOK)
	intent := r.json(t)
	assert.Equal(t, float64(11000), intent["amount"])
	assert.Equal(t, true, intent["isMock"])
	mockOrderID := intent["orderId"].(string)

	r = do(t, e, http.MethodPost, "/payment/verify", userTok, map[string]any{
		"razorpay_order_id": mockOrderID,
		"deliveryAddress":   address,
	})
	requireStatus(t, r, http.StatusCreated)
	body := r.json(t)
	assert.Equal(t, "Payment verified and order placed successfully", body["message"])
	order := body["order"].(map[string]any)
	assert.Equal(t, "Online", order["paymentMethod"])
	assert.Equal(t, float64(110), order["totalAmount"])

	r = do(t, e, http.MethodPost, "/payment/verify", userTok, map[string]any{"deliveryAddress": address})
	requireStatus(t, r, http.StatusBadRequest)
}

func TestHealthAndNotFound(t *testing.T) {
	e, _ := newTestServer(t)

	r := do(t, e, http.MethodGet, "/healthz", "", nil)
	requireStatus(t, r, http.StatusOK)

	r = do(t, e, http.MethodGet, "/nope", "", nil)
	requireStatus(t, r, http.StatusNotFound)
	assert.Equal(t, "Not Found", r.json(t)["message"])
}
