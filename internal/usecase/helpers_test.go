package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"freshmart/internal/config"
	"freshmart/internal/domain/model"
	"freshmart/internal/infra/db"
	"freshmart/internal/infra/payment"
	"freshmart/internal/infra/pdf"
	infraRepo "freshmart/internal/infra/repository"
	"freshmart/internal/infra/security"
	repo "freshmart/internal/repository"
	"freshmart/internal/usecase"
	"freshmart/internal/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// =====================
// Fake: Notifier
// =====================

type sentMail struct {
	kind  string
	to    string
	order string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMail
}

func (n *recordingNotifier) record(kind string, u model.User, orderID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{kind: kind, to: u.Email, order: orderID})
}

func (n *recordingNotifier) Welcome(u model.User) { n.record("welcome", u, "") }
func (n *recordingNotifier) OrderPlaced(u model.User, o model.Order) {
	n.record("placed", u, o.ID)
}
func (n *recordingNotifier) OrderCancelled(u model.User, o model.Order) {
	n.record("cancelled", u, o.ID)
}
func (n *recordingNotifier) OrderStatusChanged(u model.User, o model.Order) {
	n.record("status", u, o.ID)
}

func (n *recordingNotifier) kinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.sent))
	for _, m := range n.sent {
		out = append(out, m.kind)
	}
	return out
}

// =====================
// Fake: Clock
// =====================

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// =====================
// sqliteに繋いだusecase一式
// =====================

type testEnv struct {
	ctx      context.Context
	users    repo.UserRepository
	products repo.ProductRepository
	carts    repo.CartRepository
	orders   repo.OrderRepository
	audit    repo.AuditLogRepository
	tx       repo.TransactionManager
	notifier *recordingNotifier

	auth     *usecase.AuthUsecase
	product  *usecase.ProductUsecase
	cart     *usecase.CartUsecase
	order    *usecase.OrderUsecase
	payment  *usecase.PaymentUsecase
	stats    *usecase.StatsUsecase
	admin    *usecase.AdminUsecase
	hasher   usecase.PasswordHasher
	verifier usecase.PasswordVerifier
}

type envOption func(*usecase.OrderDeps, *usecase.PaymentGateway)

func withGateway(g usecase.PaymentGateway) envOption {
	return func(_ *usecase.OrderDeps, gw *usecase.PaymentGateway) { *gw = g }
}

func withOnlineStockDecrement() envOption {
	return func(d *usecase.OrderDeps, _ *usecase.PaymentGateway) { d.OnlineDecrementsStock = true }
}

// 注文usecaseのTx内リポジトリを差し替える
func withTxRepos(wrap func(repo.TxRepos) repo.TxRepos) envOption {
	return func(d *usecase.OrderDeps, _ *usecase.PaymentGateway) {
		d.Tx = wrappedTx{inner: d.Tx, wrap: wrap}
	}
}

// 注文usecaseのOrderRepositoryを差し替える
func withOrders(wrap func(repo.OrderRepository) repo.OrderRepository) envOption {
	return func(d *usecase.OrderDeps, _ *usecase.PaymentGateway) { d.Orders = wrap(d.Orders) }
}

// =====================
// Fake: Tx内リポジトリの差し替え
// =====================

type wrappedTx struct {
	inner repo.TransactionManager
	wrap  func(repo.TxRepos) repo.TxRepos
}

func (w wrappedTx) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return w.inner.WithinTx(ctx, func(r repo.TxRepos) error { return fn(w.wrap(r)) })
}

// 監査ログの保存だけ失敗する
type brokenAuditRepos struct{ repo.TxRepos }

func (brokenAuditRepos) AuditLogs() repo.AuditLogRepository { return brokenAudit{} }

type brokenAudit struct{ repo.AuditLogRepository }

func (brokenAudit) Create(context.Context, model.AuditLog) error {
	return errors.New("audit insert failed")
}

// 在庫確認のあと、減算の直前に別の注文が在庫を取った状態を作る
type soldOutBeforeDecrement struct {
	repo.TxRepos
	left int64
}

func (r soldOutBeforeDecrement) Inventory() repo.InventoryRepository {
	return racingInventory{repos: r.TxRepos, left: r.left}
}

type racingInventory struct {
	repos repo.TxRepos
	left  int64
}

func (i racingInventory) DecreaseStockIfEnough(ctx context.Context, productID string, qty int64) (bool, error) {
	p, err := i.repos.Products().FindByID(ctx, productID)
	if err != nil {
		return false, err
	}
	left := i.left
	if err := i.repos.Products().UpdateOwned(ctx, productID, p.VendorID, repo.ProductUpdate{Stock: &left}); err != nil {
		return false, err
	}
	return i.repos.Inventory().DecreaseStockIfEnough(ctx, productID, qty)
}

// FindByIDの直後に一度だけ割り込む
type interleavedOrders struct {
	repo.OrderRepository
	after func()
}

func (o *interleavedOrders) FindByID(ctx context.Context, id string) (*model.Order, error) {
	got, err := o.OrderRepository.FindByID(ctx, id)
	if f := o.after; f != nil {
		o.after = nil
		f()
	}
	return got, err
}

// FindOwnedの直後に一度だけ割り込む
type interleavedProducts struct {
	repo.ProductRepository
	after func()
}

func (p *interleavedProducts) FindOwned(ctx context.Context, id string, vendorID string) (*model.Product, error) {
	got, err := p.ProductRepository.FindOwned(ctx, id, vendorID)
	if f := p.after; f != nil {
		p.after = nil
		f()
	}
	return got, err
}

func newEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := db.Connect(config.DBConfig{Driver: config.DriverSQLite, DSN: dsn})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })

	clock := fixedClock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	idGen := security.UUIDGenerator{}
	hasher := security.NewBcryptPasswordHasher(bcrypt.MinCost)
	verifier := security.NewBcryptPasswordVerifier()
	notifier := &recordingNotifier{}

	e := &testEnv{
		ctx:      context.Background(),
		users:    infraRepo.NewUserGormRepository(gdb),
		products: infraRepo.NewProductGormRepository(gdb),
		carts:    infraRepo.NewCartGormRepository(gdb),
		orders:   infraRepo.NewOrderGormRepository(gdb),
		audit:    infraRepo.NewAuditLogGormRepository(gdb),
		notifier: notifier,
		hasher:   hasher,
		verifier: verifier,
	}

	e.tx = infraRepo.NewTxManagerGorm(gdb)
	deps := usecase.OrderDeps{
		Tx:        e.tx,
		Orders:    e.orders,
		Products:  e.products,
		Users:     e.users,
		Addresses: validator.NewAddressValidator(),
		Notifier:  notifier,
		Invoices:  pdf.NewInvoiceRenderer(),
		IDGen:     idGen,
		Clock:     clock,
	}
	var gateway usecase.PaymentGateway = payment.NewMock(clock)
	for _, opt := range opts {
		opt(&deps, &gateway)
	}

	e.auth = usecase.NewAuthUsecase(e.users, validator.NewAuthValidator(), hasher, verifier,
		security.NewJWTIssuer("test-secret", time.Hour), idGen, clock, notifier)
	e.product = usecase.NewProductUsecase(e.products, e.tx, idGen, clock)
	e.cart = usecase.NewCartUsecase(e.carts, e.products, idGen, clock)
	e.order = usecase.NewOrderUsecase(deps)
	e.payment = usecase.NewPaymentUsecase(gateway, e.order, clock)
	e.stats = usecase.NewStatsUsecase(e.users, e.orders, e.products)
	e.admin = usecase.NewAdminUsecase(e.users, e.products, e.audit, e.tx, hasher, idGen, clock)
	return e
}

func (e *testEnv) createUser(t *testing.T, name string, role model.Role) model.User {
	t.Helper()
	u := model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, e.users.Create(e.ctx, &u))
	return u
}

// 承認済み商品を1つ作る
func (e *testEnv) approvedProduct(t *testing.T, vendor model.User, name, price string, stock int64) model.Product {
	t.Helper()
	out, err := e.product.Create(e.ctx, vendor.ID, usecase.ProductInput{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		Category: "Fruits",
	})
	require.NoError(t, err)
	_, err = e.product.Approve(e.ctx, "admin", out.Product.ID)
	require.NoError(t, err)
	return out.Product
}

func (e *testEnv) addToCart(t *testing.T, user model.User, p model.Product, qty int64) {
	t.Helper()
	_, err := e.cart.AddItem(e.ctx, user.ID, usecase.AddCartInput{ProductID: p.ID, Quantity: qty})
	require.NoError(t, err)
}

func (e *testEnv) stockOf(t *testing.T, id string) int64 {
	t.Helper()
	p, err := e.products.FindByID(e.ctx, id)
	require.NoError(t, err)
	return p.Stock
}

func validAddress() model.DeliveryAddress {
	return model.DeliveryAddress{
		FullName: "Asha Rao",
		Phone:    "9876543210",
		Address:  "12 MG Road",
		City:     "Bengaluru",
		State:    "KA",
		Pincode:  "560001",
	}
}

func requireCode(t *testing.T, err error, code usecase.ErrorCode, msg string) {
	t.Helper()
	require.Error(t, err)
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok, "not an HTTPError: %v", err)
	require.Equal(t, code, he.Code)
	if msg != "" {
		require.Equal(t, msg, he.Message)
	}
}
