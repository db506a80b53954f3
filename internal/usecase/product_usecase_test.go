package usecase_test

import (
	"testing"

	"freshmart/internal/domain/model"
	"freshmart/internal/infra/security"
	repo "freshmart/internal/repository"
	"freshmart/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test: 出品は承認待ち。承認されるまで公開一覧に出ない。
func TestProductApprovalFlow(t *testing.T) {
	e := newEnv(t)
	vendor := e.createUser(t, "vendor", model.RoleVendor)

	out, err := e.product.Create(e.ctx, vendor.ID, usecase.ProductInput{
		Name:     " Alphonso Mango ",
		Price:    decimal.NewFromInt(300),
		Stock:    10,
		Category: "Fruits",
	})
	require.NoError(t, err)
	assert.Equal(t, "Product added, waiting for admin approval", out.Message)
	assert.False(t, out.Product.IsApproved)
	assert.Equal(t, "Alphonso Mango", out.Product.Name)
	assert.Equal(t, vendor.ID, out.Product.VendorID)

	listed, err := e.product.ListApproved(e.ctx, usecase.ListProductsInput{})
	require.NoError(t, err)
	assert.Empty(t, listed)

	pending, err := e.product.ListPending(e.ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	approved, err := e.product.Approve(e.ctx, "admin-1", out.Product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Product approved", approved.Message)
	assert.True(t, approved.Product.IsApproved)

	listed, err = e.product.ListApproved(e.ctx, usecase.ListProductsInput{Keyword: "mango"})
	require.NoError(t, err)
	require.Len(t, listed, 1)

	logs, err := e.admin.AuditLogs(e.ctx, auditFilterFor(model.AuditActionApproveProduct))
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "admin-1", logs[0].ActorUserID)
	assert.Equal(t, out.Product.ID, logs[0].ResourceID)

	// 二回目の承認も成功するがログは増えない
	_, err = e.product.Approve(e.ctx, "admin-1", out.Product.ID)
	require.NoError(t, err)
	logs, err = e.admin.AuditLogs(e.ctx, auditFilterFor(model.AuditActionApproveProduct))
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	_, err = e.product.Approve(e.ctx, "admin-1", "missing")
	requireCode(t, err, usecase.CodeNotFound, "Product not found")
}

func TestProductCreateValidation(t *testing.T) {
	e := newEnv(t)
	_, err := e.product.Create(e.ctx, "v1", usecase.ProductInput{Price: decimal.NewFromInt(1), Category: "X"})
	requireCode(t, err, usecase.CodeValidation, "name is required")

	_, err = e.product.Create(e.ctx, "v1", usecase.ProductInput{Name: "A", Price: decimal.NewFromInt(-1), Category: "X"})
	requireCode(t, err, usecase.CodeValidation, "price must be >= 0")

	neg := decimal.NewFromInt(-5)
	_, err = e.product.ListApproved(e.ctx, usecase.ListProductsInput{MinPrice: &neg})
	requireCode(t, err, usecase.CodeValidation, "")
}

// Test: 他人の商品は「無い」扱い。承認フラグは変えられない。
func TestProductUpdateAndDeleteOwnership(t *testing.T) {
	e := newEnv(t)
	owner := e.createUser(t, "owner", model.RoleVendor)
	other := e.createUser(t, "other", model.RoleVendor)
	p := e.approvedProduct(t, owner, "Onion", "35", 20)

	price := decimal.RequireFromString("38.50")
	_, err := e.product.Update(e.ctx, other.ID, p.ID, usecase.ProductPatch{Price: &price})
	requireCode(t, err, usecase.CodeNotFound, "Product not found or unauthorized")

	updated, err := e.product.Update(e.ctx, owner.ID, p.ID, usecase.ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(price))
	assert.True(t, updated.IsApproved)
	assert.Equal(t, "Onion", updated.Name)

	err = e.product.Delete(e.ctx, other.ID, p.ID)
	requireCode(t, err, usecase.CodeNotFound, "Product not found or unauthorized")

	require.NoError(t, e.product.Delete(e.ctx, owner.ID, p.ID))
	mine, err := e.product.ListByVendor(e.ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

// Test: 価格だけの変更は、読んだあとに確定した注文の在庫減算を巻き戻さない
func TestProductPriceUpdateKeepsConcurrentStockDecrement(t *testing.T) {
	e := newEnv(t)
	vendor := e.createUser(t, "vendor", model.RoleVendor)
	buyer := e.createUser(t, "buyer", model.RoleUser)
	tomato := e.approvedProduct(t, vendor, "Tomato", "40", 5)
	e.addToCart(t, buyer, tomato, 3)

	products := &interleavedProducts{ProductRepository: e.products}
	products.after = func() {
		_, err := e.order.PlaceCOD(e.ctx, buyer.ID, usecase.PlaceOrderInput{DeliveryAddress: validAddress()})
		require.NoError(t, err)
	}
	uc := usecase.NewProductUsecase(products, e.tx, security.UUIDGenerator{}, fixedClock{})

	price := decimal.NewFromInt(45)
	updated, err := uc.Update(e.ctx, vendor.ID, tomato.ID, usecase.ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(price))
	assert.Equal(t, int64(2), updated.Stock)
	assert.Equal(t, int64(2), e.stockOf(t, tomato.ID))

	// 在庫を明示したときだけ書く
	stock := int64(9)
	updated, err = e.product.Update(e.ctx, vendor.ID, tomato.ID, usecase.ProductPatch{Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, int64(9), updated.Stock)
	assert.True(t, updated.Price.Equal(price))
}

// Test: 監査ログが書けなければ承認も残さない
func TestProductApproveRollsBackWhenAuditFails(t *testing.T) {
	e := newEnv(t)
	vendor := e.createUser(t, "vendor", model.RoleVendor)
	out, err := e.product.Create(e.ctx, vendor.ID, usecase.ProductInput{
		Name:     "Curd",
		Price:    decimal.NewFromInt(60),
		Stock:    4,
		Category: "Dairy",
	})
	require.NoError(t, err)

	broken := wrappedTx{inner: e.tx, wrap: func(r repo.TxRepos) repo.TxRepos { return brokenAuditRepos{TxRepos: r} }}
	uc := usecase.NewProductUsecase(e.products, broken, security.UUIDGenerator{}, fixedClock{})

	_, err = uc.Approve(e.ctx, "admin-1", out.Product.ID)
	requireCode(t, err, usecase.CodeInternal, "Server error")

	stored, err := e.products.FindByID(e.ctx, out.Product.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsApproved)
}
