package usecase_test

import (
	"testing"

	"freshmart/internal/domain/model"
	"freshmart/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test: カートの同一商品追加
func TestCartAddSameProductMerges(t *testing.T) {
	e := newEnv(t)
	vendor := e.createUser(t, "vendor", model.RoleVendor)
	user := e.createUser(t, "user", model.RoleUser)
	apple := e.approvedProduct(t, vendor, "Apple", "100", 10)
	milk := e.approvedProduct(t, vendor, "Milk", "30", 10)

	empty, err := e.cart.Get(e.ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)

	e.addToCart(t, user, apple, 1)
	e.addToCart(t, user, milk, 1)
	view, err := e.cart.AddItem(e.ctx, user.ID, usecase.AddCartInput{ProductID: apple.ID, Quantity: 2})
	require.NoError(t, err)

	require.Len(t, view.Items, 2)
	assert.Equal(t, apple.ID, view.Items[0].Product.ID)
	assert.Equal(t, int64(3), view.Items[0].Quantity)
	assert.Equal(t, "Apple", view.Items[0].Product.Name)
}

func TestCartAddValidation(t *testing.T) {
	e := newEnv(t)
	user := e.createUser(t, "user", model.RoleUser)

	_, err := e.cart.AddItem(e.ctx, user.ID, usecase.AddCartInput{ProductID: "x", Quantity: 0})
	requireCode(t, err, usecase.CodeValidation, "")

	_, err = e.cart.AddItem(e.ctx, user.ID, usecase.AddCartInput{ProductID: "missing", Quantity: 1})
	requireCode(t, err, usecase.CodeNotFound, "Product not found")
}

// Test: 削除は数量に関係なく行ごと
func TestCartRemove(t *testing.T) {
	e := newEnv(t)
	vendor := e.createUser(t, "vendor", model.RoleVendor)
	user := e.createUser(t, "user", model.RoleUser)
	apple := e.approvedProduct(t, vendor, "Apple", "100", 10)

	_, err := e.cart.RemoveItem(e.ctx, user.ID, apple.ID)
	requireCode(t, err, usecase.CodeNotFound, "Cart not found")

	e.addToCart(t, user, apple, 4)
	view, err := e.cart.RemoveItem(e.ctx, user.ID, apple.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

// Test: 削除された商品の行は表示しない
func TestCartHidesDeletedProducts(t *testing.T) {
	e := newEnv(t)
	vendor := e.createUser(t, "vendor", model.RoleVendor)
	user := e.createUser(t, "user", model.RoleUser)
	apple := e.approvedProduct(t, vendor, "Apple", "100", 10)
	e.addToCart(t, user, apple, 1)

	require.NoError(t, e.product.Delete(e.ctx, vendor.ID, apple.ID))
	view, err := e.cart.Get(e.ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}
