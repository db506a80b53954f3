package repository

import (
	"context"

	"freshmart/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 公開一覧の絞り込み。空なら承認済み全件。
type ProductFilter struct {
	Keyword  string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// 出品者の部分更新。nilの項目は書かない（在庫を巻き戻さないため）。
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int64
	Category    *string
	Image       *string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// 所有者チェックは検索条件に含める（他人の商品もErrNotFound）
	FindOwned(ctx context.Context, id string, vendorID string) (*model.Product, error)
	UpdateOwned(ctx context.Context, id string, vendorID string, u ProductUpdate) error
	DeleteOwned(ctx context.Context, id string, vendorID string) error

	// 承認フラグを立てる。既に承認済みでも成功。
	Approve(ctx context.Context, id string) error

	ListApproved(ctx context.Context, f ProductFilter) ([]model.Product, error)
	ListPending(ctx context.Context) ([]model.Product, error)
	ListByVendor(ctx context.Context, vendorID string) ([]model.Product, error)
	Count(ctx context.Context) (int64, error)
}

// 在庫の増減だけを約束。
type InventoryRepository interface {
	// stock >= qty のときだけ減らす。足りなければfalse。
	DecreaseStockIfEnough(ctx context.Context, productID string, qty int64) (bool, error)
}
