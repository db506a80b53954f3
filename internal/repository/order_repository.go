package repository

import (
	"context"

	"freshmart/internal/domain/model"

	"github.com/shopspring/decimal"
)

// ステータス更新。nilの項目は変えない。
// Fromがあれば現在のstatusが一致するときだけ書く（違えばErrStaleState）。
type OrderStatusUpdate struct {
	From          *model.OrderStatus
	Status        *model.OrderStatus
	PaymentStatus *model.PaymentStatus
}

// 一覧はすべて新しい順
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	ListByUserID(ctx context.Context, userID string) ([]model.Order, error)
	ListAll(ctx context.Context) ([]model.Order, error)
	// いずれかの明細が指定商品を含む注文
	ListByProductIDs(ctx context.Context, productIDs []string) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id string, u OrderStatusUpdate) error
	Count(ctx context.Context) (int64, error)
	SumTotalByPaymentStatus(ctx context.Context, status model.PaymentStatus) (decimal.Decimal, error)
}
