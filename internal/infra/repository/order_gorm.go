package repository

import (
	"context"

	"freshmart/internal/domain/model"
	repo "freshmart/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	})
}

// 注文と明細をまとめて作成
func (r *OrderGormRepository) Create(ctx context.Context, order *model.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	for i := range order.Items {
		order.Items[i].ID = uuid.NewString()
		order.Items[i].OrderID = order.ID
		order.Items[i].Position = i
	}
	return translate(r.db.WithContext(ctx).Create(order).Error)
}

func (r *OrderGormRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	if err := preloadItems(r.db.WithContext(ctx)).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID string) ([]model.Order, error) {
	return r.list(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	})
}

func (r *OrderGormRepository) ListAll(ctx context.Context) ([]model.Order, error) {
	return r.list(ctx, func(db *gorm.DB) *gorm.DB { return db })
}

// 出品者の商品を含む注文
func (r *OrderGormRepository) ListByProductIDs(ctx context.Context, productIDs []string) ([]model.Order, error) {
	if len(productIDs) == 0 {
		return []model.Order{}, nil
	}
	sub := r.db.Model(&model.OrderItem{}).Select("order_id").Where("product_id IN ?", productIDs)
	return r.list(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("id IN (?)", sub)
	})
}

func (r *OrderGormRepository) list(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]model.Order, error) {
	orders := []model.Order{}
	err := preloadItems(r.db.WithContext(ctx)).
		Scopes(scope).
		Order("created_at desc").
		Order("id desc").
		Find(&orders).Error
	if err != nil {
		return nil, translate(err)
	}
	return orders, nil
}

// 指定された項目だけ更新
func (r *OrderGormRepository) UpdateStatus(ctx context.Context, id string, u repo.OrderStatusUpdate) error {
	updates := map[string]interface{}{}
	if u.Status != nil {
		updates["status"] = *u.Status
	}
	if u.PaymentStatus != nil {
		updates["payment_status"] = *u.PaymentStatus
	}
	if len(updates) == 0 {
		return nil
	}

	q := r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id)
	if u.From != nil {
		q = q.Where("status = ?", *u.From)
	}
	res := q.Updates(updates)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	if u.From == nil {
		return repo.ErrNotFound
	}

	// 0件なら、無いのか状態が変わったのかを見分ける
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return translate(err)
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	return repo.ErrStaleState
}

func (r *OrderGormRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).Count(&n).Error; err != nil {
		return 0, translate(err)
	}
	return n, nil
}

// 売上合計
func (r *OrderGormRepository) SumTotalByPaymentStatus(ctx context.Context, status model.PaymentStatus) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("SUM(total_amount)").
		Where("payment_status = ?", status).
		Row().
		Scan(&total)
	if err != nil {
		return decimal.Zero, translate(err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
