package repository

import (
	"context"
	"time"

	"freshmart/internal/domain/model"
	repo "freshmart/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// ユーザーのカートを明細込みで取得
func (r *CartGormRepository) FindByUserID(ctx context.Context, userID string) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc")
		}).
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, translate(err)
	}
	return &cart, nil
}

// カートを保存。明細は丸ごと入れ替える。
func (r *CartGormRepository) Save(ctx context.Context, cart *model.Cart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cart.ID == "" {
			cart.ID = uuid.NewString()
		}

		var n int64
		if err := tx.Model(&model.Cart{}).Where("id = ?", cart.ID).Count(&n).Error; err != nil {
			return translate(err)
		}
		if n == 0 {
			//初回は作る（user_idの一意制約で二重作成を防ぐ）
			if err := tx.Omit(clause.Associations).Create(cart).Error; err != nil {
				return translate(err)
			}
		} else {
			cart.UpdatedAt = time.Now()
			if err := tx.Model(&model.Cart{}).Where("id = ?", cart.ID).Update("updated_at", cart.UpdatedAt).Error; err != nil {
				return translate(err)
			}
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&model.CartItem{}).Error; err != nil {
			return translate(err)
		}
		if len(cart.Items) == 0 {
			return nil
		}

		for i := range cart.Items {
			cart.Items[i].ID = uuid.NewString()
			cart.Items[i].CartID = cart.ID
			cart.Items[i].Position = i
		}
		return translate(tx.Create(&cart.Items).Error)
	})
}

// 明細を空にする（カートは残す）
func (r *CartGormRepository) Clear(ctx context.Context, userID string) error {
	var cart model.Cart
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error
	if err != nil {
		err = translate(err)
		if err == repo.ErrNotFound {
			return nil
		}
		return err
	}
	return translate(r.db.WithContext(ctx).Where("cart_id = ?", cart.ID).Delete(&model.CartItem{}).Error)
}
