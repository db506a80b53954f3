package repository

import (
	"context"
	"strings"

	"freshmart/internal/domain/model"
	repo "freshmart/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 承認済み商品だけを、キーワード/カテゴリ/価格帯で絞って返す。
func (r *ProductGormRepository) ListApproved(ctx context.Context, f repo.ProductFilter) ([]model.Product, error) {
	tx := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("is_approved = ?", true)

	// 名前の部分一致（大文字小文字を区別しない）
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		if r.db.Dialector.Name() == "postgres" {
			tx = tx.Where(`name ILIKE ? ESCAPE '\'`, likePattern(kw))
		} else {
			tx = tx.Where(`LOWER(name) LIKE LOWER(?) ESCAPE '\'`, likePattern(kw))
		}
	}
	if f.Category != "" {
		tx = tx.Where("category = ?", f.Category)
	}

	//価格帯
	if f.MinPrice != nil {
		tx = tx.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		tx = tx.Where("price <= ?", *f.MaxPrice)
	}

	products := []model.Product{}
	if err := tx.Order("created_at desc").Order("id desc").Find(&products).Error; err != nil {
		return nil, translate(err)
	}
	return products, nil
}

// 承認待ち
func (r *ProductGormRepository) ListPending(ctx context.Context) ([]model.Product, error) {
	products := []model.Product{}
	err := r.db.WithContext(ctx).
		Where("is_approved = ?", false).
		Order("created_at desc").
		Find(&products).Error
	if err != nil {
		return nil, translate(err)
	}
	return products, nil
}

func (r *ProductGormRepository) ListByVendor(ctx context.Context, vendorID string) ([]model.Product, error) {
	products := []model.Product{}
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at desc").
		Find(&products).Error
	if err != nil {
		return nil, translate(err)
	}
	return products, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *ProductGormRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	products := []model.Product{}
	if len(ids) == 0 {
		return products, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, translate(err)
	}
	return products, nil
}

// 他人の商品も「無い」扱い
func (r *ProductGormRepository) FindOwned(ctx context.Context, id string, vendorID string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND vendor_id = ?", id, vendorID).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// 商品の作成
func (r *ProductGormRepository) Create(ctx context.Context, p *model.Product) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

// 商品の更新（承認フラグと出品者は変えない）
// 指定された項目だけ書く。stockは在庫減算と競合するので触るときだけ。
func (r *ProductGormRepository) UpdateOwned(ctx context.Context, id string, vendorID string, u repo.ProductUpdate) error {
	updates := map[string]interface{}{}
	if u.Name != nil {
		updates["name"] = *u.Name
	}
	if u.Description != nil {
		updates["description"] = *u.Description
	}
	if u.Price != nil {
		updates["price"] = *u.Price
	}
	if u.Stock != nil {
		updates["stock"] = *u.Stock
	}
	if u.Category != nil {
		updates["category"] = *u.Category
	}
	if u.Image != nil {
		updates["image"] = *u.Image
	}

	scope := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ? AND vendor_id = ?", id, vendorID)
	if len(updates) == 0 {
		var n int64
		if err := scope.Count(&n).Error; err != nil {
			return translate(err)
		}
		if n == 0 {
			return repo.ErrNotFound
		}
		return nil
	}

	res := scope.Updates(updates)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 商品削除
func (r *ProductGormRepository) DeleteOwned(ctx context.Context, id string, vendorID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND vendor_id = ?", id, vendorID).
		Delete(&model.Product{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ProductGormRepository) Approve(ctx context.Context, id string) error {
	// 承認済みでも更新件数で判定できるよう存在確認を先にする
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return translate(err)
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		Update("is_approved", true).Error
	return translate(err)
}

func (r *ProductGormRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&n).Error; err != nil {
		return 0, translate(err)
	}
	return n, nil
}
