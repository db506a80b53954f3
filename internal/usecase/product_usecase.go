package usecase

import (
	"context"
	"errors"
	"strings"

	"freshmart/internal/domain/model"
	repo "freshmart/internal/repository"

	"github.com/shopspring/decimal"
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
	tx          repo.TransactionManager
	idGen       IDGenerator
	clock       Clock
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	tx repo.TransactionManager,
	idGen IDGenerator,
	clock Clock,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		tx:          tx,
		idGen:       idGen,
		clock:       clock,
	}
}

// GET /productsの入力
type ListProductsInput struct {
	Keyword  string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// 出品時の入力
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int64
	Category    string
	Image       string
}

// 出品者が変更できる項目だけ。承認フラグと出品者は含めない。
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int64
	Category    *string
	Image       *string
}

type ProductOutput struct {
	Message string        `json:"message"`
	Product model.Product `json:"product"`
}

func (u *ProductUsecase) ListApproved(ctx context.Context, in ListProductsInput) ([]model.Product, error) {
	if len(in.Keyword) > 100 {
		return nil, ValidationError("keyword too long")
	}
	if in.MinPrice != nil && in.MinPrice.IsNegative() {
		return nil, ValidationError("minPrice must be >= 0")
	}
	if in.MaxPrice != nil && in.MaxPrice.IsNegative() {
		return nil, ValidationError("maxPrice must be >= 0")
	}

	items, err := u.productRepo.ListApproved(ctx, repo.ProductFilter{
		Keyword:  strings.TrimSpace(in.Keyword),
		Category: strings.TrimSpace(in.Category),
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
	})
	if err != nil {
		return nil, internalError("product.list", err)
	}
	return items, nil
}

func (u *ProductUsecase) ListPending(ctx context.Context) ([]model.Product, error) {
	items, err := u.productRepo.ListPending(ctx)
	if err != nil {
		return nil, internalError("product.pending", err)
	}
	return items, nil
}

func (u *ProductUsecase) ListByVendor(ctx context.Context, vendorID string) ([]model.Product, error) {
	items, err := u.productRepo.ListByVendor(ctx, vendorID)
	if err != nil {
		return nil, internalError("product.vendor_list", err)
	}
	return items, nil
}

func validateProduct(p model.Product) error {
	if p.Name == "" {
		return ValidationError("name is required")
	}
	if p.Category == "" {
		return ValidationError("category is required")
	}
	if p.Price.IsNegative() {
		return ValidationError("price must be >= 0")
	}
	if p.Stock < 0 {
		return ValidationError("stock must be >= 0")
	}
	return nil
}

// 出品。必ず承認待ちで作る。
func (u *ProductUsecase) Create(ctx context.Context, vendorID string, in ProductInput) (ProductOutput, error) {
	now := u.clock.Now()
	p := model.Product{
		ID:          u.idGen.NewID(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Stock:       in.Stock,
		Category:    strings.TrimSpace(in.Category),
		Image:       strings.TrimSpace(in.Image),
		VendorID:    vendorID,
		IsApproved:  false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := validateProduct(p); err != nil {
		return ProductOutput{}, err
	}

	if err := u.productRepo.Create(ctx, &p); err != nil {
		return ProductOutput{}, internalError("product.create", err)
	}
	return ProductOutput{Message: "Product added, waiting for admin approval", Product: p}, nil
}

// 承認。承認済みなら何もしないで成功。
// 承認と監査ログは同じTxで書く。
func (u *ProductUsecase) Approve(ctx context.Context, actorID string, productID string) (ProductOutput, error) {
	var approved model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NotFound("Product not found")
		}
		if err != nil {
			return err
		}
		if p.IsApproved {
			approved = *p
			return nil
		}

		if err := r.Products().Approve(ctx, productID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NotFound("Product not found")
			}
			return err
		}
		p.IsApproved = true

		//監査ログを作成（承認）
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ID:           u.idGen.NewID(),
			ActorUserID:  actorID,
			Action:       model.AuditActionApproveProduct,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			BeforeJSON:   `{"isApproved":false}`,
			AfterJSON:    `{"isApproved":true}`,
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return err
		}
		approved = *p
		return nil
	})
	if err != nil {
		return ProductOutput{}, passOrInternal("product.approve", err)
	}
	return ProductOutput{Message: "Product approved", Product: approved}, nil
}

// 自分の商品だけ更新できる。他人の商品は「無い」扱い。
// 書くのはパッチにある項目だけ。在庫減算を上書きしない。
func (u *ProductUsecase) Update(ctx context.Context, vendorID string, productID string, patch ProductPatch) (model.Product, error) {
	p, err := u.productRepo.FindOwned(ctx, productID, vendorID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NotFound("Product not found or unauthorized")
	}
	if err != nil {
		return model.Product{}, internalError("product.update.find", err)
	}

	upd := repo.ProductUpdate{
		Name:        trimmedPtr(patch.Name),
		Description: trimmedPtr(patch.Description),
		Price:       patch.Price,
		Stock:       patch.Stock,
		Category:    trimmedPtr(patch.Category),
		Image:       trimmedPtr(patch.Image),
	}

	// 検証は適用後の姿で行う
	next := *p
	if upd.Name != nil {
		next.Name = *upd.Name
	}
	if upd.Description != nil {
		next.Description = *upd.Description
	}
	if upd.Price != nil {
		next.Price = *upd.Price
	}
	if upd.Stock != nil {
		next.Stock = *upd.Stock
	}
	if upd.Category != nil {
		next.Category = *upd.Category
	}
	if upd.Image != nil {
		next.Image = *upd.Image
	}
	if err := validateProduct(next); err != nil {
		return model.Product{}, err
	}

	if err := u.productRepo.UpdateOwned(ctx, productID, vendorID, upd); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Product{}, NotFound("Product not found or unauthorized")
		}
		return model.Product{}, internalError("product.update", err)
	}

	// 在庫は他の注文で動いているかもしれないので読み直す
	saved, err := u.productRepo.FindOwned(ctx, productID, vendorID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NotFound("Product not found or unauthorized")
	}
	if err != nil {
		return model.Product{}, internalError("product.update.reload", err)
	}
	return *saved, nil
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func (u *ProductUsecase) Delete(ctx context.Context, vendorID string, productID string) error {
	err := u.productRepo.DeleteOwned(ctx, productID, vendorID)
	if errors.Is(err, repo.ErrNotFound) {
		return NotFound("Product not found or unauthorized")
	}
	if err != nil {
		return internalError("product.delete", err)
	}
	return nil
}

