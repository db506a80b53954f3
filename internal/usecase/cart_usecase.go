package usecase

import (
	"context"
	"errors"

	"freshmart/internal/domain/model"
	repo "freshmart/internal/repository"
)

// CartUsecase は /cart の業務ロジックです。
type CartUsecase struct {
	cartRepo    repo.CartRepository
	productRepo repo.ProductRepository
	idGen       IDGenerator
	clock       Clock
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	productRepo repo.ProductRepository,
	idGen IDGenerator,
	clock Clock,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		idGen:       idGen,
		clock:       clock,
	}
}

// 商品を展開した明細
type CartLine struct {
	Product  model.Product `json:"product"`
	Quantity int64         `json:"quantity"`
}

type CartView struct {
	ID    string     `json:"_id,omitempty"`
	User  string     `json:"user"`
	Items []CartLine `json:"items"`
}

type AddCartInput struct {
	ProductID string
	Quantity  int64
}

// Get はカート取得（無ければ空を返す）。
func (u *CartUsecase) Get(ctx context.Context, userID string) (CartView, error) {
	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartView{User: userID, Items: []CartLine{}}, nil
	}
	if err != nil {
		return CartView{}, internalError("cart.get", err)
	}
	return u.view(ctx, cart)
}

// AddItem はカートに追加（同一商品は数量加算）。
func (u *CartUsecase) AddItem(ctx context.Context, userID string, in AddCartInput) (CartView, error) {
	if in.ProductID == "" {
		return CartView{}, ValidationError("productId is required")
	}
	if in.Quantity < 1 {
		return CartView{}, ValidationError("quantity must be at least 1")
	}

	if _, err := u.productRepo.FindByID(ctx, in.ProductID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartView{}, NotFound("Product not found")
		}
		return CartView{}, internalError("cart.add.product", err)
	}

	cart, err := u.addAndSave(ctx, userID, in)
	if errors.Is(err, repo.ErrConflict) {
		// 初回作成が同時に走った。作られた方に積み直す。
		cart, err = u.addAndSave(ctx, userID, in)
	}
	if err != nil {
		return CartView{}, internalError("cart.add", err)
	}
	return u.view(ctx, cart)
}

func (u *CartUsecase) addAndSave(ctx context.Context, userID string, in AddCartInput) (*model.Cart, error) {
	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		now := u.clock.Now()
		cart = &model.Cart{
			ID:        u.idGen.NewID(),
			UserID:    userID,
			Items:     []model.CartItem{},
			CreatedAt: now,
			UpdatedAt: now,
		}
	} else if err != nil {
		return nil, err
	}

	cart.Add(in.ProductID, in.Quantity)
	if err := u.cartRepo.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem は該当商品の行を丸ごと消す。
func (u *CartUsecase) RemoveItem(ctx context.Context, userID string, productID string) (CartView, error) {
	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartView{}, NotFound("Cart not found")
	}
	if err != nil {
		return CartView{}, internalError("cart.remove.find", err)
	}

	cart.Remove(productID)
	if err := u.cartRepo.Save(ctx, cart); err != nil {
		return CartView{}, internalError("cart.remove", err)
	}
	return u.view(ctx, cart)
}

// 商品を引き当てて表示用にする。削除済み商品の行は出さない。
func (u *CartUsecase) view(ctx context.Context, cart *model.Cart) (CartView, error) {
	ids := make([]string, 0, len(cart.Items))
	for _, it := range cart.Items {
		ids = append(ids, it.ProductID)
	}
	products, err := u.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return CartView{}, internalError("cart.view.products", err)
	}
	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]CartLine, 0, len(cart.Items))
	for _, it := range cart.Items {
		p, ok := byID[it.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, CartLine{Product: p, Quantity: it.Quantity})
	}
	return CartView{ID: cart.ID, User: cart.UserID, Items: lines}, nil
}
