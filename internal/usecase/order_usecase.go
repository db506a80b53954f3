package usecase

import (
	"context"
	"errors"

	"freshmart/internal/domain/model"
	repo "freshmart/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderUsecaseの依存
type OrderDeps struct {
	Tx        repo.TransactionManager
	Orders    repo.OrderRepository
	Products  repo.ProductRepository
	Users     repo.UserRepository
	Addresses AddressValidator
	Notifier  Notifier
	Invoices  InvoiceRenderer
	Metrics   OrderMetrics
	IDGen     IDGenerator
	Clock     Clock

	// オンライン決済でも在庫を減らすか
	OnlineDecrementsStock bool
}

type OrderUsecase struct {
	OrderDeps
}

func NewOrderUsecase(deps OrderDeps) *OrderUsecase {
	if deps.Metrics == nil {
		deps.Metrics = noopOrderMetrics{}
	}
	return &OrderUsecase{OrderDeps: deps}
}

type PlaceOrderInput struct {
	DeliveryAddress model.DeliveryAddress
}

type OrderResult struct {
	Message string      `json:"message"`
	Order   model.Order `json:"order"`
}

// 決済方法ごとの違い
type placement struct {
	method            model.PaymentMethod
	paymentStatus     model.PaymentStatus
	decrementStock    bool
	razorpayOrderID   string
	razorpayPaymentID string
	razorpaySignature string
}

// 代引き注文。支払い済み扱いで在庫を減らす。
func (u *OrderUsecase) PlaceCOD(ctx context.Context, userID string, in PlaceOrderInput) (OrderResult, error) {
	order, err := u.place(ctx, userID, in.DeliveryAddress, placement{
		method:         model.PaymentMethodCOD,
		paymentStatus:  model.PaymentStatusCompleted,
		decrementStock: true,
	})
	if err != nil {
		return OrderResult{}, err
	}
	return OrderResult{Message: "Order placed successfully", Order: order}, nil
}

// カート→在庫確認→注文作成→在庫減算→カートを空に、を1トランザクションで行う。
// 通知はコミット後。
func (u *OrderUsecase) place(ctx context.Context, userID string, addr model.DeliveryAddress, pl placement) (model.Order, error) {
	addr = addr.Trimmed()
	if err := u.Addresses.ValidateDeliveryAddress(addr); err != nil {
		return model.Order{}, err
	}

	var created model.Order
	err := u.Tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindByUserID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return EmptyCart()
		}
		if err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return EmptyCart()
		}

		//在庫確認と金額計算（単価は注文時点で固定）
		items := make([]model.OrderItem, 0, len(cart.Items))
		total := decimal.Zero
		for _, line := range cart.Items {
			p, err := r.Products().FindByID(ctx, line.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				return NotFound("Product not found")
			}
			if err != nil {
				return err
			}
			if line.Quantity > p.Stock {
				return InsufficientStock(p.Name, p.Stock)
			}

			item := model.OrderItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				Price:       p.Price,
				Quantity:    line.Quantity,
			}
			items = append(items, item)
			total = total.Add(item.LineTotal())
		}

		now := u.Clock.Now()
		order := model.Order{
			ID:                u.IDGen.NewID(),
			UserID:            userID,
			Items:             items,
			TotalAmount:       total,
			DeliveryAddress:   addr,
			PaymentMethod:     pl.method,
			PaymentStatus:     pl.paymentStatus,
			Status:            model.OrderStatusPlaced,
			RazorpayOrderID:   pl.razorpayOrderID,
			RazorpayPaymentID: pl.razorpayPaymentID,
			RazorpaySignature: pl.razorpaySignature,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := r.Orders().Create(ctx, &order); err != nil {
			return err
		}

		//在庫減算。同時注文で足りなくなっていたら全部ロールバック。
		if pl.decrementStock {
			for _, it := range items {
				ok, err := r.Inventory().DecreaseStockIfEnough(ctx, it.ProductID, it.Quantity)
				if err != nil {
					return err
				}
				if !ok {
					var available int64
					if p, err := r.Products().FindByID(ctx, it.ProductID); err == nil {
						available = p.Stock
					}
					return InsufficientStock(it.ProductName, available)
				}
			}
		}

		if err := r.Carts().Clear(ctx, userID); err != nil {
			return err
		}

		created = order
		return nil
	})
	if err != nil {
		return model.Order{}, passOrInternal("order.place", err)
	}

	u.Metrics.OrderPlaced(pl.method)
	if user, ok := u.owner(ctx, created); ok {
		u.Notifier.OrderPlaced(user, created)
	}
	return created, nil
}

// 通知先の取得。失敗しても注文処理には影響させない。
func (u *OrderUsecase) owner(ctx context.Context, o model.Order) (model.User, bool) {
	user, err := u.Users.FindByID(ctx, o.UserID)
	if err != nil {
		zap.L().Warn("order owner lookup failed",
			zap.String("order_id", o.ID),
			zap.String("user_id", o.UserID),
			zap.Error(err))
		return model.User{}, false
	}
	return *user, true
}

// 本人か管理者だけが見られる
func (u *OrderUsecase) findAccessible(ctx context.Context, who Identity, orderID string) (*model.Order, error) {
	o, err := u.Orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, NotFound("Order not found")
	}
	if err != nil {
		return nil, internalError("order.find", err)
	}
	if !o.IsOwnedBy(who.UserID) && !who.IsAdmin() {
		return nil, Forbidden("Not authorized")
	}
	return o, nil
}

func (u *OrderUsecase) Get(ctx context.Context, who Identity, orderID string) (model.Order, error) {
	o, err := u.findAccessible(ctx, who, orderID)
	if err != nil {
		return model.Order{}, err
	}
	return *o, nil
}

// キャンセルはPlacedのときだけ。在庫は戻さない。
func (u *OrderUsecase) Cancel(ctx context.Context, who Identity, orderID string) (model.Order, error) {
	o, err := u.findAccessible(ctx, who, orderID)
	if err != nil {
		return model.Order{}, err
	}
	if o.Status != model.OrderStatusPlaced {
		return model.Order{}, InvalidState("Cannot cancel order at this stage")
	}

	// 確認後に管理者が進めていたら上書きしない
	placed := model.OrderStatusPlaced
	cancelled := model.OrderStatusCancelled
	err = u.Orders.UpdateStatus(ctx, o.ID, repo.OrderStatusUpdate{From: &placed, Status: &cancelled})
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, NotFound("Order not found")
	}
	if errors.Is(err, repo.ErrStaleState) {
		return model.Order{}, InvalidState("Cannot cancel order at this stage")
	}
	if err != nil {
		return model.Order{}, internalError("order.cancel", err)
	}
	o.Status = cancelled
	o.UpdatedAt = u.Clock.Now()

	if user, ok := u.owner(ctx, *o); ok {
		u.Notifier.OrderCancelled(user, *o)
	}
	return *o, nil
}

func (u *OrderUsecase) ListMine(ctx context.Context, userID string) ([]model.Order, error) {
	orders, err := u.Orders.ListByUserID(ctx, userID)
	if err != nil {
		return nil, internalError("order.list_mine", err)
	}
	return orders, nil
}

func (u *OrderUsecase) ListAll(ctx context.Context) ([]model.Order, error) {
	orders, err := u.Orders.ListAll(ctx)
	if err != nil {
		return nil, internalError("order.list_all", err)
	}
	return orders, nil
}

// 出品者の商品を1つでも含む注文
func (u *OrderUsecase) ListVendor(ctx context.Context, vendorID string) ([]model.Order, error) {
	products, err := u.Products.ListByVendor(ctx, vendorID)
	if err != nil {
		return nil, internalError("order.list_vendor.products", err)
	}
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	orders, err := u.Orders.ListByProductIDs(ctx, ids)
	if err != nil {
		return nil, internalError("order.list_vendor", err)
	}
	return orders, nil
}

type Invoice struct {
	Filename string
	PDF      []byte
}

// 請求書PDF。閲覧権限はGetと同じ。
func (u *OrderUsecase) Invoice(ctx context.Context, who Identity, orderID string) (Invoice, error) {
	o, err := u.findAccessible(ctx, who, orderID)
	if err != nil {
		return Invoice{}, err
	}

	customer, err := u.Users.FindByID(ctx, o.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		// 退会済みでも請求書は出す
		customer = &model.User{ID: o.UserID, Name: o.DeliveryAddress.FullName}
	} else if err != nil {
		return Invoice{}, internalError("order.invoice.user", err)
	}

	pdf, err := u.Invoices.Render(*o, *customer)
	if err != nil {
		return Invoice{}, internalError("order.invoice.render", err)
	}
	return Invoice{Filename: "invoice-" + o.ID + ".pdf", PDF: pdf}, nil
}
