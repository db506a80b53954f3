package usecase

import (
	"context"

	"freshmart/internal/domain/model"
	repo "freshmart/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type StatsUsecase struct {
	users    repo.UserRepository
	orders   repo.OrderRepository
	products repo.ProductRepository
}

func NewStatsUsecase(users repo.UserRepository, orders repo.OrderRepository, products repo.ProductRepository) *StatsUsecase {
	return &StatsUsecase{users: users, orders: orders, products: products}
}

type AdminStats struct {
	TotalUsers    int64           `json:"totalUsers"`
	TotalOrders   int64           `json:"totalOrders"`
	TotalProducts int64           `json:"totalProducts"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
}

type VendorStats struct {
	TotalProducts int64           `json:"totalProducts"`
	TotalOrders   int64           `json:"totalOrders"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
}

// 売上は支払い済み(Completed)の注文だけ数える。
func (u *StatsUsecase) Admin(ctx context.Context) (AdminStats, error) {
	var out AdminStats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		out.TotalUsers, err = u.users.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.TotalOrders, err = u.orders.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.TotalProducts, err = u.products.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.TotalRevenue, err = u.orders.SumTotalByPaymentStatus(gctx, model.PaymentStatusCompleted)
		return err
	})

	if err := g.Wait(); err != nil {
		return AdminStats{}, internalError("stats.admin", err)
	}
	return out, nil
}

// 出品者の売上は自分の商品の明細分だけ（注文時の単価で計算）
func (u *StatsUsecase) Vendor(ctx context.Context, vendorID string) (VendorStats, error) {
	products, err := u.products.ListByVendor(ctx, vendorID)
	if err != nil {
		return VendorStats{}, internalError("stats.vendor.products", err)
	}

	mine := make(map[string]struct{}, len(products))
	ids := make([]string, 0, len(products))
	for _, p := range products {
		mine[p.ID] = struct{}{}
		ids = append(ids, p.ID)
	}

	orders, err := u.orders.ListByProductIDs(ctx, ids)
	if err != nil {
		return VendorStats{}, internalError("stats.vendor.orders", err)
	}

	revenue := decimal.Zero
	for _, o := range orders {
		if o.PaymentStatus != model.PaymentStatusCompleted {
			continue
		}
		for _, it := range o.Items {
			if _, ok := mine[it.ProductID]; ok {
				revenue = revenue.Add(it.LineTotal())
			}
		}
	}

	return VendorStats{
		TotalProducts: int64(len(products)),
		TotalOrders:   int64(len(orders)),
		TotalRevenue:  revenue,
	}, nil
}
