package server

import (
	"net/http"

	"freshmart/internal/handler"
	"freshmart/internal/middleware"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ルート登録に必要なハンドラ一式
type Handlers struct {
	Auth         *handler.AuthHandler
	Product      *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	Vendor       *handler.VendorHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler
	Payment      *handler.PaymentHandler
	Admin        *handler.AdminHandler
}

func RegisterRoutes(e *echo.Echo, h Handlers, guard handler.Guard, limiter middleware.RateLimiter, gatherer prometheus.Gatherer) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	h.Auth.RegisterRoutes(e, guard, limiter)
	h.Product.RegisterRoutes(e, guard)
	h.AdminProduct.RegisterRoutes(e, guard)
	h.Vendor.RegisterRoutes(e, guard)
	h.Cart.RegisterRoutes(e, guard)
	h.Order.RegisterRoutes(e, guard)
	h.Payment.RegisterRoutes(e, guard)
	h.Admin.RegisterRoutes(e, guard)
}
