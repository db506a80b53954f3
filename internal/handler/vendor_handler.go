package handler

import (
	"net/http"

	"freshmart/internal/domain/model"
	"freshmart/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /vendor 出品者の管理画面用
type VendorHandler struct {
	products *ProductHandler
	orders   *usecase.OrderUsecase
	stats    *usecase.StatsUsecase
}

// DI
func NewVendorHandler(products *ProductHandler, orders *usecase.OrderUsecase, stats *usecase.StatsUsecase) *VendorHandler {
	return &VendorHandler{products: products, orders: orders, stats: stats}
}

func (h *VendorHandler) RegisterRoutes(e *echo.Echo, guard Guard) {
	g := e.Group("/vendor", guard.Require(model.RoleVendor)...)

	g.GET("/products", h.listProducts)
	g.POST("/products", h.products.create)
	g.PUT("/products/:id", h.updateProduct)
	g.DELETE("/products/:id", h.deleteProduct)
	g.GET("/orders", h.listOrders)
	g.GET("/stats", h.getStats)
}

func (h *VendorHandler) listProducts(c echo.Context) error {
	id, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.products.uc.ListByVendor(c.Request().Context(), id.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *VendorHandler) updateProduct(c echo.Context) error {
	id, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}

	var req productPatchRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, usecase.ValidationError("Invalid request body"))
	}

	out, err := h.products.uc.Update(c.Request().Context(), id.UserID, c.Param("id"), req.toPatch())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *VendorHandler) deleteProduct(c echo.Context) error {
	id, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.products.uc.Delete(c.Request().Context(), id.UserID, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Product deleted"})
}

func (h *VendorHandler) listOrders(c echo.Context) error {
	id, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.orders.ListVendor(c.Request().Context(), id.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *VendorHandler) getStats(c echo.Context) error {
	id, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.stats.Vendor(c.Request().Context(), id.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
