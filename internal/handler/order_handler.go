package handler

import (
	"net/http"
	"strings"

	"freshmart/internal/domain/model"
	"freshmart/internal/middleware"
	"freshmart/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type orderCreateRequest struct {
	DeliveryAddress model.DeliveryAddress `json:"deliveryAddress"`
	PaymentMethod   string                `json:"paymentMethod"`
}

type orderStatusRequest struct {
	Status        *string `json:"status"`
	PaymentStatus *string `json:"paymentStatus"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, guard Guard) {
	g := e.Group("/orders", guard.Require()...)

	g.POST("", h.create)
	g.GET("/my-orders", h.listMine)
	g.GET("/:id", h.detail)
	g.PUT("/:id/cancel", h.cancel)
	g.GET("/:id/invoice", h.invoice)

	// 管理者のみ
	g.GET("/all", h.listAll, middleware.RequireRoles(model.RoleAdmin))
	g.PUT("/:id/status", h.updateStatus, middleware.RequireRoles(model.RoleAdmin))
}

// 代引き注文。オンライン決済は/payment/verifyから。
func (h *OrderHandler) create(c echo.Context) error {
	id, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}

	var req orderCreateRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, usecase.ValidationError("Invalid request body"))
	}
	method := strings.TrimSpace(req.PaymentMethod)
	if method != "" && method != string(model.PaymentMethodCOD) {
		return writeError(c, usecase.ValidationError("Online payments must be placed through /payment/verify"))
	}

	out, err := h.uc.PlaceCOD(c.Request().Context(), id.UserID, usecase.PlaceOrderInput{
		DeliveryAddress: req.DeliveryAddress,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) listMine(c echo.Context) error {
	id, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.ListMine(c.Request().Context(), id.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	id, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.Get(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) cancel(c echo.Context) error {
	id, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.Cancel(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) invoice(c echo.Context) error {
	id, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}

	inv, err := h.uc.Invoice(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+inv.Filename)
	return c.Blob(http.StatusOK, "application/pdf", inv.PDF)
}

func (h *OrderHandler) listAll(c echo.Context) error {
	out, err := h.uc.ListAll(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) updateStatus(c echo.Context) error {
	id, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}

	var req orderStatusRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, usecase.ValidationError("Invalid request body"))
	}

	out, err := h.uc.UpdateStatus(c.Request().Context(), id.UserID, c.Param("id"), usecase.UpdateOrderStatusInput{
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
