package handler

import (
	"net/http"

	"freshmart/internal/domain/model"
	"freshmart/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /payment Razorpay連携
type PaymentHandler struct {
	uc *usecase.PaymentUsecase
}

func NewPaymentHandler(uc *usecase.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

type createPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type verifyPaymentRequest struct {
	RazorpayOrderID   string                `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string                `json:"razorpay_payment_id"`
	RazorpaySignature string                `json:"razorpay_signature"`
	DeliveryAddress   model.DeliveryAddress `json:"deliveryAddress" validate:"-"`
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo, guard Guard) {
	g := e.Group("/payment", guard.Require()...)
	g.POST("/create-order", h.createOrder)
	g.POST("/verify", h.verify)
}

func (h *PaymentHandler) createOrder(c echo.Context) error {
	var req createPaymentRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, usecase.ValidationError("Invalid amount"))
	}

	out, err := h.uc.CreateIntent(c.Request().Context(), usecase.CreateIntentInput{Amount: req.Amount})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PaymentHandler) verify(c echo.Context) error {
	id, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}

	var req verifyPaymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.Verify(c.Request().Context(), id.UserID, usecase.VerifyPaymentInput{
		RazorpayOrderID:   req.RazorpayOrderID,
		RazorpayPaymentID: req.RazorpayPaymentID,
		RazorpaySignature: req.RazorpaySignature,
		DeliveryAddress:   req.DeliveryAddress,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}
