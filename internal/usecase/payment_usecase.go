package usecase

import (
	"context"
	"fmt"
	"strings"

	"freshmart/internal/domain/model"

	"github.com/shopspring/decimal"
)

// モック決済の注文IDはこの接頭辞で始まる
const MockOrderPrefix = "order_mock_"

type PaymentUsecase struct {
	gateway PaymentGateway
	orders  *OrderUsecase
	clock   Clock
}

func NewPaymentUsecase(gateway PaymentGateway, orders *OrderUsecase, clock Clock) *PaymentUsecase {
	return &PaymentUsecase{gateway: gateway, orders: orders, clock: clock}
}

type CreateIntentInput struct {
	Amount decimal.Decimal
}

// 決済プロバイダ側の注文を作る。金額はルピーで受け取りパイサに直して渡す。
func (u *PaymentUsecase) CreateIntent(ctx context.Context, in CreateIntentInput) (PaymentIntent, error) {
	if !in.Amount.IsPositive() {
		return PaymentIntent{}, ValidationError("Invalid amount")
	}
	paise := in.Amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	receipt := fmt.Sprintf("receipt_%d", u.clock.Now().UnixMilli())

	intent, err := u.gateway.CreateOrder(ctx, paise, receipt)
	if err != nil {
		return PaymentIntent{}, internalError("payment.create_order", err)
	}
	return intent, nil
}

type VerifyPaymentInput struct {
	RazorpayOrderID   string
	RazorpayPaymentID string
	RazorpaySignature string
	DeliveryAddress   model.DeliveryAddress
}

// 署名を検証してからオンライン決済の注文を作る
func (u *PaymentUsecase) Verify(ctx context.Context, userID string, in VerifyPaymentInput) (OrderResult, error) {
	if strings.TrimSpace(in.RazorpayOrderID) == "" {
		return OrderResult{}, ValidationError("razorpay_order_id is required")
	}
	if !strings.HasPrefix(in.RazorpayOrderID, MockOrderPrefix) {
		if !u.gateway.VerifySignature(in.RazorpayOrderID, in.RazorpayPaymentID, in.RazorpaySignature) {
			return OrderResult{}, InvalidSignature()
		}
	}

	order, err := u.orders.place(ctx, userID, in.DeliveryAddress, placement{
		method:            model.PaymentMethodOnline,
		paymentStatus:     model.PaymentStatusCompleted,
		decrementStock:    u.orders.OnlineDecrementsStock,
		razorpayOrderID:   in.RazorpayOrderID,
		razorpayPaymentID: in.RazorpayPaymentID,
		razorpaySignature: in.RazorpaySignature,
	})
	if err != nil {
		return OrderResult{}, err
	}
	return OrderResult{Message: "Payment verified and order placed successfully", Order: order}, nil
}
