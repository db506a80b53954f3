package payment

import (
	"context"
	"fmt"

	"freshmart/internal/usecase"

	"go.uber.org/zap"
)

const mockKeyID = "test_key_id_mock"

// キー未設定時のゲートウェイ。外部には出ない。
type Mock struct {
	clock usecase.Clock
}

func NewMock(clock usecase.Clock) *Mock {
	return &Mock{clock: clock}
}

func (m *Mock) CreateOrder(_ context.Context, amountPaise int64, _ string) (usecase.PaymentIntent, error) {
	zap.L().Warn("using mock razorpay order (keys not configured)")
	return usecase.PaymentIntent{
		OrderID:  fmt.Sprintf("%s%d", usecase.MockOrderPrefix, m.clock.Now().UnixMilli()),
		Amount:   amountPaise,
		Currency: currencyINR,
		KeyID:    mockKeyID,
		IsMock:   true,
	}, nil
}

// モックの注文IDはusecase側で検証を飛ばす。それ以外は通さない。
func (m *Mock) VerifySignature(string, string, string) bool {
	return false
}
