package usecase

import (
	"context"
	"time"

	"freshmart/internal/domain/model"
)

// 呼び出し元の本人情報。ハンドラがJWTから作って渡す。
type Identity struct {
	UserID string
	Role   model.Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == model.RoleAdmin
}

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// JWTを発行する約束
type TokenIssuer interface {
	Issue(userID string, role model.Role, now time.Time) (token string, expiresAt time.Time, err error)
}

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, in RegisterInput) error
	ValidateLogin(ctx context.Context, in LoginInput) error
	// 指定された項目だけRegisterと同じ規則で見る
	ValidateProfile(ctx context.Context, in ProfileInput) error
}

// 配送先の形式チェック
type AddressValidator interface {
	ValidateDeliveryAddress(a model.DeliveryAddress) error
}

// メール通知。送信は非同期で、失敗しても呼び出し側には返さない。
type Notifier interface {
	Welcome(user model.User)
	OrderPlaced(user model.User, order model.Order)
	OrderCancelled(user model.User, order model.Order)
	OrderStatusChanged(user model.User, order model.Order)
}

// 決済プロバイダ側の注文
type PaymentIntent struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"keyId"`
	IsMock   bool   `json:"isMock,omitempty"`
}

// 決済ゲートウェイ
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amountPaise int64, receipt string) (PaymentIntent, error)
	VerifySignature(orderID string, paymentID string, signature string) bool
}

// 請求書PDFを作る
type InvoiceRenderer interface {
	Render(order model.Order, customer model.User) ([]byte, error)
}

// 業務メトリクス
type OrderMetrics interface {
	OrderPlaced(method model.PaymentMethod)
}

type noopOrderMetrics struct{}

func (noopOrderMetrics) OrderPlaced(model.PaymentMethod) {}
