package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPlaced     OrderStatus = "Placed"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// 許可する遷移。Delivered/Cancelledからはどこにも行けない。
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPlaced:     {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped},
	OrderStatusShipped:    {OrderStatusDelivered},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPlaced, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, to := range orderTransitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusCompleted PaymentStatus = "Completed"
	PaymentStatusFailed    PaymentStatus = "Failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "COD"
	PaymentMethodOnline PaymentMethod = "Online"
)

// 注文。itemsとtotalAmountは作成後に変えない。
type Order struct {
	ID              string          `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"_id"`
	UserID          string          `gorm:"type:varchar(36);not null;index" bson:"user" json:"user"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" bson:"items" json:"items"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" bson:"totalAmount" json:"totalAmount"`
	DeliveryAddress DeliveryAddress `gorm:"embedded;embeddedPrefix:delivery_" bson:"deliveryAddress" json:"deliveryAddress"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(20);not null" bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(20);not null;index" bson:"paymentStatus" json:"paymentStatus"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;index" bson:"status" json:"status"`

	RazorpayOrderID   string `gorm:"type:varchar(100)" bson:"razorpayOrderId,omitempty" json:"razorpayOrderId,omitempty"`
	RazorpayPaymentID string `gorm:"type:varchar(100)" bson:"razorpayPaymentId,omitempty" json:"razorpayPaymentId,omitempty"`
	RazorpaySignature string `gorm:"type:varchar(255)" bson:"razorpaySignature,omitempty" json:"razorpaySignature,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" bson:"updatedAt" json:"updatedAt"`
}

// 注文明細。名前と単価は注文時点のスナップショット。
type OrderItem struct {
	ID          string          `gorm:"primaryKey;type:varchar(36)" bson:"-" json:"-"`
	OrderID     string          `gorm:"type:varchar(36);not null;index" bson:"-" json:"-"`
	ProductID   string          `gorm:"type:varchar(36);not null;index" bson:"product" json:"product"`
	ProductName string          `gorm:"type:varchar(255);not null" bson:"productName" json:"productName"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" bson:"price" json:"price"`
	Quantity    int64           `gorm:"not null" bson:"quantity" json:"quantity"`
	Position    int             `gorm:"not null;default:0" bson:"-" json:"-"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(i.Quantity))
}

func (o *Order) IsOwnedBy(userID string) bool {
	return o.UserID == userID
}
