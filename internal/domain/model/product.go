package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// 金額はJSONでは数値で返す
	decimal.MarshalJSONWithoutQuotes = true
}

// 出品商品。isApprovedは管理者の承認でのみtrueになる。
type Product struct {
	ID          string          `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"_id"`
	Name        string          `gorm:"type:varchar(255);not null" bson:"name" json:"name"`
	Description string          `gorm:"type:text" bson:"description" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" bson:"price" json:"price"`
	Stock       int64           `gorm:"not null;default:0" bson:"stock" json:"stock"`
	Category    string          `gorm:"type:varchar(100);not null;index" bson:"category" json:"category"`
	Image       string          `gorm:"type:text" bson:"image,omitempty" json:"image,omitempty"`
	VendorID    string          `gorm:"type:varchar(36);not null;index" bson:"vendor" json:"vendor"`
	IsApproved  bool            `gorm:"not null;default:false;index" bson:"isApproved" json:"isApproved"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" bson:"updatedAt" json:"updatedAt"`
}
