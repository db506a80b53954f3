package model

import "time"

// 1ユーザーにつき1つ
type Cart struct {
	ID        string     `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"_id"`
	UserID    string     `gorm:"type:varchar(36);not null;uniqueIndex" bson:"user" json:"user"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" bson:"items" json:"items"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime" bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"not null;autoUpdateTime" bson:"updatedAt" json:"updatedAt"`
}

// カートの明細。数量は常に1以上。
type CartItem struct {
	ID        string `gorm:"primaryKey;type:varchar(36)" bson:"-" json:"-"`
	CartID    string `gorm:"type:varchar(36);not null;index" bson:"-" json:"-"`
	ProductID string `gorm:"type:varchar(36);not null" bson:"product" json:"product"`
	Quantity  int64  `gorm:"not null" bson:"quantity" json:"quantity"`
	// 表示順
	Position int `gorm:"not null;default:0" bson:"-" json:"-"`
}

// 同じ商品なら数量を足し、なければ末尾に追加する
func (c *Cart) Add(productID string, qty int64) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += qty
			return
		}
	}
	c.Items = append(c.Items, CartItem{ProductID: productID, Quantity: qty})
}

// 該当商品の行を数量に関係なく取り除く
func (c *Cart) Remove(productID string) {
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
}
