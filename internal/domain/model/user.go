package model

import "time"

type Role string

const (
	RoleUser   Role = "user"
	RoleVendor Role = "vendor"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleVendor, RoleAdmin:
		return true
	}
	return false
}

// 登録ユーザー。プロフィール項目は任意。
type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"_id"`
	Name         string    `gorm:"type:varchar(255);not null" bson:"name" json:"name"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" bson:"email" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" bson:"password" json:"-"`
	Role         Role      `gorm:"type:varchar(20);not null;default:'user';index" bson:"role" json:"role"`
	Phone        string    `gorm:"type:varchar(30)" bson:"phone,omitempty" json:"phone,omitempty"`
	Address      string    `gorm:"type:varchar(255)" bson:"address,omitempty" json:"address,omitempty"`
	City         string    `gorm:"type:varchar(100)" bson:"city,omitempty" json:"city,omitempty"`
	State        string    `gorm:"type:varchar(100)" bson:"state,omitempty" json:"state,omitempty"`
	Pincode      string    `gorm:"type:varchar(20)" bson:"pincode,omitempty" json:"pincode,omitempty"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime" bson:"updatedAt" json:"updatedAt"`
}
