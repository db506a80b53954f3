package model

import "strings"

// 注文時の配送先。住所マスタとは照合せず、そのまま保存する。
type DeliveryAddress struct {
	FullName string `gorm:"type:varchar(255)" bson:"fullName" json:"fullName" validate:"required"`
	Phone    string `gorm:"type:varchar(30)" bson:"phone" json:"phone" validate:"required,digits=10"`
	Address  string `gorm:"type:varchar(255)" bson:"address" json:"address" validate:"required"`
	City     string `gorm:"type:varchar(100)" bson:"city" json:"city" validate:"required"`
	State    string `gorm:"type:varchar(100)" bson:"state" json:"state"`
	Pincode  string `gorm:"type:varchar(20)" bson:"pincode" json:"pincode" validate:"required,digits=6"`
}

func (a DeliveryAddress) Trimmed() DeliveryAddress {
	return DeliveryAddress{
		FullName: strings.TrimSpace(a.FullName),
		Phone:    strings.TrimSpace(a.Phone),
		Address:  strings.TrimSpace(a.Address),
		City:     strings.TrimSpace(a.City),
		State:    strings.TrimSpace(a.State),
		Pincode:  strings.TrimSpace(a.Pincode),
	}
}
