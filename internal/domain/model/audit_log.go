package model

import "time"

// 管理者が行った操作の種類
type AuditAction string

const (
	AuditActionApproveProduct    AuditAction = "APPROVE_PRODUCT"
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	AuditActionDeleteUser        AuditAction = "DELETE_USER"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceProduct AuditResourceType = "product"
	AuditResourceOrder   AuditResourceType = "order"
	AuditResourceUser    AuditResourceType = "user"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID string `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"_id"`

	//操作した管理者
	ActorUserID string `gorm:"type:varchar(36);not null;index" bson:"actor" json:"actor"`

	Action       AuditAction       `gorm:"type:varchar(50);not null;index" bson:"action" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" bson:"resourceType" json:"resourceType"`
	ResourceID   string            `gorm:"type:varchar(36);not null;index" bson:"resourceId" json:"resourceId"`

	//変更前後はJSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" bson:"before,omitempty" json:"before,omitempty"`
	AfterJSON  string `gorm:"type:text" bson:"after,omitempty" json:"after,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" bson:"createdAt" json:"createdAt"`
}
