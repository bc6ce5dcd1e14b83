package model

import "time"

// NotificationCategory 通知类别枚举
type NotificationCategory string

const (
	NotificationCategoryAbsentMarked    NotificationCategory = "absent_marked"    // 缺勤标记
	NotificationCategoryRequestSubmit   NotificationCategory = "request_submit"   // 补卡申请提交
	NotificationCategoryRequestReviewed NotificationCategory = "request_reviewed" // 补卡申请审批
)

// NotificationStatus 通知状态枚举
type NotificationStatus string

const (
	NotificationStatusPending   NotificationStatus = "pending"   // 待处理
	NotificationStatusDelivered NotificationStatus = "delivered" // 已投递
	NotificationStatusFailed    NotificationStatus = "failed"    // 失败
)

// Notification 通知记录，由 worker 消费考勤事件后落库
type Notification struct {
	BaseModel
	MessageID   string               `gorm:"uniqueIndex;type:varchar(64);not null" json:"message_id"`
	UserID      int64                `gorm:"not null;index:idx_notifications_user" json:"user_id"`
	Category    NotificationCategory `gorm:"type:varchar(32);not null" json:"category"`
	Title       string               `gorm:"type:varchar(128);not null" json:"title"`
	Body        string               `gorm:"type:varchar(512)" json:"body,omitempty"`
	Payload     JSONB                `gorm:"type:jsonb" json:"payload,omitempty"`
	Status      NotificationStatus   `gorm:"type:varchar(16);not null;default:'pending';index:idx_notifications_status" json:"status"`
	DeliveredAt *time.Time           `gorm:"type:timestamptz" json:"delivered_at,omitempty"`
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}
