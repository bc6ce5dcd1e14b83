package model

import "time"

// Device 员工注册的打卡设备，指纹由客户端上报的硬件信息哈希得到
type Device struct {
	BaseModel
	UserID            int64      `gorm:"not null;index:idx_devices_user" json:"user_id"`
	DeviceFingerprint string     `gorm:"type:varchar(64);not null;uniqueIndex:idx_devices_fingerprint" json:"device_fingerprint"`
	DeviceName        string     `gorm:"type:varchar(64)" json:"device_name,omitempty"`
	DeviceInfo        JSONB      `gorm:"type:jsonb" json:"device_info,omitempty"`
	IsApproved        bool       `gorm:"not null;default:true" json:"is_approved"`
	RegisteredAt      time.Time  `gorm:"type:timestamptz;not null" json:"registered_at"`
	LastUsedAt        *time.Time `gorm:"type:timestamptz" json:"last_used_at,omitempty"`
}

// TableName 指定表名
func (Device) TableName() string {
	return "devices"
}
