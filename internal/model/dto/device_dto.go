package dto

import "time"

// ========== Device 相关 DTO ==========

// RegisterDeviceRequest 注册打卡设备请求
type RegisterDeviceRequest struct {
	DeviceName string            `json:"device_name,omitempty"`
	Components map[string]string `json:"components" binding:"required"` // 硬件指纹成分，如 platform/model/serial
}

// DeviceSnapshot 设备快照
type DeviceSnapshot struct {
	ID           string     `json:"id"`
	DeviceName   string     `json:"device_name,omitempty"`
	Fingerprint  string     `json:"fingerprint"`
	IsApproved   bool       `json:"is_approved"`
	RegisteredAt time.Time  `json:"registered_at"`
	LastUsedAt   *time.Time `json:"last_used_at,omitempty"`
}

// DeviceListResponse 设备列表响应
type DeviceListResponse struct {
	Devices []DeviceSnapshot `json:"devices"`
}
