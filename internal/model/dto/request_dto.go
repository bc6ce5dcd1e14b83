package dto

import "time"

// ========== 补卡申请相关 DTO ==========

// SubmitRequestRequest 提交补卡申请请求
type SubmitRequestRequest struct {
	LocationCode  string   `json:"location_code" binding:"required"`
	CheckType     string   `json:"check_type" binding:"required"`
	RequestTime   string   `json:"request_time" binding:"required"` // RFC3339
	Reason        string   `json:"reason" binding:"required"`
	PhotoPath     string   `json:"photo_path,omitempty"`
	FailureReason string   `json:"failure_reason,omitempty"`
	GPSLat        *float64 `json:"gps_lat,omitempty"`
	GPSLng        *float64 `json:"gps_lng,omitempty"`
	GPSAccuracyM  *float64 `json:"gps_accuracy_m,omitempty"`
}

// RequestSnapshot 补卡申请快照
type RequestSnapshot struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	CheckType     string     `json:"check_type"`
	RequestTime   time.Time  `json:"request_time"`
	Reason        string     `json:"reason"`
	FailureReason string     `json:"failure_reason,omitempty"`
	Status        string     `json:"status"`
	AdminNote     string     `json:"admin_note,omitempty"`
	ReviewedBy    string     `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// RequestListQuery 补卡申请列表查询参数
type RequestListQuery struct {
	Status string `form:"status"`
	UserID string `form:"user_id"`
	Cursor string `form:"cursor"`
	Limit  int    `form:"limit"`
}

// RequestListResponse 补卡申请列表响应
type RequestListResponse struct {
	Requests   []RequestSnapshot `json:"requests"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// ReviewRequestRequest 审批补卡申请请求
type ReviewRequestRequest struct {
	AdminNote string `json:"admin_note,omitempty"`
}
