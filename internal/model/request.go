package model

import "time"

// RequestStatus 补卡申请状态枚举
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusRejected RequestStatus = "REJECTED"
)

// AttendanceRequest 补卡申请，员工在 GPS/条码失败时提交，管理员审批后生成
// method=MANUAL 的考勤记录
type AttendanceRequest struct {
	BaseModel
	UserID      int64     `gorm:"not null;index:idx_attendance_requests_user" json:"user_id"`
	LocationID  int64     `gorm:"not null" json:"location_id"`
	RequestTime time.Time `gorm:"type:timestamptz;not null" json:"request_time"`
	CheckType   CheckType `gorm:"type:varchar(8);not null" json:"check_type"`

	GPSLat       *float64 `gorm:"type:decimal(11,8)" json:"gps_lat,omitempty"`
	GPSLng       *float64 `gorm:"type:decimal(11,8)" json:"gps_lng,omitempty"`
	GPSAccuracyM *float64 `gorm:"type:decimal(8,2)" json:"gps_accuracy_m,omitempty"`
	DistanceM    *float64 `gorm:"type:decimal(8,2)" json:"distance_m,omitempty"`

	Reason        string `gorm:"type:varchar(255);not null" json:"reason"`
	PhotoPath     string `gorm:"type:varchar(255)" json:"photo_path,omitempty"`
	FailureReason string `gorm:"type:varchar(255)" json:"failure_reason,omitempty"`

	Status     RequestStatus `gorm:"type:varchar(16);not null;default:'PENDING';index:idx_attendance_requests_status" json:"status"`
	AdminNote  string        `gorm:"type:varchar(255)" json:"admin_note,omitempty"`
	ReviewedBy *int64        `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time    `gorm:"type:timestamptz" json:"reviewed_at,omitempty"`
}

// TableName 指定表名
func (AttendanceRequest) TableName() string {
	return "attendance_requests"
}
