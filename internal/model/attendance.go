package model

import "time"

// CheckType 打卡方向枚举
type CheckType string

const (
	CheckTypeIn  CheckType = "IN"
	CheckTypeOut CheckType = "OUT"
)

// Flip 上下班交替：同一天内每次扫码翻转上一次的方向
func (t CheckType) Flip() CheckType {
	if t == CheckTypeIn {
		return CheckTypeOut
	}
	return CheckTypeIn
}

// AttendanceStatus 考勤状态枚举
type AttendanceStatus string

const (
	AttendanceStatusOnTime  AttendanceStatus = "ON_TIME"
	AttendanceStatusLate    AttendanceStatus = "LATE"
	AttendanceStatusEarly   AttendanceStatus = "EARLY"
	AttendanceStatusAbsent  AttendanceStatus = "ABSENT"
	AttendanceStatusExcused AttendanceStatus = "EXCUSED"
)

// AttendanceMethod 记录来源枚举
type AttendanceMethod string

const (
	AttendanceMethodAuto   AttendanceMethod = "AUTO"   // 扫码打卡
	AttendanceMethodManual AttendanceMethod = "MANUAL" // 补卡审批
	AttendanceMethodSystem AttendanceMethod = "SYSTEM" // 缺勤扫描
)

// PenaltyTierNone 无惩罚档位
const PenaltyTierNone = "NONE"

// Attendance 考勤事件，创建后不可变，仅补卡来源的记录保留审批元数据
type Attendance struct {
	BaseModel
	UserID     int64     `gorm:"not null;index:idx_attendances_user_date" json:"user_id"`
	LocationID *int64    `gorm:"index" json:"location_id,omitempty"`
	ScanTime   time.Time `gorm:"type:timestamptz;not null;index:idx_attendances_user_date" json:"scan_time"`
	CheckType  CheckType `gorm:"type:varchar(8);not null" json:"check_type"`

	GPSLat       *float64 `gorm:"type:decimal(11,8)" json:"gps_lat,omitempty"`
	GPSLng       *float64 `gorm:"type:decimal(11,8)" json:"gps_lng,omitempty"`
	GPSAccuracyM *float64 `gorm:"type:decimal(8,2)" json:"gps_accuracy_m,omitempty"`
	DistanceM    *float64 `gorm:"type:decimal(8,2)" json:"distance_m,omitempty"`
	TimeSlot     string   `gorm:"type:varchar(16)" json:"time_slot,omitempty"`
	IPAddress    string   `gorm:"type:varchar(45)" json:"ip_address,omitempty"`
	DeviceID     string   `gorm:"type:varchar(64)" json:"device_id,omitempty"`

	Status             AttendanceStatus `gorm:"type:varchar(16);not null;default:'ON_TIME'" json:"status"`
	LateMin            int              `gorm:"not null;default:0" json:"late_min"`
	EarlyLeaveMin      int              `gorm:"not null;default:0" json:"early_leave_min"`
	WorkMinutes        int              `gorm:"not null;default:0" json:"work_minutes"`
	PenaltyTier        string           `gorm:"type:varchar(32);not null;default:'NONE'" json:"penalty_tier"`
	IsHoliday          bool             `gorm:"not null;default:false" json:"is_holiday"`
	OvertimeMin        int              `gorm:"not null;default:0" json:"overtime_min"`
	OvertimeMultiplier float64          `gorm:"type:decimal(3,1);not null;default:1.0" json:"overtime_multiplier"`

	Method     AttendanceMethod `gorm:"type:varchar(8);not null;default:'AUTO'" json:"method"`
	ApprovedBy *int64           `json:"approved_by,omitempty"`
	ApprovedAt *time.Time       `gorm:"type:timestamptz" json:"approved_at,omitempty"`
}

// TableName 指定表名
func (Attendance) TableName() string {
	return "attendances"
}
