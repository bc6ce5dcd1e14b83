package model

// AuditAction 考勤审计动作枚举
type AuditAction string

const (
	AuditActionAutoCheckIn   AuditAction = "AUTO_CHECKIN"
	AuditActionAutoCheckOut  AuditAction = "AUTO_CHECKOUT"
	AuditActionManualRequest AuditAction = "MANUAL_REQUEST"
	AuditActionManualApprove AuditAction = "MANUAL_APPROVE"
	AuditActionManualReject  AuditAction = "MANUAL_REJECT"
	AuditActionSystemAbsent  AuditAction = "SYSTEM_ABSENT"
)

// AttendanceLog 考勤审计日志，所有影响考勤状态的动作都会记录一条，
// 与业务写入在同一事务内落库
type AttendanceLog struct {
	BaseModel
	UserID       int64       `gorm:"not null;index:idx_attendance_logs_user" json:"user_id"`
	AttendanceID *int64      `gorm:"index:idx_attendance_logs_attendance" json:"attendance_id,omitempty"`
	RequestID    *int64      `gorm:"index:idx_attendance_logs_request" json:"request_id,omitempty"`
	ActorID      *int64      `json:"actor_id,omitempty"` // 为空表示系统动作
	Action       AuditAction `gorm:"type:varchar(32);not null" json:"action"`
	Reason       string      `gorm:"type:varchar(255)" json:"reason,omitempty"`
	Payload      JSONB       `gorm:"type:jsonb" json:"payload,omitempty"`
}

// TableName 指定表名
func (AttendanceLog) TableName() string {
	return "attendance_logs"
}
