package model

// UserStatus 用户状态枚举
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"    // 正常在职
	UserStatusSuspended UserStatus = "suspended" // 停用
)

// User 员工模型
type User struct {
	BaseModel
	PublicID     int64      `gorm:"uniqueIndex;not null" json:"public_id"`
	EmployeeID   string     `gorm:"uniqueIndex;type:varchar(32);not null" json:"employee_id"`
	Name         string     `gorm:"type:varchar(128);not null" json:"name"`
	Email        string     `gorm:"uniqueIndex;type:varchar(128);not null" json:"email"`
	PasswordHash string     `gorm:"type:varchar(128);not null" json:"-"`
	Status       UserStatus `gorm:"type:varchar(16);not null;default:'active';index:idx_users_status" json:"status"`
	IsAdmin      bool       `gorm:"not null;default:false" json:"is_admin"`

	// 默认打卡地点，缺勤标记时使用
	DefaultLocationID *int64 `gorm:"index" json:"default_location_id,omitempty"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
