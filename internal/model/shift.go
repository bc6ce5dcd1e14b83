package model

import "time"

// Shift 班次模型，StartTime/EndTime 为当天的时刻（HH:MM:SS），EndTime 早于
// StartTime 表示跨夜班
type Shift struct {
	BaseModel
	Code                   string `gorm:"uniqueIndex;type:varchar(32);not null" json:"code"`
	Name                   string `gorm:"type:varchar(128);not null" json:"name"`
	StartTime              string `gorm:"type:time;not null" json:"start_time"` // "09:00:00"
	EndTime                string `gorm:"type:time;not null" json:"end_time"`   // "17:00:00"
	LateAfterMin           int    `gorm:"not null;default:0" json:"late_after_min"`
	EarlyCheckoutMin       int    `gorm:"not null;default:0" json:"early_checkout_min"`
	AllowCheckoutBeforeEnd bool   `gorm:"not null;default:false" json:"allow_checkout_before_end"`
	IsActive               bool   `gorm:"not null;default:true" json:"is_active"`
}

// TableName 指定表名
func (Shift) TableName() string {
	return "shifts"
}

// ExpectedMinutes 班次的预期工作分钟数，跨夜班把结束时间加一天再求差
func (s *Shift) ExpectedMinutes() int {
	start, err := time.Parse("15:04:05", s.StartTime)
	if err != nil {
		return 0
	}
	end, err := time.Parse("15:04:05", s.EndTime)
	if err != nil {
		return 0
	}

	if end.Before(start) {
		end = end.Add(24 * time.Hour)
	}

	return int(end.Sub(start).Minutes())
}

// UserSchedule 员工排班，半开日期区间 [StartDate, EndDate]，EndDate 为空表示长期有效
type UserSchedule struct {
	BaseModel
	UserID    int64      `gorm:"not null;index:idx_user_schedules_user_date" json:"user_id"`
	ShiftID   int64      `gorm:"not null" json:"shift_id"`
	StartDate time.Time  `gorm:"type:date;not null;index:idx_user_schedules_user_date" json:"start_date"`
	EndDate   *time.Time `gorm:"type:date" json:"end_date,omitempty"`

	Shift *Shift `gorm:"foreignKey:ShiftID" json:"shift,omitempty"`
}

// TableName 指定表名
func (UserSchedule) TableName() string {
	return "user_schedules"
}

// ContainsDate 判断日期是否落在排班区间内，只比较年月日
func (s *UserSchedule) ContainsDate(date time.Time) bool {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	start := time.Date(s.StartDate.Year(), s.StartDate.Month(), s.StartDate.Day(), 0, 0, 0, 0, time.UTC)
	if start.After(d) {
		return false
	}
	if s.EndDate != nil {
		end := time.Date(s.EndDate.Year(), s.EndDate.Month(), s.EndDate.Day(), 0, 0, 0, 0, time.UTC)
		if end.Before(d) {
			return false
		}
	}
	return true
}
