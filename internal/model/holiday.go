package model

import "time"

// Holiday 节假日模型，加班按倍率计薪
type Holiday struct {
	BaseModel
	Date               time.Time `gorm:"type:date;not null;uniqueIndex" json:"date"`
	Name               string    `gorm:"type:varchar(128);not null" json:"name"`
	Type               string    `gorm:"type:varchar(32);not null;default:'national'" json:"type"`
	OvertimeMultiplier float64   `gorm:"type:decimal(3,1);not null;default:2.0" json:"overtime_multiplier"`
}

// TableName 指定表名
func (Holiday) TableName() string {
	return "holidays"
}

// LatePenaltyTier 迟到惩罚档位，按 [MinLateMin, MaxLateMin] 区间匹配，
// MaxLateMin 为空表示上不封顶
type LatePenaltyTier struct {
	BaseModel
	Code         string  `gorm:"uniqueIndex;type:varchar(32);not null" json:"code"`
	Name         string  `gorm:"type:varchar(128);not null" json:"name"`
	MinLateMin   int     `gorm:"not null" json:"min_late_min"`
	MaxLateMin   *int    `json:"max_late_min,omitempty"`
	PenaltyType  string  `gorm:"type:varchar(32);not null" json:"penalty_type"`
	DeductionPct float64 `gorm:"type:decimal(5,2);not null;default:0" json:"deduction_pct"`
}

// TableName 指定表名
func (LatePenaltyTier) TableName() string {
	return "late_penalty_tiers"
}

// Matches 判断迟到分钟数是否落在档位区间内
func (t *LatePenaltyTier) Matches(lateMinutes int) bool {
	if lateMinutes < t.MinLateMin {
		return false
	}
	if t.MaxLateMin != nil && lateMinutes > *t.MaxLateMin {
		return false
	}
	return true
}
