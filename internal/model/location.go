package model

// Location 打卡地点模型，一个地点对应一块轮换条码屏
type Location struct {
	BaseModel
	Code           string  `gorm:"uniqueIndex;type:varchar(32);not null" json:"code"`
	Name           string  `gorm:"type:varchar(128);not null" json:"name"`
	Latitude       float64 `gorm:"type:decimal(11,8);not null" json:"latitude"`
	Longitude      float64 `gorm:"type:decimal(11,8);not null" json:"longitude"`
	AllowedRadiusM float64 `gorm:"not null;default:100" json:"allowed_radius_m"`
	Timezone       string  `gorm:"type:varchar(64);not null;default:'Asia/Jakarta'" json:"timezone"`
	IsActive       bool    `gorm:"not null;default:true;index:idx_locations_active" json:"is_active"`
}

// TableName 指定表名
func (Location) TableName() string {
	return "locations"
}
