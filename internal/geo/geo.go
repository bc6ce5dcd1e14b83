package geo

import (
	"math"

	"OnDuty/internal/model"
	"OnDuty/pkg/errors"
)

// earthRadiusMeters 地球平均半径，Haversine 公式使用
const earthRadiusMeters = 6371000.0

// nullIslandEpsilon 判定 (0,0) 附近坐标的阈值，
// 定位失败的客户端常上报全零坐标
const nullIslandEpsilon = 0.0001

// Config 地理校验配置
type Config struct {
	MaxAccuracyMeters float64 // GPS 精度上限（米），超过则拒绝
}

// Validator 地理围栏校验器，纯计算，无外部依赖
type Validator struct {
	cfg Config
}

func NewValidator(cfg Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateCoordinates 校验坐标合法性。
// 纬度必须在 [-90, 90]，经度必须在 [-180, 180]，边界值合法；
// NaN、Inf 以及 (0,0) 附近的坐标视为非法。
func (v *Validator) ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return errors.InvalidCoordinates
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return errors.InvalidCoordinates
	}
	if math.Abs(lat) < nullIslandEpsilon && math.Abs(lng) < nullIslandEpsilon {
		return errors.InvalidCoordinates
	}
	return nil
}

// DistanceMeters 计算两点间大圆距离（米），Haversine 公式
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	rLat1 := lat1 * math.Pi / 180
	rLat2 := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// Result 围栏校验结果，DistanceM 为保留两位小数后的距离
type Result struct {
	DistanceM float64
}

// ValidateAgainstLocation 校验扫码坐标是否落在地点围栏内。
// 精度检查先于距离计算：精度不达标时不计算距离。
// 距离比较使用原始值，返回值四舍五入到两位小数仅用于上报。
func (v *Validator) ValidateAgainstLocation(lat, lng float64, accuracyM *float64, loc *model.Location) (Result, error) {
	if accuracyM != nil && *accuracyM > v.cfg.MaxAccuracyMeters {
		return Result{}, errors.GPSAccuracyTooLow
	}

	distance := DistanceMeters(lat, lng, loc.Latitude, loc.Longitude)
	rounded := math.Round(distance*100) / 100

	if distance > loc.AllowedRadiusM {
		return Result{DistanceM: rounded}, errors.OutsideAllowedRadius
	}
	return Result{DistanceM: rounded}, nil
}
