package service

import (
	"sync"
	"time"

	"OnDuty/config"
	"OnDuty/internal/model"
	"OnDuty/utils"
)

var (
	statusCalculator *StatusCalculator
	statusOnce       sync.Once
)

// Status 返回状态计算器单例
func Status() *StatusCalculator {
	statusOnce.Do(func() {
		statusCalculator = NewStatusCalculator(StatusConfig{
			WeekendOvertimeEnabled: config.Cfg.WeekendOvertimeEnabled,
			SaturdayMultiplier:     config.Cfg.SaturdayMultiplier,
			SundayMultiplier:       config.Cfg.SundayMultiplier,
		})
	})
	return statusCalculator
}

// StatusConfig 状态计算配置
type StatusConfig struct {
	WeekendOvertimeEnabled bool
	SaturdayMultiplier     float64
	SundayMultiplier       float64
}

// StatusCalculator 考勤状态计算器，纯计算，所有输入由调用方查好传入
type StatusCalculator struct {
	cfg StatusConfig
}

func NewStatusCalculator(cfg StatusConfig) *StatusCalculator {
	return &StatusCalculator{cfg: cfg}
}

// DetermineCheckType 判定打卡方向。当天没有记录时是上班卡，
// 否则翻转最近一条记录的方向
func (c *StatusCalculator) DetermineCheckType(lastToday *model.Attendance) model.CheckType {
	if lastToday == nil {
		return model.CheckTypeIn
	}
	return lastToday.CheckType.Flip()
}

// StatusResult 状态计算结果
type StatusResult struct {
	Status        model.AttendanceStatus
	LateMin       int
	EarlyLeaveMin int
	PenaltyTier   string
}

// CalculateStatus 根据班次计算打卡状态。
// 没有班次时无法评估迟到，默认 ON_TIME。
// 上班卡：本地时间超过宽限截止（班次开始 + 宽限分钟，边界含）记 LATE，
// 迟到分钟数从班次开始算起（向下取整），再匹配惩罚档位。
// 下班卡：早于班次结束且班次不允许提前下班时记 EARLY。
func (c *StatusCalculator) CalculateStatus(
	checkType model.CheckType,
	scanTime time.Time,
	shift *model.Shift,
	timezone string,
	tiers []model.LatePenaltyTier,
) StatusResult {
	result := StatusResult{
		Status:      model.AttendanceStatusOnTime,
		PenaltyTier: model.PenaltyTierNone,
	}

	if shift == nil {
		return result
	}

	local := scanTime.In(loadTimezone(timezone))

	if checkType == model.CheckTypeIn {
		shiftStart, err := utils.ParseTime(shift.StartTime, local)
		if err != nil {
			return result
		}
		graceEnd := shiftStart.Add(time.Duration(shift.LateAfterMin) * time.Minute)

		if local.After(graceEnd) {
			result.Status = model.AttendanceStatusLate
			result.LateMin = int(local.Sub(shiftStart).Minutes())
			result.PenaltyTier = PickPenaltyTier(tiers, result.LateMin)
		}
		return result
	}

	// 下班卡
	shiftEnd, err := utils.ParseTime(shift.EndTime, local)
	if err != nil {
		return result
	}
	if local.Before(shiftEnd) && !shift.AllowCheckoutBeforeEnd {
		result.Status = model.AttendanceStatusEarly
		result.EarlyLeaveMin = int(shiftEnd.Sub(local).Minutes())
	}
	return result
}

// PickPenaltyTier 选择匹配迟到分钟数的档位，多个匹配时取 MinLateMin 最大的
func PickPenaltyTier(tiers []model.LatePenaltyTier, lateMinutes int) string {
	picked := model.PenaltyTierNone
	best := -1
	for i := range tiers {
		t := &tiers[i]
		if t.Matches(lateMinutes) && t.MinLateMin > best {
			best = t.MinLateMin
			picked = t.PenaltyType
		}
	}
	return picked
}

// WorkMinutes 计算本次下班卡与当天最近一次上班卡之间的分钟数，
// 没有配对的上班卡时为 0
func (c *StatusCalculator) WorkMinutes(checkIn *model.Attendance, scanTime time.Time) int {
	if checkIn == nil {
		return 0
	}
	minutes := int(scanTime.Sub(checkIn.ScanTime).Minutes())
	if minutes < 0 {
		return 0
	}
	return minutes
}

// OvertimeMinutes 超出班次预期时长的分钟数
func (c *StatusCalculator) OvertimeMinutes(workMinutes int, shift *model.Shift) int {
	if shift == nil {
		return 0
	}
	overtime := workMinutes - shift.ExpectedMinutes()
	if overtime < 0 {
		return 0
	}
	return overtime
}

// OvertimeMultiplier 加班倍率：节假日取节假日倍率，
// 否则启用周末加班时周六/周日按配置倍率，平日 1.0。
// 返回值第二项表示当天是否节假日
func (c *StatusCalculator) OvertimeMultiplier(date time.Time, holiday *model.Holiday) (float64, bool) {
	if holiday != nil {
		return holiday.OvertimeMultiplier, true
	}
	if c.cfg.WeekendOvertimeEnabled {
		switch date.Weekday() {
		case time.Saturday:
			return c.cfg.SaturdayMultiplier, false
		case time.Sunday:
			return c.cfg.SundayMultiplier, false
		}
	}
	return 1.0, false
}

func loadTimezone(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
