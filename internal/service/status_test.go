package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"OnDuty/internal/model"
)

func testCalculator() *StatusCalculator {
	return NewStatusCalculator(StatusConfig{
		WeekendOvertimeEnabled: true,
		SaturdayMultiplier:     1.5,
		SundayMultiplier:       2.0,
	})
}

func dayShift() *model.Shift {
	return &model.Shift{
		Code:         "DAY",
		StartTime:    "09:00:00",
		EndTime:      "17:00:00",
		LateAfterMin: 15,
	}
}

func nightShift() *model.Shift {
	return &model.Shift{
		Code:      "NIGHT",
		StartTime: "22:00:00",
		EndTime:   "07:00:00",
	}
}

func attAt(checkType model.CheckType, at time.Time) *model.Attendance {
	return &model.Attendance{CheckType: checkType, ScanTime: at}
}

func TestDetermineCheckType(t *testing.T) {
	c := testCalculator()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	// 当天第一次扫码永远是上班卡，与时间无关
	assert.Equal(t, model.CheckTypeIn, c.DetermineCheckType(nil))

	// 之后每次翻转
	assert.Equal(t, model.CheckTypeOut, c.DetermineCheckType(attAt(model.CheckTypeIn, now)))
	assert.Equal(t, model.CheckTypeIn, c.DetermineCheckType(attAt(model.CheckTypeOut, now)))
}

func TestCalculateStatusCheckIn(t *testing.T) {
	c := testCalculator()
	shift := dayShift()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		scanTime    time.Time
		wantStatus  model.AttendanceStatus
		wantLateMin int
	}{
		{"well before grace end", day.Add(9 * time.Hour), model.AttendanceStatusOnTime, 0},
		{"exactly at grace end", day.Add(9*time.Hour + 15*time.Minute), model.AttendanceStatusOnTime, 0},
		// 迟到分钟数从班次开始算，不是从宽限截止算
		{"one second past grace end", day.Add(9*time.Hour + 15*time.Minute + time.Second), model.AttendanceStatusLate, 15},
		{"one hour past shift start", day.Add(10 * time.Hour), model.AttendanceStatusLate, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.CalculateStatus(model.CheckTypeIn, tt.scanTime, shift, "UTC", nil)
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, tt.wantLateMin, result.LateMin)
			assert.Equal(t, model.PenaltyTierNone, result.PenaltyTier)
			assert.Zero(t, result.EarlyLeaveMin)
		})
	}
}

func TestCalculateStatusNoShift(t *testing.T) {
	c := testCalculator()
	scan := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

	result := c.CalculateStatus(model.CheckTypeIn, scan, nil, "UTC", nil)
	assert.Equal(t, model.AttendanceStatusOnTime, result.Status)
	assert.Zero(t, result.LateMin)
	assert.Equal(t, model.PenaltyTierNone, result.PenaltyTier)
}

func TestCalculateStatusCheckOut(t *testing.T) {
	c := testCalculator()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	t.Run("early leave", func(t *testing.T) {
		result := c.CalculateStatus(model.CheckTypeOut, day.Add(16*time.Hour), dayShift(), "UTC", nil)
		assert.Equal(t, model.AttendanceStatusEarly, result.Status)
		assert.Equal(t, 60, result.EarlyLeaveMin)
	})

	t.Run("at shift end", func(t *testing.T) {
		result := c.CalculateStatus(model.CheckTypeOut, day.Add(17*time.Hour), dayShift(), "UTC", nil)
		assert.Equal(t, model.AttendanceStatusOnTime, result.Status)
		assert.Zero(t, result.EarlyLeaveMin)
	})

	t.Run("early checkout allowed by shift", func(t *testing.T) {
		shift := dayShift()
		shift.AllowCheckoutBeforeEnd = true
		result := c.CalculateStatus(model.CheckTypeOut, day.Add(16*time.Hour), shift, "UTC", nil)
		assert.Equal(t, model.AttendanceStatusOnTime, result.Status)
	})
}

func TestPickPenaltyTier(t *testing.T) {
	max30 := 30
	max60 := 60
	tiers := []model.LatePenaltyTier{
		{MinLateMin: 16, MaxLateMin: &max30, PenaltyType: "WARNING"},
		{MinLateMin: 31, MaxLateMin: &max60, PenaltyType: "HALF_DAY"},
		{MinLateMin: 61, PenaltyType: "FULL_DAY"},
	}

	assert.Equal(t, model.PenaltyTierNone, PickPenaltyTier(tiers, 10))
	assert.Equal(t, "WARNING", PickPenaltyTier(tiers, 16))
	assert.Equal(t, "WARNING", PickPenaltyTier(tiers, 30))
	assert.Equal(t, "HALF_DAY", PickPenaltyTier(tiers, 45))
	// 上不封顶的档位
	assert.Equal(t, "FULL_DAY", PickPenaltyTier(tiers, 240))
	// 没有档位时返回 NONE
	assert.Equal(t, model.PenaltyTierNone, PickPenaltyTier(nil, 240))
}

func TestWorkMinutes(t *testing.T) {
	c := testCalculator()

	t.Run("same day pair", func(t *testing.T) {
		in := attAt(model.CheckTypeIn, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
		out := time.Date(2026, 3, 2, 17, 30, 0, 0, time.UTC)
		assert.Equal(t, 510, c.WorkMinutes(in, out))
	})

	t.Run("overnight pair spans midnight", func(t *testing.T) {
		in := attAt(model.CheckTypeIn, time.Date(2026, 3, 2, 22, 0, 0, 0, time.UTC))
		out := time.Date(2026, 3, 3, 6, 30, 0, 0, time.UTC)
		assert.Equal(t, 510, c.WorkMinutes(in, out))
	})

	t.Run("no paired check-in", func(t *testing.T) {
		assert.Zero(t, c.WorkMinutes(nil, time.Now()))
	})
}

func TestOvertimeMinutes(t *testing.T) {
	c := testCalculator()

	// 日班 8 小时
	assert.Equal(t, 30, c.OvertimeMinutes(510, dayShift()))
	assert.Zero(t, c.OvertimeMinutes(480, dayShift()))
	assert.Zero(t, c.OvertimeMinutes(400, dayShift()))

	// 跨夜班预期 9 小时，结束时间加一天再求差
	assert.Equal(t, 540, nightShift().ExpectedMinutes())
	assert.Zero(t, c.OvertimeMinutes(510, nightShift()))
	assert.Equal(t, 60, c.OvertimeMinutes(600, nightShift()))
}

func TestOvertimeMultiplier(t *testing.T) {
	c := testCalculator()

	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	saturday := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)

	t.Run("weekday", func(t *testing.T) {
		multiplier, isHoliday := c.OvertimeMultiplier(monday, nil)
		assert.Equal(t, 1.0, multiplier)
		assert.False(t, isHoliday)
	})

	t.Run("weekend", func(t *testing.T) {
		multiplier, _ := c.OvertimeMultiplier(saturday, nil)
		assert.Equal(t, 1.5, multiplier)
		multiplier, _ = c.OvertimeMultiplier(sunday, nil)
		assert.Equal(t, 2.0, multiplier)
	})

	t.Run("holiday beats weekend", func(t *testing.T) {
		holiday := &model.Holiday{Name: "Labor Day", OvertimeMultiplier: 3.0}
		multiplier, isHoliday := c.OvertimeMultiplier(saturday, holiday)
		assert.Equal(t, 3.0, multiplier)
		assert.True(t, isHoliday)
	})

	t.Run("weekend disabled", func(t *testing.T) {
		plain := NewStatusCalculator(StatusConfig{})
		multiplier, _ := plain.OvertimeMultiplier(saturday, nil)
		assert.Equal(t, 1.0, multiplier)
	})
}
