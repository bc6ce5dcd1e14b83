package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"OnDuty/internal/model"
	"OnDuty/storage/database"
	"OnDuty/utils"
)

// gormStore AttendanceStore 的数据库实现
type gormStore struct{}

func newGormStore() *gormStore {
	return &gormStore{}
}

func (s *gormStore) ActiveLocationByCode(ctx context.Context, code string) (*model.Location, error) {
	var location model.Location
	err := database.DB().WithContext(ctx).
		Where("code = ? AND is_active", code).
		First(&location).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query location: %w", err)
	}
	return &location, nil
}

// dayRange 当天的 [零点, 次日零点) 区间，按传入时间自身的时区计算
func dayRange(date time.Time) (time.Time, time.Time) {
	start := utils.DateOf(date)
	return start, start.Add(24 * time.Hour)
}

func (s *gormStore) LastEventOn(ctx context.Context, userID int64, date time.Time) (*model.Attendance, error) {
	start, end := dayRange(date)

	var event model.Attendance
	err := database.DB().WithContext(ctx).
		Where("user_id = ? AND scan_time >= ? AND scan_time < ?", userID, start, end).
		Order("scan_time DESC").
		First(&event).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last attendance: %w", err)
	}
	return &event, nil
}

func (s *gormStore) LastCheckInOn(ctx context.Context, userID int64, date time.Time) (*model.Attendance, error) {
	start, end := dayRange(date)

	var event model.Attendance
	err := database.DB().WithContext(ctx).
		Where("user_id = ? AND check_type = ? AND scan_time >= ? AND scan_time < ?",
			userID, model.CheckTypeIn, start, end).
		Order("scan_time DESC").
		First(&event).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query check-in: %w", err)
	}
	return &event, nil
}

func (s *gormStore) ActiveSchedules(ctx context.Context, userID int64, date time.Time) ([]model.UserSchedule, error) {
	day := date.Format("2006-01-02")

	var schedules []model.UserSchedule
	err := database.DB().WithContext(ctx).
		Preload("Shift").
		Where("user_id = ?", userID).
		Where("start_date <= ?", day).
		Where("end_date IS NULL OR end_date >= ?", day).
		Find(&schedules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	return schedules, nil
}

func (s *gormStore) HolidayOn(ctx context.Context, date time.Time) (*model.Holiday, error) {
	var holiday model.Holiday
	err := database.DB().WithContext(ctx).
		Where("date = ?", date.Format("2006-01-02")).
		First(&holiday).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query holiday: %w", err)
	}
	return &holiday, nil
}

func (s *gormStore) PenaltyTiers(ctx context.Context) ([]model.LatePenaltyTier, error) {
	var tiers []model.LatePenaltyTier
	err := database.DB().WithContext(ctx).
		Order("min_late_min ASC").
		Find(&tiers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query penalty tiers: %w", err)
	}
	return tiers, nil
}

// CreateEventWithLog 事务写入考勤事件和审计日志，两者同生共死
func (s *gormStore) CreateEventWithLog(ctx context.Context, event *model.Attendance, auditLog *model.AttendanceLog) error {
	return database.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("failed to create attendance event: %w", err)
		}

		auditLog.AttendanceID = &event.ID
		if err := tx.Create(auditLog).Error; err != nil {
			return fmt.Errorf("failed to create audit log: %w", err)
		}
		return nil
	})
}
