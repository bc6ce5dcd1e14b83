package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"OnDuty/internal/model"
	"OnDuty/storage/database"
)

var (
	scheduleService *ScheduleService
	scheduleOnce    sync.Once
)

// Schedule 返回排班服务单例
func Schedule() *ScheduleService {
	scheduleOnce.Do(func() {
		scheduleService = &ScheduleService{}
	})
	return scheduleService
}

type ScheduleService struct{}

// ActiveScheduleFor 查询用户在指定日期的有效排班（含班次），没有则返回 nil
func (s *ScheduleService) ActiveScheduleFor(ctx context.Context, userID int64, date time.Time) (*model.UserSchedule, error) {
	day := date.Format("2006-01-02")

	var schedules []model.UserSchedule
	err := database.DB().WithContext(ctx).
		Preload("Shift").
		Where("user_id = ?", userID).
		Where("start_date <= ?", day).
		Where("end_date IS NULL OR end_date >= ?", day).
		Find(&schedules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query user schedules: %w", err)
	}

	picked := PickSchedule(schedules)
	if picked == nil || picked.Shift == nil || !picked.Shift.IsActive {
		return nil, nil
	}
	return picked, nil
}

// PickSchedule 从多条重叠排班中确定性地选出一条：
// StartDate 最晚的优先，仍并列时取 ID 最大的
func PickSchedule(schedules []model.UserSchedule) *model.UserSchedule {
	var picked *model.UserSchedule
	for i := range schedules {
		candidate := &schedules[i]
		if picked == nil {
			picked = candidate
			continue
		}
		if candidate.StartDate.After(picked.StartDate) {
			picked = candidate
			continue
		}
		if candidate.StartDate.Equal(picked.StartDate) && candidate.ID > picked.ID {
			picked = candidate
		}
	}
	return picked
}

// UsersWithActiveSchedule 查询指定日期有排班的全部用户 ID，缺勤扫描用
func (s *ScheduleService) UsersWithActiveSchedule(ctx context.Context, date time.Time) ([]int64, error) {
	day := date.Format("2006-01-02")

	var userIDs []int64
	err := database.DB().WithContext(ctx).
		Model(&model.UserSchedule{}).
		Distinct("user_schedules.user_id").
		Joins("JOIN shifts ON shifts.id = user_schedules.shift_id AND shifts.is_active").
		Joins("JOIN users ON users.id = user_schedules.user_id AND users.status = ?", model.UserStatusActive).
		Where("user_schedules.start_date <= ?", day).
		Where("user_schedules.end_date IS NULL OR user_schedules.end_date >= ?", day).
		Pluck("user_schedules.user_id", &userIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query scheduled users: %w", err)
	}
	return userIDs, nil
}

// scheduleForUpdate 在事务内重查排班，缺勤扫描的每用户事务使用
func scheduleForUpdate(tx *gorm.DB, userID int64, date time.Time) (*model.UserSchedule, error) {
	day := date.Format("2006-01-02")

	var schedules []model.UserSchedule
	err := tx.Preload("Shift").
		Where("user_id = ?", userID).
		Where("start_date <= ?", day).
		Where("end_date IS NULL OR end_date >= ?", day).
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return PickSchedule(schedules), nil
}
