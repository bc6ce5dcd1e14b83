package schedule

// 缺勤扫描：每天收班后执行一次，把有排班但全天无打卡记录的员工标记为 ABSENT

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"OnDuty/internal/cache"
	"OnDuty/internal/model"
	"OnDuty/internal/queue"
	"OnDuty/internal/service"
	"OnDuty/pkg/logger"
	"OnDuty/pkg/metrics"
	"OnDuty/pkg/snowflake"
	"OnDuty/storage/database"
)

var (
	sweeperOnce sync.Once
	sweeperInst *AbsenceSweeper
)

type AbsenceSweeper struct {
	logger        *zap.Logger
	jobRunning    bool
	jobMu         sync.Mutex
	lastSweepTime time.Time
}

func GetSweeper() *AbsenceSweeper {
	sweeperOnce.Do(func() {
		sweeperInst = &AbsenceSweeper{
			logger: logger.Logger,
		}
	})
	return sweeperInst
}

// Sweep 扫描指定日期的缺勤员工并落库，返回标记数量。
// 进程内 running 标记加 Redis 排他锁，多实例部署下同一天也只扫一次
func (s *AbsenceSweeper) Sweep(ctx context.Context, date time.Time) (int, error) {
	s.jobMu.Lock()
	if s.jobRunning {
		s.jobMu.Unlock()
		s.logger.Info("Absence sweep already running, skipping")
		return 0, nil
	}
	s.jobRunning = true
	s.jobMu.Unlock()

	defer func() {
		s.jobMu.Lock()
		s.jobRunning = false
		s.jobMu.Unlock()
	}()

	day := date.Format("2006-01-02")

	acquired, err := cache.TrySweepLock(ctx, day)
	if err != nil {
		return 0, fmt.Errorf("failed to acquire sweep lock: %w", err)
	}
	if !acquired {
		s.logger.Info("Absence sweep already executed by another instance",
			zap.String("date", day),
		)
		return 0, nil
	}

	startTime := time.Now()
	s.lastSweepTime = startTime
	s.logger.Info("Starting absence sweep", zap.String("date", day))

	batchID, err := snowflake.NextID()
	if err != nil {
		s.releaseLock(ctx, day)
		return 0, fmt.Errorf("failed to generate batch ID: %w", err)
	}
	batch := fmt.Sprintf("sweep_%d", batchID)

	userIDs, err := service.Schedule().UsersWithActiveSchedule(ctx, date)
	if err != nil {
		// 没扫成功就释放锁，当天还能重试
		s.releaseLock(ctx, day)
		return 0, err
	}
	if len(userIDs) == 0 {
		s.logger.Info("No scheduled users to check", zap.String("date", day))
		return 0, nil
	}

	marked := 0
	for _, userID := range userIDs {
		created, err := s.markIfAbsent(ctx, userID, date, batch)
		if err != nil {
			s.logger.Error("Failed to mark user absent",
				zap.Int64("user_id", userID),
				zap.String("date", day),
				zap.Error(err),
			)
			continue
		}
		if created {
			marked++
		}
	}

	metrics.RecordAbsentMarked(ctx, int64(marked))
	s.logger.Info("Absence sweep finished",
		zap.String("date", day),
		zap.Int("checked", len(userIDs)),
		zap.Int("marked", marked),
		zap.Duration("elapsed", time.Since(startTime)),
	)
	return marked, nil
}

func (s *AbsenceSweeper) releaseLock(ctx context.Context, day string) {
	if err := cache.UnlockSweep(ctx, day); err != nil {
		s.logger.Warn("Failed to release sweep lock",
			zap.String("date", day),
			zap.Error(err),
		)
	}
}

// markIfAbsent 单用户事务：当天没有任何打卡记录时写入 ABSENT 事件和审计日志
func (s *AbsenceSweeper) markIfAbsent(ctx context.Context, userID int64, date time.Time, batch string) (bool, error) {
	day := date.Format("2006-01-02")
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var shiftCode string
	created := false

	err := database.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Attendance{}).
			Where("user_id = ? AND scan_time >= ? AND scan_time < ?", userID, dayStart, dayEnd).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count attendance: %w", err)
		}
		if count > 0 {
			return nil
		}

		var user model.User
		if err := tx.First(&user, userID).Error; err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}
		if user.Status != model.UserStatusActive {
			return nil
		}

		var schedules []model.UserSchedule
		if err := tx.Preload("Shift").
			Where("user_id = ?", userID).
			Where("start_date <= ?", day).
			Where("end_date IS NULL OR end_date >= ?", day).
			Find(&schedules).Error; err != nil {
			return fmt.Errorf("failed to load schedules: %w", err)
		}
		schedule := service.PickSchedule(schedules)
		if schedule != nil && schedule.Shift != nil {
			shiftCode = schedule.Shift.Code
		}

		event := &model.Attendance{
			UserID:      userID,
			LocationID:  user.DefaultLocationID,
			ScanTime:    dayStart,
			CheckType:   model.CheckTypeIn,
			Status:      model.AttendanceStatusAbsent,
			PenaltyTier: "ABSENT",
			Method:      model.AttendanceMethodSystem,
		}
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("failed to create absent event: %w", err)
		}

		payload := model.JSONB{"date": day, "batch_id": batch}
		if schedule != nil {
			payload["schedule_id"] = schedule.ID
			payload["shift_code"] = shiftCode
		}
		auditLog := &model.AttendanceLog{
			UserID:       userID,
			AttendanceID: &event.ID,
			Action:       model.AuditActionSystemAbsent,
			Reason:       "Automatically marked absent by system",
			Payload:      payload,
		}
		if err := tx.Create(auditLog).Error; err != nil {
			return fmt.Errorf("failed to create audit log: %w", err)
		}

		created = true
		return nil
	})
	if err != nil || !created {
		return false, err
	}

	// 通知走消息队列，投递失败不回滚标记
	if err := queue.PublishAbsentMarked(model.AbsentMarkedMessage{
		BatchID:   batch,
		UserID:    userID,
		Date:      day,
		ShiftCode: shiftCode,
		MarkedAt:  time.Now().Format(time.RFC3339),
	}); err != nil {
		s.logger.Warn("Failed to publish absent marked event",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
	return true, nil
}
