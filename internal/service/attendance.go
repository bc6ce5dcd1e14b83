package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"OnDuty/config"
	"OnDuty/internal/barcode"
	"OnDuty/internal/cache"
	"OnDuty/internal/geo"
	"OnDuty/internal/model"
	"OnDuty/internal/model/dto"
	"OnDuty/pkg/errors"
	"OnDuty/pkg/logger"
	"OnDuty/pkg/metrics"
)

var (
	attendanceService *AttendanceService
	attendanceOnce    sync.Once
)

// Attendance 返回考勤服务单例
func Attendance() *AttendanceService {
	attendanceOnce.Do(func() {
		attendanceService = &AttendanceService{
			store: newGormStore(),
			lock:  redisScanLock{},
			barcode: barcode.NewService(barcode.Config{
				RotationSeconds: config.Cfg.BarcodeRotationSeconds,
				SecretKey:       config.Cfg.BarcodeSecretKey,
				Tolerance:       config.Cfg.BarcodeSlotTolerance,
			}),
			geo:  geo.NewValidator(geo.Config{MaxAccuracyMeters: config.Cfg.GPSMaxAccuracyMeters}),
			calc: Status(),
			now:  time.Now,
		}
	})
	return attendanceService
}

// AttendanceStore 考勤服务需要的存储能力，事务写入必须保证事件和审计日志同生共死
type AttendanceStore interface {
	ActiveLocationByCode(ctx context.Context, code string) (*model.Location, error)
	LastEventOn(ctx context.Context, userID int64, date time.Time) (*model.Attendance, error)
	LastCheckInOn(ctx context.Context, userID int64, date time.Time) (*model.Attendance, error)
	ActiveSchedules(ctx context.Context, userID int64, date time.Time) ([]model.UserSchedule, error)
	HolidayOn(ctx context.Context, date time.Time) (*model.Holiday, error)
	PenaltyTiers(ctx context.Context) ([]model.LatePenaltyTier, error)
	CreateEventWithLog(ctx context.Context, event *model.Attendance, auditLog *model.AttendanceLog) error
}

// ScanLock 同一用户同一天扫码的串行化原语
type ScanLock interface {
	TryLock(ctx context.Context, userID int64, date string) (bool, error)
	Unlock(ctx context.Context, userID int64, date string) error
}

type redisScanLock struct{}

func (redisScanLock) TryLock(ctx context.Context, userID int64, date string) (bool, error) {
	return cache.TryScanLock(ctx, userID, date)
}

func (redisScanLock) Unlock(ctx context.Context, userID int64, date string) error {
	return cache.UnlockScan(ctx, userID, date)
}

type AttendanceService struct {
	store   AttendanceStore
	lock    ScanLock
	barcode *barcode.Service
	geo     *geo.Validator
	calc    *StatusCalculator
	now     func() time.Time
}

// ScanRejection 扫码拒绝，携带诊断字段（如距离与围栏半径）供客户端展示
type ScanRejection struct {
	Err         error
	Diagnostics map[string]interface{}
}

func (r *ScanRejection) Error() string {
	return r.Err.Error()
}

func (r *ScanRejection) Unwrap() error {
	return r.Err
}

func reject(err error) *ScanRejection {
	return &ScanRejection{Err: err}
}

// ProcessScan 处理一次扫码打卡。
// 校验顺序：坐标 → 条码 → 地点 → 围栏 → 方向判定 → 状态计算 → 事务落库。
// 任一校验失败都在写库前短路返回，不会产生半成品记录。
func (s *AttendanceService) ProcessScan(
	ctx context.Context,
	user *model.User,
	req *dto.ScanRequest,
	ipAddress string,
) (*dto.ScanResponse, *ScanRejection) {
	start := time.Now()

	resp, rejection := s.processScan(ctx, user, req, ipAddress)
	if rejection != nil {
		if def, ok := rejection.Err.(errors.Definition); ok {
			metrics.RecordScanRejected(ctx, def.Code)
		}
		return nil, rejection
	}

	metrics.RecordScanAccepted(ctx, resp.CheckType, resp.Status, time.Since(start).Seconds())
	return resp, nil
}

func (s *AttendanceService) processScan(
	ctx context.Context,
	user *model.User,
	req *dto.ScanRequest,
	ipAddress string,
) (*dto.ScanResponse, *ScanRejection) {
	lat, lng := *req.GPSLat, *req.GPSLng

	if err := s.geo.ValidateCoordinates(lat, lng); err != nil {
		return nil, reject(err)
	}

	claims, err := s.barcode.Validate(req.Barcode)
	if err != nil {
		return nil, reject(err)
	}

	location, err := s.store.ActiveLocationByCode(ctx, claims.LocationCode)
	if err != nil {
		return nil, s.storageFailure("load location", err)
	}
	if location == nil {
		return nil, reject(errors.LocationUnknownOrInactive)
	}

	geoResult, err := s.geo.ValidateAgainstLocation(lat, lng, req.GPSAccuracyM, location)
	if err != nil {
		rejection := reject(err)
		if err == errors.OutsideAllowedRadius {
			rejection.Diagnostics = map[string]interface{}{
				"distance_m":       geoResult.DistanceM,
				"allowed_radius_m": location.AllowedRadiusM,
			}
		}
		return nil, rejection
	}

	now := s.now()
	localNow := now.In(locationTimezone(location))
	dateKey := localNow.Format("2006-01-02")

	// 串行化同一用户同一天的方向判定和写入，
	// 防止并发扫码都读到同一条最近记录而算出相同方向
	acquired, err := s.lock.TryLock(ctx, user.ID, dateKey)
	if err != nil {
		return nil, s.storageFailure("acquire scan lock", err)
	}
	if !acquired {
		return nil, reject(errors.ScanInProgress)
	}
	defer func() {
		if err := s.lock.Unlock(ctx, user.ID, dateKey); err != nil {
			logger.Logger.Warn("Failed to release scan lock",
				zap.Int64("user_id", user.ID),
				zap.String("date", dateKey),
				zap.Error(err),
			)
		}
	}()

	lastToday, err := s.store.LastEventOn(ctx, user.ID, localNow)
	if err != nil {
		return nil, s.storageFailure("load last event", err)
	}
	checkType := s.calc.DetermineCheckType(lastToday)

	schedule, err := s.activeSchedule(ctx, user.ID, localNow)
	if err != nil {
		return nil, s.storageFailure("load schedule", err)
	}
	var shift *model.Shift
	if schedule != nil {
		shift = schedule.Shift
	}

	tiers, err := s.store.PenaltyTiers(ctx)
	if err != nil {
		return nil, s.storageFailure("load penalty tiers", err)
	}
	statusResult := s.calc.CalculateStatus(checkType, now, shift, location.Timezone, tiers)

	holiday, err := s.store.HolidayOn(ctx, localNow)
	if err != nil {
		return nil, s.storageFailure("load holiday", err)
	}
	multiplier, isHoliday := s.calc.OvertimeMultiplier(localNow, holiday)

	workMinutes, overtimeMin := 0, 0
	if checkType == model.CheckTypeOut {
		checkIn, err := s.store.LastCheckInOn(ctx, user.ID, localNow)
		if err != nil {
			return nil, s.storageFailure("load paired check-in", err)
		}
		workMinutes = s.calc.WorkMinutes(checkIn, now)
		overtimeMin = s.calc.OvertimeMinutes(workMinutes, shift)
	}

	event := &model.Attendance{
		UserID:             user.ID,
		LocationID:         &location.ID,
		ScanTime:           now,
		CheckType:          checkType,
		GPSLat:             &lat,
		GPSLng:             &lng,
		GPSAccuracyM:       req.GPSAccuracyM,
		DistanceM:          &geoResult.DistanceM,
		TimeSlot:           fmt.Sprintf("%d", claims.Slot),
		IPAddress:          ipAddress,
		DeviceID:           req.DeviceID,
		Status:             statusResult.Status,
		LateMin:            statusResult.LateMin,
		EarlyLeaveMin:      statusResult.EarlyLeaveMin,
		WorkMinutes:        workMinutes,
		PenaltyTier:        statusResult.PenaltyTier,
		IsHoliday:          isHoliday,
		OvertimeMin:        overtimeMin,
		OvertimeMultiplier: multiplier,
		Method:             model.AttendanceMethodAuto,
	}

	action := model.AuditActionAutoCheckIn
	if checkType == model.CheckTypeOut {
		action = model.AuditActionAutoCheckOut
	}
	auditLog := &model.AttendanceLog{
		UserID:  user.ID,
		ActorID: &user.ID,
		Action:  action,
		Payload: model.JSONB{
			"location_code":  location.Code,
			"distance_m":     geoResult.DistanceM,
			"gps_accuracy_m": req.GPSAccuracyM,
		},
	}

	if err := s.store.CreateEventWithLog(ctx, event, auditLog); err != nil {
		return nil, s.storageFailure("persist attendance event", err)
	}

	logger.Logger.Info("Attendance scan accepted",
		zap.Int64("user_id", user.ID),
		zap.String("check_type", string(checkType)),
		zap.String("status", string(statusResult.Status)),
		zap.String("location_code", location.Code),
	)

	shiftCode := ""
	if shift != nil {
		shiftCode = shift.Code
	}
	return &dto.ScanResponse{
		AttendanceID: fmt.Sprintf("%d", event.ID),
		CheckType:    string(checkType),
		Status:       string(statusResult.Status),
		ScanTime:     now,
		LateMinutes:  statusResult.LateMin,
		PenaltyTier:  statusResult.PenaltyTier,
		WorkMinutes:  workMinutes,
		DistanceM:    &geoResult.DistanceM,
		LocationName: location.Name,
		ShiftCode:    shiftCode,
	}, nil
}

// activeSchedule 取指定日期的有效排班，重叠时 StartDate 最晚且 ID 最大的胜出
func (s *AttendanceService) activeSchedule(ctx context.Context, userID int64, date time.Time) (*model.UserSchedule, error) {
	schedules, err := s.store.ActiveSchedules(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	picked := PickSchedule(schedules)
	if picked == nil || picked.Shift == nil || !picked.Shift.IsActive {
		return nil, nil
	}
	return picked, nil
}

func (s *AttendanceService) storageFailure(op string, err error) *ScanRejection {
	logger.Logger.Error("Scan pipeline storage failure",
		zap.String("op", op),
		zap.Error(err),
	)
	return &ScanRejection{Err: fmt.Errorf("storage failure during %s: %w", op, err)}
}

func locationTimezone(loc *model.Location) *time.Location {
	return loadTimezone(loc.Timezone)
}
