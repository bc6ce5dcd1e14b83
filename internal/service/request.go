package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"OnDuty/internal/geo"
	"OnDuty/internal/model"
	"OnDuty/internal/model/dto"
	"OnDuty/internal/queue"
	"OnDuty/pkg/errors"
	"OnDuty/pkg/logger"
	"OnDuty/pkg/metrics"
	"OnDuty/storage/database"
)

var (
	requestService *RequestService
	requestOnce    sync.Once
)

// Request 返回补卡申请服务单例
func Request() *RequestService {
	requestOnce.Do(func() {
		requestService = &RequestService{}
	})
	return requestService
}

type RequestService struct{}

// Submit 提交补卡申请。申请数据由管理员审批后才会生成考勤记录
func (s *RequestService) Submit(ctx context.Context, user *model.User, req *dto.SubmitRequestRequest) (*dto.RequestSnapshot, error) {
	checkType := model.CheckType(req.CheckType)
	if checkType != model.CheckTypeIn && checkType != model.CheckTypeOut {
		return nil, errors.CheckTypeInvalid
	}

	requestTime, err := time.Parse(time.RFC3339, req.RequestTime)
	if err != nil {
		return nil, fmt.Errorf("invalid request_time: %w", err)
	}

	var location model.Location
	err = database.DB().WithContext(ctx).
		Where("code = ? AND is_active", req.LocationCode).
		First(&location).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.LocationUnknownOrInactive
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query location: %w", err)
	}

	// 坐标齐全时顺手算好与地点的距离，给审批人参考
	var distance *float64
	if req.GPSLat != nil && req.GPSLng != nil {
		d := geo.DistanceMeters(*req.GPSLat, *req.GPSLng, location.Latitude, location.Longitude)
		rounded := math.Round(d*100) / 100
		distance = &rounded
	}

	request := &model.AttendanceRequest{
		UserID:        user.ID,
		LocationID:    location.ID,
		RequestTime:   requestTime,
		CheckType:     checkType,
		GPSLat:        req.GPSLat,
		GPSLng:        req.GPSLng,
		GPSAccuracyM:  req.GPSAccuracyM,
		DistanceM:     distance,
		Reason:        req.Reason,
		PhotoPath:     req.PhotoPath,
		FailureReason: req.FailureReason,
		Status:        model.RequestStatusPending,
	}

	err = database.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(request).Error; err != nil {
			return fmt.Errorf("failed to create attendance request: %w", err)
		}

		auditLog := &model.AttendanceLog{
			UserID:    user.ID,
			RequestID: &request.ID,
			ActorID:   &user.ID,
			Action:    model.AuditActionManualRequest,
			Reason:    req.Reason,
		}
		if err := tx.Create(auditLog).Error; err != nil {
			return fmt.Errorf("failed to create audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 事件投递失败不影响申请本身
	if err := queue.PublishRequestSubmitted(model.RequestSubmittedMessage{
		RequestID:   request.ID,
		UserID:      user.ID,
		CheckType:   string(checkType),
		RequestTime: requestTime.Format(time.RFC3339),
		Reason:      req.Reason,
	}); err != nil {
		logger.Logger.Warn("Failed to publish request submitted event",
			zap.Int64("request_id", request.ID),
			zap.Error(err),
		)
	}

	return requestSnapshot(request), nil
}

// Approve 审批通过补卡申请，同一事务内生成 method=MANUAL 的考勤记录和审计日志。
// 已审批过的申请返回 RequestAlreadyReviewed
func (s *RequestService) Approve(ctx context.Context, requestID int64, admin *model.User, adminNote string) (*model.Attendance, error) {
	var attendance *model.Attendance

	err := database.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request, err := lockRequest(tx, requestID)
		if err != nil {
			return err
		}
		if request.Status != model.RequestStatusPending {
			return errors.RequestAlreadyReviewed
		}

		now := time.Now()
		request.Status = model.RequestStatusApproved
		request.AdminNote = adminNote
		request.ReviewedBy = &admin.ID
		request.ReviewedAt = &now
		if err := tx.Save(request).Error; err != nil {
			return fmt.Errorf("failed to update request: %w", err)
		}

		attendance = &model.Attendance{
			UserID:       request.UserID,
			LocationID:   &request.LocationID,
			ScanTime:     request.RequestTime,
			CheckType:    request.CheckType,
			GPSLat:       request.GPSLat,
			GPSLng:       request.GPSLng,
			GPSAccuracyM: request.GPSAccuracyM,
			DistanceM:    request.DistanceM,
			// 人工审批默认按时
			Status:      model.AttendanceStatusOnTime,
			PenaltyTier: model.PenaltyTierNone,
			Method:      model.AttendanceMethodManual,
			ApprovedBy:  &admin.ID,
			ApprovedAt:  &now,
		}
		if err := tx.Create(attendance).Error; err != nil {
			return fmt.Errorf("failed to create attendance: %w", err)
		}

		auditLog := &model.AttendanceLog{
			UserID:       request.UserID,
			AttendanceID: &attendance.ID,
			RequestID:    &request.ID,
			ActorID:      &admin.ID,
			Action:       model.AuditActionManualApprove,
			Reason:       adminNote,
		}
		if err := tx.Create(auditLog).Error; err != nil {
			return fmt.Errorf("failed to create audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordRequestReview(ctx, string(model.RequestStatusApproved))
	s.publishReviewed(requestID, attendance.UserID, model.RequestStatusApproved, admin.ID, adminNote)
	return attendance, nil
}

// Reject 驳回补卡申请
func (s *RequestService) Reject(ctx context.Context, requestID int64, admin *model.User, adminNote string) (*dto.RequestSnapshot, error) {
	var request *model.AttendanceRequest

	err := database.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		request, err = lockRequest(tx, requestID)
		if err != nil {
			return err
		}
		if request.Status != model.RequestStatusPending {
			return errors.RequestAlreadyReviewed
		}

		now := time.Now()
		request.Status = model.RequestStatusRejected
		request.AdminNote = adminNote
		request.ReviewedBy = &admin.ID
		request.ReviewedAt = &now
		if err := tx.Save(request).Error; err != nil {
			return fmt.Errorf("failed to update request: %w", err)
		}

		auditLog := &model.AttendanceLog{
			UserID:    request.UserID,
			RequestID: &request.ID,
			ActorID:   &admin.ID,
			Action:    model.AuditActionManualReject,
			Reason:    adminNote,
		}
		if err := tx.Create(auditLog).Error; err != nil {
			return fmt.Errorf("failed to create audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordRequestReview(ctx, string(model.RequestStatusRejected))
	s.publishReviewed(requestID, request.UserID, model.RequestStatusRejected, admin.ID, adminNote)
	return requestSnapshot(request), nil
}

// List 查询补卡申请，管理员可不限用户
func (s *RequestService) List(ctx context.Context, userID *int64, status string, limit int) ([]dto.RequestSnapshot, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	q := database.DB().WithContext(ctx).Model(&model.AttendanceRequest{})
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var requests []model.AttendanceRequest
	if err := q.Order("created_at DESC").Limit(limit).Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}

	snapshots := make([]dto.RequestSnapshot, 0, len(requests))
	for i := range requests {
		snapshots = append(snapshots, *requestSnapshot(&requests[i]))
	}
	return snapshots, nil
}

func lockRequest(tx *gorm.DB, requestID int64) (*model.AttendanceRequest, error) {
	var request model.AttendanceRequest
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&request, requestID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.RequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query request: %w", err)
	}
	return &request, nil
}

func (s *RequestService) publishReviewed(requestID, userID int64, status model.RequestStatus, reviewedBy int64, note string) {
	if err := queue.PublishRequestReviewed(model.RequestReviewedMessage{
		RequestID:  requestID,
		UserID:     userID,
		Status:     string(status),
		ReviewedBy: reviewedBy,
		ReviewedAt: time.Now().Format(time.RFC3339),
		AdminNote:  note,
	}); err != nil {
		logger.Logger.Warn("Failed to publish request reviewed event",
			zap.Int64("request_id", requestID),
			zap.Error(err),
		)
	}
}

func requestSnapshot(r *model.AttendanceRequest) *dto.RequestSnapshot {
	snapshot := &dto.RequestSnapshot{
		ID:            fmt.Sprintf("%d", r.ID),
		UserID:        fmt.Sprintf("%d", r.UserID),
		CheckType:     string(r.CheckType),
		RequestTime:   r.RequestTime,
		Reason:        r.Reason,
		FailureReason: r.FailureReason,
		Status:        string(r.Status),
		AdminNote:     r.AdminNote,
		ReviewedAt:    r.ReviewedAt,
		CreatedAt:     r.CreatedAt,
	}
	if r.ReviewedBy != nil {
		snapshot.ReviewedBy = fmt.Sprintf("%d", *r.ReviewedBy)
	}
	return snapshot
}
