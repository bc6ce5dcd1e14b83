package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"OnDuty/internal/model"
	"OnDuty/internal/model/dto"
	"OnDuty/storage/database"
	"OnDuty/utils"
)

// TodaySummary 当日考勤概要：上下班时间、状态、排班信息和下一次扫码方向
func (s *AttendanceService) TodaySummary(ctx context.Context, user *model.User) (*dto.TodaySummaryResponse, error) {
	now := s.now()
	start := utils.DateOf(now)
	end := start.Add(24 * time.Hour)

	var events []model.Attendance
	err := database.DB().WithContext(ctx).
		Where("user_id = ? AND scan_time >= ? AND scan_time < ?", user.ID, start, end).
		Order("scan_time ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query today attendance: %w", err)
	}

	summary := &dto.TodaySummaryResponse{
		Date:          now.Format("2006-01-02"),
		NextCheckType: string(model.CheckTypeIn),
	}

	for i := range events {
		e := &events[i]
		switch e.CheckType {
		case model.CheckTypeIn:
			if summary.CheckInAt == nil {
				t := e.ScanTime
				summary.CheckInAt = &t
				summary.CheckInStatus = string(e.Status)
				summary.LateMinutes = e.LateMin
			}
		case model.CheckTypeOut:
			t := e.ScanTime
			summary.CheckOutAt = &t
			summary.WorkMinutes = e.WorkMinutes
		}
	}
	if len(events) > 0 {
		summary.NextCheckType = string(events[len(events)-1].CheckType.Flip())
	}

	schedule, err := Schedule().ActiveScheduleFor(ctx, user.ID, now)
	if err != nil {
		return nil, err
	}
	if schedule != nil && schedule.Shift != nil {
		summary.ShiftCode = schedule.Shift.Code
		summary.ShiftStart = schedule.Shift.StartTime
		summary.ShiftEnd = schedule.Shift.EndTime
	}

	return summary, nil
}

// History 分页查询考勤历史，游标为上一页最后一条记录的 ID
func (s *AttendanceService) History(ctx context.Context, user *model.User, query *dto.HistoryQuery) (*dto.HistoryResponse, error) {
	limit := query.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	q := database.DB().WithContext(ctx).
		Where("user_id = ?", user.ID)

	if query.From != "" {
		from, err := time.Parse("2006-01-02", query.From)
		if err != nil {
			return nil, fmt.Errorf("invalid from date: %w", err)
		}
		q = q.Where("scan_time >= ?", from)
	}
	if query.To != "" {
		to, err := time.Parse("2006-01-02", query.To)
		if err != nil {
			return nil, fmt.Errorf("invalid to date: %w", err)
		}
		q = q.Where("scan_time < ?", to.Add(24*time.Hour))
	}
	if query.Status != "" {
		q = q.Where("status = ?", query.Status)
	}
	if query.Cursor != "" {
		cursorID, err := strconv.ParseInt(query.Cursor, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor: %w", err)
		}
		q = q.Where("id < ?", cursorID)
	}

	var events []model.Attendance
	if err := q.Order("id DESC").Limit(limit + 1).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to query attendance history: %w", err)
	}

	resp := &dto.HistoryResponse{}
	if len(events) > limit {
		events = events[:limit]
		resp.NextCursor = fmt.Sprintf("%d", events[limit-1].ID)
	}

	resp.Records = make([]dto.AttendanceRecord, 0, len(events))
	for i := range events {
		e := &events[i]
		record := dto.AttendanceRecord{
			ID:          fmt.Sprintf("%d", e.ID),
			CheckType:   string(e.CheckType),
			Status:      string(e.Status),
			Method:      string(e.Method),
			ScanTime:    e.ScanTime,
			LateMinutes: e.LateMin,
			PenaltyTier: e.PenaltyTier,
			WorkMinutes: e.WorkMinutes,
			OvertimeMin: e.OvertimeMin,
		}
		resp.Records = append(resp.Records, record)
	}
	return resp, nil
}
