package dto

import "time"

// ========== Attendance 相关 DTO ==========

// ScanRequest 扫码打卡请求
type ScanRequest struct {
	Barcode      string   `json:"barcode" binding:"required"`
	GPSLat       *float64 `json:"gps_lat" binding:"required"`
	GPSLng       *float64 `json:"gps_lng" binding:"required"`
	GPSAccuracyM *float64 `json:"gps_accuracy_m,omitempty"`
	DeviceID     string   `json:"device_id,omitempty"`
}

// ScanResponse 扫码打卡响应
type ScanResponse struct {
	AttendanceID string    `json:"attendance_id"`
	CheckType    string    `json:"check_type"`
	Status       string    `json:"status"`
	ScanTime     time.Time `json:"scan_time"`
	LateMinutes  int       `json:"late_minutes,omitempty"`
	PenaltyTier  string    `json:"penalty_tier,omitempty"`
	WorkMinutes  int       `json:"work_minutes,omitempty"`
	DistanceM    *float64  `json:"distance_m,omitempty"`
	LocationName string    `json:"location_name"`
	ShiftCode    string    `json:"shift_code,omitempty"`
}

// TodaySummaryResponse 当日考勤概要响应
type TodaySummaryResponse struct {
	Date          string     `json:"date"`
	ShiftCode     string     `json:"shift_code,omitempty"`
	ShiftStart    string     `json:"shift_start,omitempty"`
	ShiftEnd      string     `json:"shift_end,omitempty"`
	NextCheckType string     `json:"next_check_type"`
	CheckInAt     *time.Time `json:"check_in_at,omitempty"`
	CheckInStatus string     `json:"check_in_status,omitempty"`
	CheckOutAt    *time.Time `json:"check_out_at,omitempty"`
	LateMinutes   int        `json:"late_minutes,omitempty"`
	WorkMinutes   int        `json:"work_minutes,omitempty"`
}

// HistoryQuery 考勤历史查询参数
type HistoryQuery struct {
	From   string `form:"from"`
	To     string `form:"to"`
	Status string `form:"status"`
	Cursor string `form:"cursor"`
	Limit  int    `form:"limit"`
}

// AttendanceRecord 考勤历史单条记录
type AttendanceRecord struct {
	ID          string    `json:"id"`
	CheckType   string    `json:"check_type"`
	Status      string    `json:"status"`
	Method      string    `json:"method"`
	ScanTime    time.Time `json:"scan_time"`
	LateMinutes int       `json:"late_minutes,omitempty"`
	PenaltyTier string    `json:"penalty_tier,omitempty"`
	WorkMinutes int       `json:"work_minutes,omitempty"`
	OvertimeMin int       `json:"overtime_min,omitempty"`
	ShiftCode   string    `json:"shift_code,omitempty"`
}

// HistoryResponse 考勤历史响应
type HistoryResponse struct {
	Records    []AttendanceRecord `json:"records"`
	NextCursor string             `json:"next_cursor,omitempty"`
}
