package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"OnDuty/internal/model/dto"
	"OnDuty/internal/service"
	"OnDuty/pkg/response"
)

// Scan 扫码打卡，核心入口
// POST /v1/attendance/scan
func Scan(ctx context.Context, c *app.RequestContext) {
	user, err := currentUser(ctx, c)
	if err != nil {
		abortUnauthenticated(ctx, c)
		return
	}

	var req dto.ScanRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	// 设备指纹校验，未启用时直接放行
	if err := service.Device().Verify(ctx, user.ID, req.DeviceID); err != nil {
		response.Error(ctx, c, err)
		return
	}

	result, rejection := service.Attendance().ProcessScan(ctx, user, &req, c.ClientIP())
	if rejection != nil {
		response.ErrorWithDetails(ctx, c, rejection.Err, rejection.Diagnostics)
		return
	}

	response.Success(ctx, c, result)
}

// GetTodaySummary 查询当天打卡状态，客户端首页加载时调用
// GET /v1/attendance/today
func GetTodaySummary(ctx context.Context, c *app.RequestContext) {
	user, err := currentUser(ctx, c)
	if err != nil {
		abortUnauthenticated(ctx, c)
		return
	}

	result, err := service.Attendance().TodaySummary(ctx, user)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// GetAttendanceHistory 分页查询历史考勤记录
// GET /v1/attendance/history
func GetAttendanceHistory(ctx context.Context, c *app.RequestContext) {
	user, err := currentUser(ctx, c)
	if err != nil {
		abortUnauthenticated(ctx, c)
		return
	}

	var query dto.HistoryQuery
	if err := c.BindQuery(&query); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Attendance().History(ctx, user, &query)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}
