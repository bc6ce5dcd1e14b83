package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"

	"OnDuty/internal/model/dto"
	"OnDuty/internal/service"
	"OnDuty/pkg/response"
)

// SubmitRequest 提交补卡申请
// POST /v1/requests
func SubmitRequest(ctx context.Context, c *app.RequestContext) {
	user, err := currentUser(ctx, c)
	if err != nil {
		abortUnauthenticated(ctx, c)
		return
	}

	var req dto.SubmitRequestRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Request().Submit(ctx, user, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// ListMyRequests 查询自己的补卡申请
// GET /v1/requests
func ListMyRequests(ctx context.Context, c *app.RequestContext) {
	user, err := currentUser(ctx, c)
	if err != nil {
		abortUnauthenticated(ctx, c)
		return
	}

	var query dto.RequestListQuery
	if err := c.BindQuery(&query); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	requests, err := service.Request().List(ctx, &user.ID, query.Status, query.Limit)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, dto.RequestListResponse{Requests: requests})
}

// ListAllRequests 管理员查询补卡申请，可按状态过滤
// GET /v1/admin/requests
func ListAllRequests(ctx context.Context, c *app.RequestContext) {
	if _, err := requireAdmin(ctx, c); err != nil {
		response.Error(ctx, c, err)
		return
	}

	var query dto.RequestListQuery
	if err := c.BindQuery(&query); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	requests, err := service.Request().List(ctx, nil, query.Status, query.Limit)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, dto.RequestListResponse{Requests: requests})
}

// ApproveRequest 审批通过补卡申请
// POST /v1/admin/requests/:id/approve
func ApproveRequest(ctx context.Context, c *app.RequestContext) {
	admin, err := requireAdmin(ctx, c)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	requestID, err := pathID(c, "id")
	if err != nil {
		response.BindError(ctx, c, err)
		return
	}

	var req dto.ReviewRequestRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	attendance, err := service.Request().Approve(ctx, requestID, admin, req.AdminNote)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]interface{}{
		"attendance_id": strconv.FormatInt(attendance.ID, 10),
		"check_type":    string(attendance.CheckType),
		"status":        string(attendance.Status),
		"method":        string(attendance.Method),
		"scan_time":     attendance.ScanTime.Format(time.RFC3339),
	})
}

// RejectRequest 驳回补卡申请
// POST /v1/admin/requests/:id/reject
func RejectRequest(ctx context.Context, c *app.RequestContext) {
	admin, err := requireAdmin(ctx, c)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	requestID, err := pathID(c, "id")
	if err != nil {
		response.BindError(ctx, c, err)
		return
	}

	var req dto.ReviewRequestRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Request().Reject(ctx, requestID, admin, req.AdminNote)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}
