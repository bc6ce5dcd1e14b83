package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"OnDuty/internal/model/dto"
	"OnDuty/internal/service"
	"OnDuty/pkg/response"
)

// RegisterDevice 注册打卡设备
// POST /v1/devices
func RegisterDevice(ctx context.Context, c *app.RequestContext) {
	user, err := currentUser(ctx, c)
	if err != nil {
		abortUnauthenticated(ctx, c)
		return
	}

	var req dto.RegisterDeviceRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Device().Register(ctx, user, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// ListDevices 查询自己注册的设备
// GET /v1/devices
func ListDevices(ctx context.Context, c *app.RequestContext) {
	user, err := currentUser(ctx, c)
	if err != nil {
		abortUnauthenticated(ctx, c)
		return
	}

	devices, err := service.Device().List(ctx, user.ID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, dto.DeviceListResponse{Devices: devices})
}
