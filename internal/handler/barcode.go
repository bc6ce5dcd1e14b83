package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"OnDuty/internal/service"
	"OnDuty/pkg/response"
)

// ShowBarcode 返回指定地点当前时间槽的条码，供展示屏轮询
// GET /v1/barcodes/:code
func ShowBarcode(ctx context.Context, c *app.RequestContext) {
	code := c.Param("code")

	result, err := service.Barcode().Show(ctx, code)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// ListBarcodes 返回所有启用地点的当前条码，管理端使用
// GET /v1/admin/barcodes
func ListBarcodes(ctx context.Context, c *app.RequestContext) {
	if _, err := requireAdmin(ctx, c); err != nil {
		response.Error(ctx, c, err)
		return
	}

	result, err := service.Barcode().Index(ctx)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// GetBarcodeInfo 返回条码轮换参数，供展示屏确定刷新节奏
// GET /v1/barcode-info
func GetBarcodeInfo(ctx context.Context, c *app.RequestContext) {
	response.Success(ctx, c, service.Barcode().Info())
}
