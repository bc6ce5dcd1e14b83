package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"OnDuty/internal/handler"
	"OnDuty/internal/middleware"
)

func Register(h *server.Hertz) {

	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())

	v1 := h.Group("/v1")

	// 认证相关路由
	auth := v1.Group("/auth")
	auth.Use(middleware.AuthRateLimitMiddleware()) // 认证接口限流
	{
		auth.POST("/login", handler.Login)
		auth.POST("/token/refresh", handler.RefreshToken)
	}

	// 条码展示路由，展示屏无用户身份，公开可读
	barcodes := v1.Group("/barcodes")
	{
		barcodes.GET("/:code", handler.ShowBarcode)
	}
	v1.GET("/barcode-info", handler.GetBarcodeInfo)

	// 考勤路由
	attendance := v1.Group("/attendance")
	attendance.Use(middleware.AuthMiddleware())
	{
		// 扫码入口叠加 IP 白名单与限流
		attendance.POST("/scan",
			middleware.IPWhitelistMiddleware(),
			middleware.ScanRateLimitMiddleware(),
			handler.Scan)
		attendance.GET("/today", handler.GetTodaySummary)
		attendance.GET("/history", handler.GetAttendanceHistory)
	}

	// 补卡申请路由
	requests := v1.Group("/requests")
	requests.Use(middleware.AuthMiddleware())
	requests.Use(middleware.GeneralRateLimitMiddleware())
	{
		requests.POST("", handler.SubmitRequest)
		requests.GET("", handler.ListMyRequests)
	}

	// 设备注册路由
	devices := v1.Group("/devices")
	devices.Use(middleware.AuthMiddleware())
	{
		devices.POST("", handler.RegisterDevice)
		devices.GET("", handler.ListDevices)
	}

	// 管理端路由，处理器内校验管理员身份
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	{
		admin.GET("/barcodes", handler.ListBarcodes)
		admin.GET("/requests", handler.ListAllRequests)
		admin.POST("/requests/:id/approve", handler.ApproveRequest)
		admin.POST("/requests/:id/reject", handler.RejectRequest)
	}
}
