package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"OnDuty/config"
	"OnDuty/internal/model"
	"OnDuty/internal/model/dto"
	"OnDuty/pkg/errors"
	"OnDuty/pkg/logger"
	"OnDuty/storage/database"
	"OnDuty/utils"
)

var (
	deviceService *DeviceService
	deviceOnce    sync.Once
)

// Device 返回设备服务单例
func Device() *DeviceService {
	deviceOnce.Do(func() {
		deviceService = &DeviceService{}
	})
	return deviceService
}

type DeviceService struct{}

// Fingerprint 由客户端上报的特征生成设备指纹，key 排序后拼接保证确定性
func (s *DeviceService) Fingerprint(components map[string]string) string {
	keys := make([]string, 0, len(components))
	for k := range components {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+components[k])
	}
	return utils.FingerprintDevice(parts...)
}

// Register 注册打卡设备，超出每人数量上限时拒绝
func (s *DeviceService) Register(ctx context.Context, user *model.User, req *dto.RegisterDeviceRequest) (*dto.DeviceSnapshot, error) {
	fingerprint := s.Fingerprint(req.Components)

	var existing model.Device
	err := database.DB().WithContext(ctx).
		Where("device_fingerprint = ?", fingerprint).
		First(&existing).Error
	if err == nil {
		if existing.UserID != user.ID {
			return nil, errors.DeviceNotRegistered
		}
		// 同一用户重复注册视为刷新
		now := time.Now()
		existing.LastUsedAt = &now
		if err := database.DB().WithContext(ctx).Save(&existing).Error; err != nil {
			return nil, fmt.Errorf("failed to refresh device: %w", err)
		}
		return deviceSnapshot(&existing), nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to query device: %w", err)
	}

	var count int64
	if err := database.DB().WithContext(ctx).
		Model(&model.Device{}).
		Where("user_id = ?", user.ID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to count devices: %w", err)
	}
	if count >= int64(config.Cfg.MaxDevicesPerUser) {
		return nil, errors.DeviceLimitReached
	}

	info := model.JSONB{}
	for k, v := range req.Components {
		info[k] = v
	}
	device := &model.Device{
		UserID:            user.ID,
		DeviceFingerprint: fingerprint,
		DeviceName:        req.DeviceName,
		DeviceInfo:        info,
		IsApproved:        true,
		RegisteredAt:      time.Now(),
	}
	if err := database.DB().WithContext(ctx).Create(device).Error; err != nil {
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	logger.Logger.Info("Device registered",
		zap.Int64("user_id", user.ID),
		zap.String("fingerprint", fingerprint[:12]),
	)
	return deviceSnapshot(device), nil
}

// Verify 扫码时校验设备。功能未启用时直接放行；
// 注册过但未批准的设备返回待审批错误
func (s *DeviceService) Verify(ctx context.Context, userID int64, fingerprint string) error {
	if !config.Cfg.DeviceRegistrationEnabled {
		return nil
	}
	if fingerprint == "" {
		return errors.DeviceNotRegistered
	}

	var device model.Device
	err := database.DB().WithContext(ctx).
		Where("user_id = ? AND device_fingerprint = ?", userID, fingerprint).
		First(&device).Error
	if err == gorm.ErrRecordNotFound {
		return errors.DeviceNotRegistered
	}
	if err != nil {
		return fmt.Errorf("failed to query device: %w", err)
	}

	if !device.IsApproved {
		return errors.DevicePendingApproval
	}

	now := time.Now()
	if err := database.DB().WithContext(ctx).
		Model(&device).
		Update("last_used_at", &now).Error; err != nil {
		logger.Logger.Warn("Failed to update device last_used_at",
			zap.Int64("device_id", device.ID),
			zap.Error(err),
		)
	}
	return nil
}

// List 列出用户的设备
func (s *DeviceService) List(ctx context.Context, userID int64) ([]dto.DeviceSnapshot, error) {
	var devices []model.Device
	err := database.DB().WithContext(ctx).
		Where("user_id = ?", userID).
		Order("registered_at DESC").
		Find(&devices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}

	snapshots := make([]dto.DeviceSnapshot, 0, len(devices))
	for i := range devices {
		snapshots = append(snapshots, *deviceSnapshot(&devices[i]))
	}
	return snapshots, nil
}

func deviceSnapshot(d *model.Device) *dto.DeviceSnapshot {
	return &dto.DeviceSnapshot{
		ID:           fmt.Sprintf("%d", d.ID),
		DeviceName:   d.DeviceName,
		Fingerprint:  d.DeviceFingerprint,
		IsApproved:   d.IsApproved,
		RegisteredAt: d.RegisteredAt,
		LastUsedAt:   d.LastUsedAt,
	}
}
