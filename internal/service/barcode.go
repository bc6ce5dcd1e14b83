package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"OnDuty/config"
	"OnDuty/internal/barcode"
	"OnDuty/internal/cache"
	"OnDuty/internal/model"
	"OnDuty/internal/model/dto"
	"OnDuty/pkg/errors"
	"OnDuty/pkg/logger"
	"OnDuty/pkg/metrics"
	"OnDuty/storage/database"
)

var (
	barcodeService *BarcodeService
	barcodeOnce    sync.Once
)

// Barcode 返回条码展示服务单例
func Barcode() *BarcodeService {
	barcodeOnce.Do(func() {
		barcodeService = &BarcodeService{
			tokens: barcode.NewService(barcode.Config{
				RotationSeconds: config.Cfg.BarcodeRotationSeconds,
				SecretKey:       config.Cfg.BarcodeSecretKey,
				Tolerance:       config.Cfg.BarcodeSlotTolerance,
			}),
		}
	})
	return barcodeService
}

// BarcodeService 打卡终端轮询的条码展示，生成结果在槽内确定，
// 按 (location, slot) 缓存到槽结束
type BarcodeService struct {
	tokens *barcode.Service
}

// Show 当前时间槽内指定地点的条码
func (s *BarcodeService) Show(ctx context.Context, locationCode string) (*dto.BarcodeShowResponse, error) {
	var location model.Location
	err := database.DB().WithContext(ctx).
		Where("code = ? AND is_active", locationCode).
		First(&location).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.LocationUnknownOrInactive
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query location: %w", err)
	}

	slot := s.tokens.CurrentSlot()
	code, err := s.cachedBarcode(ctx, location.Code, slot)
	if err != nil {
		return nil, err
	}

	return &dto.BarcodeShowResponse{
		LocationCode: location.Code,
		Barcode:      code,
		Slot:         slot,
		ExpiresIn:    s.tokens.ExpiresIn(),
	}, nil
}

// Index 全部启用地点在当前时间槽的条码，管理端总览用
func (s *BarcodeService) Index(ctx context.Context) (*dto.BarcodeIndexResponse, error) {
	var locations []model.Location
	err := database.DB().WithContext(ctx).
		Where("is_active").
		Order("code ASC").
		Find(&locations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}

	slot := s.tokens.CurrentSlot()
	barcodes := make([]dto.LocationBarcode, 0, len(locations))
	for i := range locations {
		code, err := s.cachedBarcode(ctx, locations[i].Code, slot)
		if err != nil {
			return nil, err
		}
		barcodes = append(barcodes, dto.LocationBarcode{
			LocationCode: locations[i].Code,
			LocationName: locations[i].Name,
			Barcode:      code,
		})
	}

	return &dto.BarcodeIndexResponse{
		Slot:      slot,
		ExpiresIn: s.tokens.ExpiresIn(),
		Barcodes:  barcodes,
	}, nil
}

// Info 条码轮换参数，客户端据此决定轮询间隔
func (s *BarcodeService) Info() *dto.BarcodeInfoResponse {
	return &dto.BarcodeInfoResponse{
		RotationSeconds: config.Cfg.BarcodeRotationSeconds,
		SlotTolerance:   config.Cfg.BarcodeSlotTolerance,
	}
}

// cachedBarcode 先查缓存，未命中则生成并回填。
// 生成是确定性的，并发回填互相覆盖也无害
func (s *BarcodeService) cachedBarcode(ctx context.Context, locationCode string, slot int64) (string, error) {
	cached, err := cache.GetBarcode(ctx, locationCode, slot)
	if err != nil {
		logger.Logger.Warn("Barcode cache read failed, generating directly",
			zap.String("location_code", locationCode),
			zap.Error(err),
		)
	}
	if cached != "" {
		return cached, nil
	}

	code := s.tokens.GenerateForSlot(locationCode, slot)
	metrics.RecordBarcodeGenerated(ctx, locationCode)

	ttl := time.Duration(s.tokens.ExpiresIn()) * time.Second
	if err := cache.SetBarcode(ctx, locationCode, slot, code, ttl); err != nil {
		logger.Logger.Warn("Barcode cache write failed",
			zap.String("location_code", locationCode),
			zap.Error(err),
		)
	}
	return code, nil
}
