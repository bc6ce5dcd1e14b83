package cache

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"OnDuty/storage/redis"
)

// 条码在同一时间槽内是确定的，按 (location, slot) 缓存，TTL 到槽结束为止
const barcodePrefix = "barcode"

// GetBarcode 读取缓存的条码，未命中返回空串
func GetBarcode(ctx context.Context, locationCode string, slot int64) (string, error) {
	key := redis.Key(barcodePrefix, locationCode, fmt.Sprintf("%d", slot))

	result, err := redis.Client().Get(ctx, key).Result()
	if err == goredis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get cached barcode: %w", err)
	}
	return result, nil
}

// SetBarcode 缓存条码，ttl 为当前时间槽剩余秒数
func SetBarcode(ctx context.Context, locationCode string, slot int64, barcode string, ttl time.Duration) error {
	key := redis.Key(barcodePrefix, locationCode, fmt.Sprintf("%d", slot))

	return redis.Client().Set(ctx, key, barcode, ttl).Err()
}
