package cache

import (
	"context"
	"fmt"
	"time"

	"OnDuty/storage/redis"
)

// 通过 SetNX 实现分布式锁：扫码串行化、缺勤扫描互斥都用它
const (
	scanLockPrefix  = "lock:scan"
	sweepLockPrefix = "lock:sweep"

	// ScanLockTTL 单次扫码处理的锁超时，处理完成后主动释放
	ScanLockTTL = 10 * time.Second
	// SweepLockTTL 缺勤扫描锁超时，防止实例崩溃后锁悬挂到第二天
	SweepLockTTL = 30 * time.Minute
)

func tryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	result, err := redis.Client().SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		return false, err
	}

	return result, nil
}

func unlock(ctx context.Context, key string) error {
	return redis.Client().Del(ctx, key).Err()
}

// TryScanLock 获取用户当日的扫码锁，同一用户同一天的扫码串行处理
func TryScanLock(ctx context.Context, userID int64, date string) (bool, error) {
	return tryLock(ctx, redis.Key(scanLockPrefix, date, fmt.Sprintf("%d", userID)), ScanLockTTL)
}

// UnlockScan 释放用户当日的扫码锁
func UnlockScan(ctx context.Context, userID int64, date string) error {
	return unlock(ctx, redis.Key(scanLockPrefix, date, fmt.Sprintf("%d", userID)))
}

// TrySweepLock 获取指定日期的缺勤扫描锁，保证多实例下只有一个执行
func TrySweepLock(ctx context.Context, date string) (bool, error) {
	return tryLock(ctx, redis.Key(sweepLockPrefix, date), SweepLockTTL)
}

// UnlockSweep 释放缺勤扫描锁
func UnlockSweep(ctx context.Context, date string) error {
	return unlock(ctx, redis.Key(sweepLockPrefix, date))
}
