package cache

import (
	"context"
	"fmt"
	"time"

	"OnDuty/storage/redis"
)

// 消息消费幂等标记，worker 重复收到同一条消息时跳过
const (
	messageProcessedPrefix = "message:processed"

	processedTTL = 48 * time.Hour
)

// IsMessageProcessed 检查消息是否已被消费
func IsMessageProcessed(ctx context.Context, messageID string) (bool, error) {
	key := redis.Key(messageProcessedPrefix, messageID)

	result, err := redis.Client().Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check message processed status: %w", err)
	}
	return result > 0, nil
}

// MarkMessageProcessed 标记消息已消费
func MarkMessageProcessed(ctx context.Context, messageID string) error {
	key := redis.Key(messageProcessedPrefix, messageID)

	return redis.Client().Set(ctx, key, "1", processedTTL).Err()
}
