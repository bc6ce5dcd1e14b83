package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"OnDuty/internal/cache"
	"OnDuty/internal/model"
	"OnDuty/pkg/logger"
	"OnDuty/storage/database"
	"OnDuty/storage/mq"
)

// StartNotificationConsumer 启动通知消费者，阻塞直到消费循环退出。
// 通知队列绑定 attendance.#，按路由键分发到对应的落库逻辑。
func StartNotificationConsumer(ctx context.Context, consumerTag string) error {
	handler := func(routingKey string, body []byte) error {
		switch routingKey {
		case RoutingKeyAbsentMarked:
			var msg model.AbsentMarkedMessage
			if err := json.Unmarshal(body, &msg); err != nil {
				return fmt.Errorf("failed to unmarshal absent marked message: %w", err)
			}
			return handleWithIdempotency(ctx, msg.MessageID, func() error {
				return saveNotification(ctx, notificationFromAbsent(msg))
			})

		case RoutingKeyRequestSubmit:
			var msg model.RequestSubmittedMessage
			if err := json.Unmarshal(body, &msg); err != nil {
				return fmt.Errorf("failed to unmarshal request submitted message: %w", err)
			}
			return handleWithIdempotency(ctx, msg.MessageID, func() error {
				return saveNotification(ctx, notificationFromSubmit(msg))
			})

		case RoutingKeyRequestReviewed:
			var msg model.RequestReviewedMessage
			if err := json.Unmarshal(body, &msg); err != nil {
				return fmt.Errorf("failed to unmarshal request reviewed message: %w", err)
			}
			return handleWithIdempotency(ctx, msg.MessageID, func() error {
				return saveNotification(ctx, notificationFromReview(msg))
			})

		default:
			logger.Logger.Warn("Unknown routing key, dropping message",
				zap.String("routing_key", routingKey),
			)
			return nil
		}
	}

	return mq.Consume(ctx, mq.ConsumeOptions{
		Queue:         mq.NotificationQueue,
		ConsumerTag:   consumerTag,
		PrefetchCount: 10,
		Handler:       handler,
	})
}

// handleWithIdempotency 重复投递的消息直接跳过
func handleWithIdempotency(ctx context.Context, messageID string, process func() error) error {
	processed, err := cache.IsMessageProcessed(ctx, messageID)
	if err != nil {
		// 幂等检查失败时继续处理，宁可重复也不丢消息
		logger.Logger.Warn("Failed to check message processed status",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
	} else if processed {
		logger.Logger.Info("Message already processed, skipping",
			zap.String("message_id", messageID),
		)
		return nil
	}

	if err := process(); err != nil {
		return err
	}

	if err := cache.MarkMessageProcessed(ctx, messageID); err != nil {
		logger.Logger.Warn("Failed to mark message as processed",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
	}
	return nil
}

func saveNotification(ctx context.Context, n *model.Notification) error {
	if err := database.DB().WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	logger.Logger.Info("Notification created",
		zap.Int64("user_id", n.UserID),
		zap.String("category", string(n.Category)),
	)
	return nil
}

func notificationFromAbsent(msg model.AbsentMarkedMessage) *model.Notification {
	now := time.Now()
	return &model.Notification{
		MessageID:   msg.MessageID,
		UserID:      msg.UserID,
		Category:    model.NotificationCategoryAbsentMarked,
		Title:       "Marked absent",
		Body:        fmt.Sprintf("You were marked absent on %s", msg.Date),
		Payload:     model.JSONB{"date": msg.Date, "shift_code": msg.ShiftCode, "batch_id": msg.BatchID},
		Status:      model.NotificationStatusDelivered,
		DeliveredAt: &now,
	}
}

func notificationFromSubmit(msg model.RequestSubmittedMessage) *model.Notification {
	now := time.Now()
	return &model.Notification{
		MessageID:   msg.MessageID,
		UserID:      msg.UserID,
		Category:    model.NotificationCategoryRequestSubmit,
		Title:       "Attendance request submitted",
		Body:        fmt.Sprintf("Your %s request for %s is pending review", msg.CheckType, msg.RequestTime),
		Payload:     model.JSONB{"request_id": msg.RequestID, "reason": msg.Reason},
		Status:      model.NotificationStatusDelivered,
		DeliveredAt: &now,
	}
}

func notificationFromReview(msg model.RequestReviewedMessage) *model.Notification {
	now := time.Now()
	return &model.Notification{
		MessageID:   msg.MessageID,
		UserID:      msg.UserID,
		Category:    model.NotificationCategoryRequestReviewed,
		Title:       fmt.Sprintf("Attendance request %s", msg.Status),
		Body:        msg.AdminNote,
		Payload:     model.JSONB{"request_id": msg.RequestID, "status": msg.Status, "reviewed_by": msg.ReviewedBy},
		Status:      model.NotificationStatusDelivered,
		DeliveredAt: &now,
	}
}
