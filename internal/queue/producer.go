package queue

import (
	"fmt"

	"go.uber.org/zap"

	"OnDuty/internal/model"
	"OnDuty/pkg/logger"
	"OnDuty/pkg/snowflake"
	"OnDuty/storage/mq"
)

// 考勤事件的路由键，通知队列绑定 attendance.#
const (
	RoutingKeyAbsentMarked    = "attendance.absent"
	RoutingKeyRequestSubmit   = "attendance.request.submitted"
	RoutingKeyRequestReviewed = "attendance.request.reviewed"
)

// PublishAbsentMarked 发布缺勤标记事件
func PublishAbsentMarked(msg model.AbsentMarkedMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextID()
		if err != nil {
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = fmt.Sprintf("absent_%d", id)
	}

	if err := mq.PublishMessage(mq.EventExchange, RoutingKeyAbsentMarked, msg); err != nil {
		logger.Logger.Error("Failed to publish absent marked message",
			zap.String("message_id", msg.MessageID),
			zap.Int64("user_id", msg.UserID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published absent marked message",
		zap.String("message_id", msg.MessageID),
		zap.Int64("user_id", msg.UserID),
		zap.String("date", msg.Date),
	)
	return nil
}

// PublishRequestSubmitted 发布补卡申请提交事件
func PublishRequestSubmitted(msg model.RequestSubmittedMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextID()
		if err != nil {
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = fmt.Sprintf("req_submit_%d", id)
	}

	if err := mq.PublishMessage(mq.EventExchange, RoutingKeyRequestSubmit, msg); err != nil {
		logger.Logger.Error("Failed to publish request submitted message",
			zap.String("message_id", msg.MessageID),
			zap.Int64("request_id", msg.RequestID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published request submitted message",
		zap.String("message_id", msg.MessageID),
		zap.Int64("request_id", msg.RequestID),
	)
	return nil
}

// PublishRequestReviewed 发布补卡申请审批结果事件
func PublishRequestReviewed(msg model.RequestReviewedMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextID()
		if err != nil {
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = fmt.Sprintf("req_review_%d", id)
	}

	if err := mq.PublishMessage(mq.EventExchange, RoutingKeyRequestReviewed, msg); err != nil {
		logger.Logger.Error("Failed to publish request reviewed message",
			zap.String("message_id", msg.MessageID),
			zap.Int64("request_id", msg.RequestID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published request reviewed message",
		zap.String("message_id", msg.MessageID),
		zap.Int64("request_id", msg.RequestID),
		zap.String("status", msg.Status),
	)
	return nil
}
