package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"OnDuty/config"
	"OnDuty/internal/queue"
	"OnDuty/pkg/logger"
	"OnDuty/pkg/otel"
	"OnDuty/pkg/snowflake"
	"OnDuty/storage"
)

func main() {

	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	shutdownOtel, err := otel.InitOpenTelemetry(ctx, otel.Config{
		ServiceName:  config.Cfg.ServiceName + "-worker",
		Environment:  config.Cfg.Environment,
		OTLPEndpoint: config.Cfg.OTLPEndpoint,
		SampleRatio:  config.Cfg.TraceSample,
	})
	if err != nil {
		logger.Logger.Warn("Failed to initialize OpenTelemetry for worker, tracing disabled", zap.Error(err))
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownOtel(shutdownCtx); err != nil {
				logger.Logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
			}
		}()
	}

	if err := otel.InitAppMetrics(); err != nil {
		logger.Logger.Warn("Failed to initialize app metrics", zap.Error(err))
	}

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	logger.Logger.Info("Worker service starting",
		zap.String("service", config.Cfg.ServiceName+"-worker"),
		zap.String("environment", config.Cfg.Environment),
	)

	// 消费循环退出后（channel 断开等）延迟重建，直到收到关闭信号
	consumerTag := "onduty-worker-" + uuid.NewString()
	for {
		if err := queue.StartNotificationConsumer(ctx, consumerTag); err != nil {
			logger.Logger.Error("Notification consumer exited with error", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			logger.Logger.Info("Worker service shutting down gracefully")
			return
		case <-time.After(5 * time.Second):
			logger.Logger.Info("Restarting notification consumer",
				zap.String("consumer_tag", consumerTag),
			)
		}
	}
}
