package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"OnDuty/config"
	"OnDuty/internal/schedule"
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

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Logger.Info("Scheduler received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	shutdownOtel, err := otel.InitOpenTelemetry(ctx, otel.Config{
		ServiceName:  config.Cfg.ServiceName + "-scheduler",
		Environment:  config.Cfg.Environment,
		OTLPEndpoint: config.Cfg.OTLPEndpoint,
		SampleRatio:  config.Cfg.TraceSample,
	})
	if err != nil {
		logger.Logger.Warn("Failed to initialize OpenTelemetry for scheduler, tracing disabled", zap.Error(err))
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
		logger.Logger.Fatal("Failed to initialize storage for scheduler", zap.Error(err))
	}
	defer storage.Close()

	// 与 server 和 worker 区分 machine ID 最好，避免 ID 冲突
	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake for scheduler", zap.Error(err))
	}

	logger.Logger.Info("Scheduler service starting",
		zap.String("service", config.Cfg.ServiceName+"-scheduler"),
		zap.String("environment", config.Cfg.Environment),
		zap.String("sweep_at", config.Cfg.AbsenceSweepAt),
	)

	go runAbsenceSweepLoop(ctx)

	<-ctx.Done()

	logger.Logger.Info("Scheduler service shutting down gracefully")
}

// runAbsenceSweepLoop 每天在配置的本地时间执行一次缺勤扫描。
// development 环境下改为每 1 分钟执行一次，方便本地调试。
func runAbsenceSweepLoop(ctx context.Context) {
	sweeper := schedule.GetSweeper()

	if config.Cfg.Environment == "development" {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		logger.Logger.Info("Absence sweep running in development mode with 1m interval")

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runSweep(ctx, sweeper)
			}
		}
	}

	for {
		next, err := nextSweepTime(time.Now(), config.Cfg.AbsenceSweepAt)
		if err != nil {
			logger.Logger.Error("Invalid ABSENCE_SWEEP_AT, falling back to 23:30:00", zap.Error(err))
			next, _ = nextSweepTime(time.Now(), "23:30:00")
		}

		delay := time.Until(next)
		logger.Logger.Info("Scheduled next absence sweep",
			zap.Time("next_run", next),
			zap.Duration("delay", delay),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			runSweep(ctx, sweeper)
		}
	}
}

// nextSweepTime 计算下一次扫描时间，at 形如 "23:30:00"
func nextSweepTime(now time.Time, at string) (time.Time, error) {
	t, err := time.Parse("15:04:05", at)
	if err != nil {
		return time.Time{}, err
	}

	next := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), t.Second(), 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next, nil
}

func runSweep(ctx context.Context, sweeper *schedule.AbsenceSweeper) {
	runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	marked, err := sweeper.Sweep(runCtx, time.Now())
	if err != nil {
		logger.Logger.Error("Absence sweep run failed", zap.Error(err))
		return
	}

	logger.Logger.Info("Absence sweep run completed", zap.Int("marked", marked))
}
