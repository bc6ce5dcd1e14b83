package otel

import (
	"fmt"

	"go.opentelemetry.io/otel"

	dbotel "OnDuty/pkg/database"
	"OnDuty/pkg/metrics"
	mqotel "OnDuty/pkg/mq"
	redisotel "OnDuty/pkg/redis"
)

// InitAppMetrics 注册存储层与业务层的指标 instrument。
// 必须在 storage.Init 之前调用，否则存储层回调会拿到未初始化的 instrument。
func InitAppMetrics() error {
	meter := otel.Meter("onduty")

	if err := dbotel.InitDatabaseMetrics(meter); err != nil {
		return fmt.Errorf("failed to init database metrics: %w", err)
	}

	if err := redisotel.InitRedisMetrics(meter); err != nil {
		return fmt.Errorf("failed to init redis metrics: %w", err)
	}

	if err := mqotel.InitMQMetrics(meter); err != nil {
		return fmt.Errorf("failed to init mq metrics: %w", err)
	}

	if err := metrics.Init(); err != nil {
		return fmt.Errorf("failed to init attendance metrics: %w", err)
	}

	return nil
}
