package service

import (
	"os"
	"testing"

	"go.uber.org/zap"

	"OnDuty/pkg/logger"
)

// 测试不走 logger.Init()，给包级 Logger 一个 no-op 实现避免空指针
func TestMain(m *testing.M) {
	logger.Logger = zap.NewNop()
	os.Exit(m.Run())
}
