package main

import (
	"OnDuty/internal/repository"
	"OnDuty/pkg/logger"
)

func main() {
	logger.Init()
	defer logger.Sync()

	repository.RunGenerate()
}
