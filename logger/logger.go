package logger

import (
	"os"

	"go.uber.org/zap"
)

func InitLogger() (*zap.Logger, error) {
	if os.Getenv("STATE") == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
