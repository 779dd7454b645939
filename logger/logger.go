// Package logger 提供进程级滚动日志
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Path      string
	MaxSizeMB int
	Level     string
}

// New builds the process-wide logger: JSON entries appended to a log file that
// rotates when it reaches MaxSizeMB, mirrored to stderr.
func New(cfg Config) *zap.Logger {
	if cfg.Path == "" {
		cfg.Path = "api.log"
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 512
	}

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zapcore.ParseLevel(cfg.Level); err == nil {
			level = parsed
		}
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(&lumberjack.Logger{
			Filename: cfg.Path,
			MaxSize:  cfg.MaxSizeMB,
		}),
		level,
	)
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stderr),
		level,
	)

	return zap.New(zapcore.NewTee(fileCore, consoleCore))
}
