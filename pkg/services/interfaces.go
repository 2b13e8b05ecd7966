package services

import (
	"context"

	"go.uber.org/zap"
)

// Logger is the structured logging interface implemented by the zap-backed
// logger and its test double. Zap exposes the underlying *zap.Logger, which
// pkg/di hands to pkg/core's event sink.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
	Fatal(msg string, fields ...interface{})
	Sync() error
	With(fields ...interface{}) Logger
	WithContext(ctx context.Context) Logger
	Zap() *zap.Logger
}
