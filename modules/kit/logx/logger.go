package logx

import (
	"context"

	"go.uber.org/zap"
)

// Logger is the logging surface handed to every component: structured
// fields plus context propagation of trace ids.
type Logger interface {
	Info(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Debug(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	WithContext(ctx context.Context) Logger
}
