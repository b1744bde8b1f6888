package logger

import (
	"context"

	"go.uber.org/zap"

	"habittracker/pkg/trace"
)

func NewLogger() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return l
}

// WithTrace 从 context 中提取 trace_id 并添加到 logger
func WithTrace(ctx context.Context, l *zap.Logger) *zap.Logger {
	traceID := trace.FromContext(ctx)
	if traceID != "" {
		return l.With(zap.String("trace_id", traceID))
	}
	return l
}
