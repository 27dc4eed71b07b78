package model

import (
	"context"
	"log/slog"
)

// CallEvent records metadata about a single prediction call.
type CallEvent struct {
	Backend   string
	Model     string
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives events about prediction calls for logging and metrics.
type Observer interface {
	OnPredict(ctx context.Context, event CallEvent)
}

// LogObserver writes prediction call events through a slog.Logger.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an Observer that logs events to logger.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnPredict(ctx context.Context, event CallEvent) {
	attrs := []any{
		"backend", event.Backend,
		"model", event.Model,
		"latency_ms", event.LatencyMs,
		"success", event.Success,
	}
	if !event.Success {
		o.logger.WarnContext(ctx, "model_predict", append(attrs, "error_code", event.ErrorCode)...)
		return
	}
	o.logger.InfoContext(ctx, "model_predict", attrs...)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnPredict(context.Context, CallEvent) {}

func observerOrNoop(o Observer) Observer {
	if o == nil {
		return NoopObserver{}
	}
	return o
}
