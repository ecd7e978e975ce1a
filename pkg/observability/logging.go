package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/turing/pkg/domain"
)

// LoggingHooks logs every transition at debug level and every halt at info,
// the structured form of a verbose trace.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStart: func(ctx context.Context, e *domain.EventBase) {
			logger.Debug("run started", "machine", e.Machine)
		},
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			logger.Debug("step",
				"machine", e.Machine,
				"n", e.Step,
				"from", e.From,
				"read", e.Read,
				"to", e.To,
				"write", e.Write,
				"move", e.Move,
			)
		},
		OnHalt: func(ctx context.Context, e *domain.HaltEvent) {
			if e.Err != nil {
				logger.Error("run failed",
					"machine", e.Machine,
					"state", e.State,
					"steps", e.Steps,
					"kind", domain.ErrorKind(e.Err),
					"err", e.Err,
				)
				return
			}
			logger.Info("run finished",
				"machine", e.Machine,
				"status", e.Status,
				"steps", e.Steps,
			)
		},
	}
}
