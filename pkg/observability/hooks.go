package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/mnemo/pkg/domain"
)

// LoggingHooks logs every stage at debug level and every build at info level.
func LoggingHooks(logger *slog.Logger) domain.BuildHooks {
	return domain.BuildHooks{
		OnStage: func(ctx context.Context, ev *domain.StageEvent) {
			logger.DebugContext(ctx, "stage",
				"stage", ev.Stage,
				"constraint", ev.Constraint,
				"duration", ev.Duration,
				"removed", ev.Removed,
			)
		},
		OnBuild: func(ctx context.Context, ev *domain.BuildEvent) {
			attrs := []any{
				"constraint", ev.Constraint,
				"outcome", BuildOutcome(ev),
				"duration", ev.Duration,
				"layer_sizes", ev.LayerSizes,
			}
			if ev.Err != nil {
				logger.ErrorContext(ctx, "build", append(attrs, "err", ev.Err)...)
				return
			}
			logger.InfoContext(ctx, "build", attrs...)
		},
	}
}

// Combine fans every event out to each hook set in order.
func Combine(all ...domain.BuildHooks) domain.BuildHooks {
	return domain.BuildHooks{
		OnStage: func(ctx context.Context, ev *domain.StageEvent) {
			for _, h := range all {
				if h.OnStage != nil {
					h.OnStage(ctx, ev)
				}
			}
		},
		OnBuild: func(ctx context.Context, ev *domain.BuildEvent) {
			for _, h := range all {
				if h.OnBuild != nil {
					h.OnBuild(ctx, ev)
				}
			}
		},
	}
}
