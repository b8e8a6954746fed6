package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/mnemo/pkg/domain"
)

// Engine builds constrained models out of a shared, read-only base chain.
// A single Engine may serve concurrent Build calls.
type Engine struct {
	policy      Policy
	hooks       domain.BuildHooks
	logger      *slog.Logger
	diagnostics bool
	source      Source
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithPolicy replaces the default filter policy.
func WithPolicy(p Policy) EngineOption {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithBuildHooks registers observability callbacks.
func WithBuildHooks(hooks domain.BuildHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithDiagnostics logs per-stage timings and layer sizes at debug level.
func WithDiagnostics(enabled bool) EngineOption {
	return func(e *Engine) {
		e.diagnostics = enabled
	}
}

// WithSource sets the random source handed to every built model.
func WithSource(s Source) EngineOption {
	return func(e *Engine) {
		if s != nil {
			e.source = s
		}
	}
}

// NewEngine creates a new engine with the default policy.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		policy: DefaultPolicy(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		source: DefaultSource(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the filter policy in use.
func (e *Engine) Policy() Policy { return e.policy }

// Build runs the constrained pipeline for c against base.
//
// An untrained base yields an untrained model rather than an error, and an
// infeasible constraint yields a model whose Feasible reports false. Only a numerical
// defect during normalization fails the build.
func (e *Engine) Build(ctx context.Context, base *domain.BaseModel, c domain.Constraint) (*Model, error) {
	began := time.Now()
	m := newModel(c, e.source)

	if !base.Trained() {
		e.finish(ctx, m, began, nil)
		return m, nil
	}
	m.trained = true
	m.order = base.Order

	k := c.Layers(base.Order)
	m.removed = NewRemoved(k)
	if k == 0 {
		m.freeze(Layers{})
		e.finish(ctx, m, began, nil)
		return m, nil
	}

	t := time.Now()
	layers := Replicate(base.Transitions, k)
	e.stage(ctx, domain.StageReplicate, c, t, 0, layers)

	t = time.Now()
	n := Filter(layers, c, base.Order, e.policy, m.removed)
	e.stage(ctx, domain.StageFilter, c, t, n, layers)

	t = time.Now()
	n = EnforceArcConsistency(layers, m.removed)
	e.stage(ctx, domain.StageArcConsistency, c, t, n, layers)

	t = time.Now()
	layers = PrependStart(layers, base.Frequencies)
	e.stage(ctx, domain.StageStart, c, t, 0, layers)

	t = time.Now()
	if err := Normalize(layers); err != nil {
		err = fmt.Errorf("normalize %q: %w", c.String(), err)
		e.finish(ctx, m, began, err)
		return nil, err
	}
	e.stage(ctx, domain.StageNormalize, c, t, 0, layers)

	m.freeze(layers)
	e.finish(ctx, m, began, nil)
	return m, nil
}

func (e *Engine) stage(ctx context.Context, stage domain.Stage, c domain.Constraint, began time.Time, removed int, layers Layers) {
	ev := &domain.StageEvent{
		Timestamp:  time.Now(),
		Stage:      stage,
		Constraint: c.String(),
		Duration:   time.Since(began),
		Removed:    removed,
		LayerSizes: layers.Sizes(),
	}
	if e.diagnostics {
		e.logger.DebugContext(ctx, "build stage",
			"stage", stage,
			"duration", ev.Duration,
			"removed", removed,
			"layer_sizes", ev.LayerSizes,
		)
	}
	if e.hooks.OnStage != nil {
		e.hooks.OnStage(ctx, ev)
	}
}

func (e *Engine) finish(ctx context.Context, m *Model, began time.Time, err error) {
	ev := &domain.BuildEvent{
		Timestamp:  time.Now(),
		Constraint: m.constraint.String(),
		Duration:   time.Since(began),
		LayerSizes: m.LayerSizes(),
		Trained:    m.trained,
		Feasible:   err == nil && m.Feasible(),
		Err:        err,
	}
	switch {
	case err != nil:
		e.logger.ErrorContext(ctx, "build failed", "constraint", ev.Constraint, "err", err)
	case !m.trained:
		e.logger.WarnContext(ctx, "build on untrained model", "constraint", ev.Constraint)
	case !ev.Feasible:
		e.logger.InfoContext(ctx, "constraint infeasible", "constraint", ev.Constraint, "layer_sizes", ev.LayerSizes)
	default:
		e.logger.DebugContext(ctx, "build complete", "constraint", ev.Constraint, "duration", ev.Duration)
	}
	if e.diagnostics {
		e.logger.DebugContext(ctx, "removed nodes",
			"constraint_removed", m.removed.Count(domain.CauseConstraint),
			"arc_removed", m.removed.Count(domain.CauseArcConsistency),
		)
	}
	if e.hooks.OnBuild != nil {
		e.hooks.OnBuild(ctx, ev)
	}
}
