package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/mnemo/pkg/domain"
	"github.com/aretw0/mnemo/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnStage(ctx, &domain.StageEvent{Stage: domain.StageFilter, Removed: 7, Duration: time.Millisecond})
	hooks.OnStage(ctx, &domain.StageEvent{Stage: domain.StageArcConsistency, Removed: 0})
	hooks.OnBuild(ctx, &domain.BuildEvent{Trained: true, Feasible: true})
	hooks.OnBuild(ctx, &domain.BuildEvent{Trained: true})
	hooks.OnBuild(ctx, &domain.BuildEvent{})
	hooks.OnBuild(ctx, &domain.BuildEvent{Trained: true, Err: errors.New("zero mass")})

	assert.Equal(t, 7.0, testutil.ToFloat64(m.Removed.WithLabelValues("filter")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Removed.WithLabelValues("arc_consistency")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Builds.WithLabelValues(observability.OutcomeFeasible)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Builds.WithLabelValues(observability.OutcomeInfeasible)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Builds.WithLabelValues(observability.OutcomeUntrained)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Builds.WithLabelValues(observability.OutcomeError)))
}

func TestMetrics_StoreAndRequests(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())

	m.ObserveStore("load", "hit", time.Millisecond)
	m.ObserveStore("load", "hit", time.Millisecond)
	m.ObserveRequest("http", "ok")
	m.SetQueueDepth(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StoreOps.WithLabelValues("load", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("http", "ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.QueueDepth))
}

func TestCombine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m := observability.NewMetrics(prometheus.NewRegistry())

	var seen int
	counting := domain.BuildHooks{OnBuild: func(context.Context, *domain.BuildEvent) { seen++ }}
	hooks := observability.Combine(m.Hooks(), observability.LoggingHooks(logger), counting)

	hooks.OnStage(context.Background(), &domain.StageEvent{Stage: domain.StageNormalize})
	hooks.OnBuild(context.Background(), &domain.BuildEvent{Constraint: "t w d", Trained: true, Feasible: true})

	assert.Equal(t, 1, seen)
	assert.Contains(t, buf.String(), "stage=normalize")
	assert.Contains(t, buf.String(), `constraint="t w d"`)
	assert.Contains(t, buf.String(), "outcome=feasible")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Builds.WithLabelValues(observability.OutcomeFeasible)))
}
