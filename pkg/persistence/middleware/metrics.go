package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/mnemo/pkg/domain"
	"github.com/aretw0/mnemo/pkg/ports"
)

// Store operation outcomes reported to a StoreRecorder.
const (
	OutcomeHit   = "hit"
	OutcomeMiss  = "miss"
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// StoreRecorder receives one observation per store call.
type StoreRecorder interface {
	ObserveStore(op, outcome string, elapsed time.Duration)
}

type metricsMiddleware struct {
	next     ports.ModelStore
	recorder StoreRecorder
}

// NewMetricsMiddleware reports latency and outcome of every store call.
func NewMetricsMiddleware(recorder StoreRecorder) Middleware {
	return func(next ports.ModelStore) ports.ModelStore {
		return &metricsMiddleware{next: next, recorder: recorder}
	}
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}

func (m *metricsMiddleware) Save(ctx context.Context, key string, model *domain.BaseModel) error {
	began := time.Now()
	err := m.next.Save(ctx, key, model)
	m.recorder.ObserveStore("save", outcome(err), time.Since(began))
	return err
}

func (m *metricsMiddleware) Load(ctx context.Context, key string) (*domain.BaseModel, error) {
	began := time.Now()
	model, err := m.next.Load(ctx, key)

	result := OutcomeHit
	switch {
	case errors.Is(err, domain.ErrModelNotFound):
		result = OutcomeMiss
	case err != nil:
		result = OutcomeError
	}
	m.recorder.ObserveStore("load", result, time.Since(began))
	return model, err
}

func (m *metricsMiddleware) Delete(ctx context.Context, key string) error {
	began := time.Now()
	err := m.next.Delete(ctx, key)
	m.recorder.ObserveStore("delete", outcome(err), time.Since(began))
	return err
}

func (m *metricsMiddleware) List(ctx context.Context) ([]string, error) {
	began := time.Now()
	keys, err := m.next.List(ctx)
	m.recorder.ObserveStore("list", outcome(err), time.Since(began))
	return keys, err
}
