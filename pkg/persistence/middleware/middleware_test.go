package middleware_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/mnemo/pkg/adapters/memory"
	"github.com/aretw0/mnemo/pkg/domain"
	"github.com/aretw0/mnemo/pkg/persistence/middleware"
	"github.com/aretw0/mnemo/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	op, outcome string
}

type recorder struct {
	mu   sync.Mutex
	seen []observation
}

func (r *recorder) ObserveStore(op, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, observation{op, outcome})
}

type failingStore struct{ ports.ModelStore }

func (failingStore) Load(context.Context, string) (*domain.BaseModel, error) {
	return nil, errors.New("disk on fire")
}

func trained(corpus string, order int) *domain.BaseModel {
	tm := domain.TransitionModel{}
	tm.Increment(domain.Start, "a", 1)
	tm.Increment("a", domain.End, 1)
	return &domain.BaseModel{Corpus: corpus, Order: order, Transitions: tm}
}

func TestMetricsMiddleware(t *testing.T) {
	rec := &recorder{}
	store := middleware.NewMetricsMiddleware(rec)(memory.NewStore())
	ctx := context.Background()

	_, _ = store.Load(ctx, "c.txt@1")
	require.NoError(t, store.Save(ctx, "c.txt@1", trained("c.txt", 1)))
	_, _ = store.Load(ctx, "c.txt@1")
	_, _ = store.List(ctx)
	_ = store.Delete(ctx, "c.txt@1")

	assert.Equal(t, []observation{
		{"load", middleware.OutcomeMiss},
		{"save", middleware.OutcomeOK},
		{"load", middleware.OutcomeHit},
		{"list", middleware.OutcomeOK},
		{"delete", middleware.OutcomeOK},
	}, rec.seen)

	broken := middleware.NewMetricsMiddleware(rec)(failingStore{memory.NewStore()})
	_, err := broken.Load(ctx, "x")
	assert.Error(t, err)
	assert.Equal(t, observation{"load", middleware.OutcomeError}, rec.seen[len(rec.seen)-1])
}

func TestValidationMiddleware(t *testing.T) {
	inner := memory.NewStore()
	store := middleware.NewValidationMiddleware()(inner)
	ctx := context.Background()

	// Written under the order-1 key by an order-2 build.
	require.NoError(t, inner.Save(ctx, "c.txt@1", trained("c.txt", 2)))
	_, err := store.Load(ctx, "c.txt@1")
	assert.ErrorIs(t, err, domain.ErrModelNotFound)

	require.NoError(t, inner.Save(ctx, "empty.txt@1", &domain.BaseModel{Corpus: "empty.txt", Order: 1}))
	_, err = store.Load(ctx, "empty.txt@1")
	assert.ErrorIs(t, err, domain.ErrModelNotFound)

	require.NoError(t, store.Save(ctx, "c.txt@2", trained("c.txt", 2)))
	model, err := store.Load(ctx, "c.txt@2")
	require.NoError(t, err)
	assert.Equal(t, 2, model.Order)
}

func TestReadOnlyMiddleware(t *testing.T) {
	inner := memory.NewStore()
	store := middleware.NewReadOnlyMiddleware()(inner)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "c.txt@1", trained("c.txt", 1)))
	_, err := inner.Load(ctx, "c.txt@1")
	assert.ErrorIs(t, err, domain.ErrModelNotFound, "save must not reach the inner store")

	require.NoError(t, inner.Save(ctx, "c.txt@1", trained("c.txt", 1)))
	_, err = store.Load(ctx, "c.txt@1")
	assert.NoError(t, err)
	assert.ErrorIs(t, store.Delete(ctx, "c.txt@1"), middleware.ErrReadOnly)
}

func TestChain(t *testing.T) {
	rec := &recorder{}
	inner := memory.NewStore()
	store := middleware.Chain(inner,
		middleware.NewMetricsMiddleware(rec),
		middleware.NewValidationMiddleware(),
	)
	ctx := context.Background()

	require.NoError(t, inner.Save(ctx, "c.txt@1", trained("c.txt", 3)))
	_, err := store.Load(ctx, "c.txt@1")
	assert.ErrorIs(t, err, domain.ErrModelNotFound)
	// Metrics is outermost, so it sees the validated miss.
	assert.Equal(t, []observation{{"load", middleware.OutcomeMiss}}, rec.seen)
}
