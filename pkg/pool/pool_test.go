package pool_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/mnemo/pkg/domain"
	"github.com/aretw0/mnemo/pkg/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type depthRecorder struct {
	mu  sync.Mutex
	max int
}

func (d *depthRecorder) SetQueueDepth(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n > d.max {
		d.max = n
	}
}

func TestPool_RunsAllTasks(t *testing.T) {
	p := pool.New(pool.WithWorkers(3))
	p.Start()

	var ran atomic.Int32
	var tickets []*pool.Ticket
	for i := 0; i < 50; i++ {
		tk, err := p.Submit(context.Background(), func(context.Context) error {
			ran.Add(1)
			return nil
		})
		require.NoError(t, err)
		tickets = append(tickets, tk)
	}

	for _, tk := range tickets {
		require.NoError(t, tk.Wait(context.Background()))
	}
	require.NoError(t, p.Stop())
	assert.Equal(t, int32(50), ran.Load())
}

func TestPool_TicketIDsAreUnique(t *testing.T) {
	p := pool.New()
	p.Start()
	defer p.Stop()

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		tk, err := p.Submit(context.Background(), func(context.Context) error { return nil })
		require.NoError(t, err)
		assert.False(t, seen[tk.ID])
		seen[tk.ID] = true
	}
}

func TestPool_ReturnsTaskError(t *testing.T) {
	p := pool.New()
	p.Start()
	defer p.Stop()

	err := p.Do(context.Background(), func(context.Context) error { return domain.ErrInfeasible })
	assert.ErrorIs(t, err, domain.ErrInfeasible)
}

func TestPool_RecoversPanic(t *testing.T) {
	p := pool.New(pool.WithWorkers(1))
	p.Start()
	defer p.Stop()

	err := p.Do(context.Background(), func(context.Context) error { panic("boom") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	// The worker survives.
	assert.NoError(t, p.Do(context.Background(), func(context.Context) error { return nil }))
}

func TestPool_SubmitAfterStop(t *testing.T) {
	p := pool.New()
	p.Start()
	require.NoError(t, p.Stop())

	_, err := p.Submit(context.Background(), func(context.Context) error { return nil })
	assert.ErrorIs(t, err, domain.ErrPoolClosed)
	assert.NoError(t, p.Stop())
}

func TestPool_StopDrainsQueue(t *testing.T) {
	p := pool.New(pool.WithWorkers(1))
	p.Start()

	release := make(chan struct{})
	var ran atomic.Int32
	_, err := p.Submit(context.Background(), func(context.Context) error {
		<-release
		ran.Add(1)
		return nil
	})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := p.Submit(context.Background(), func(context.Context) error {
			ran.Add(1)
			return nil
		})
		require.NoError(t, err)
	}

	stopped := make(chan error)
	go func() { stopped <- p.Stop() }()
	close(release)

	require.NoError(t, <-stopped)
	assert.Equal(t, int32(6), ran.Load())
	assert.Equal(t, 0, p.Len())
}

func TestPool_StopBeforeStartFailsPending(t *testing.T) {
	p := pool.New()
	tk, err := p.Submit(context.Background(), func(context.Context) error { return nil })
	require.NoError(t, err)

	require.NoError(t, p.Stop())
	<-tk.Done()
	assert.ErrorIs(t, tk.Err(), domain.ErrPoolClosed)
}

func TestPool_StartedTaskIgnoresCancellation(t *testing.T) {
	p := pool.New(pool.WithWorkers(1))
	p.Start()
	defer p.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	release := make(chan struct{})
	var ctxErr error

	tk, err := p.Submit(ctx, func(ctx context.Context) error {
		close(started)
		<-release
		ctxErr = ctx.Err()
		return nil
	})
	require.NoError(t, err)

	<-started
	cancel()
	waitCtx, waitCancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer waitCancel()
	assert.ErrorIs(t, tk.Wait(waitCtx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, tk.Wait(context.Background()))
	assert.NoError(t, ctxErr)
}

func TestPool_ReportsQueueDepth(t *testing.T) {
	rec := &depthRecorder{}
	p := pool.New(pool.WithWorkers(1), pool.WithObserver(rec))

	for i := 0; i < 4; i++ {
		_, err := p.Submit(context.Background(), func(context.Context) error { return nil })
		require.NoError(t, err)
	}
	p.Start()
	require.NoError(t, p.Stop())

	assert.Equal(t, 4, rec.max)
}

func TestPool_DefaultWorkers(t *testing.T) {
	assert.Equal(t, pool.DefaultWorkers, pool.New(pool.WithWorkers(0)).Workers())
	assert.Equal(t, 5, pool.New(pool.WithWorkers(5)).Workers())
}

func TestCall(t *testing.T) {
	t.Run("Nil Pool Runs Inline", func(t *testing.T) {
		v, err := pool.Call(context.Background(), nil, func(context.Context) (int, error) { return 7, nil })
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	})

	t.Run("Returns Value And Error", func(t *testing.T) {
		p := pool.New()
		p.Start()
		defer p.Stop()

		v, err := pool.Call(context.Background(), p, func(context.Context) (string, error) {
			return "partial", domain.ErrInfeasible
		})
		assert.ErrorIs(t, err, domain.ErrInfeasible)
		assert.Equal(t, "partial", v)
	})

	t.Run("Abandoned Call Drops The Late Value", func(t *testing.T) {
		p := pool.New(pool.WithWorkers(1))
		p.Start()

		release := make(chan struct{})
		finished := make(chan struct{})
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		v, err := pool.Call(ctx, p, func(context.Context) (*int, error) {
			defer close(finished)
			<-release
			n := 1
			return &n, nil
		})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Nil(t, v)

		close(release)
		<-finished
		require.NoError(t, p.Stop())
	})

	t.Run("Closed Pool", func(t *testing.T) {
		p := pool.New()
		p.Start()
		require.NoError(t, p.Stop())

		_, err := pool.Call(context.Background(), p, func(context.Context) (int, error) { return 1, nil })
		assert.ErrorIs(t, err, domain.ErrPoolClosed)
	})
}
