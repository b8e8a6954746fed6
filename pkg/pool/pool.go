// Package pool runs build requests on a fixed set of workers fed by a shared queue.
//
// Producers enqueue and signal; idle workers block on a condition variable until
// work arrives. A job that has started always runs to completion: its context is
// detached from the submitter's cancellation.
package pool

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/mnemo/pkg/domain"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers matches the listener's historical thread count.
const DefaultWorkers = 2

// Task is one unit of work.
type Task func(ctx context.Context) error

// Observer receives queue depth changes.
type Observer interface {
	SetQueueDepth(n int)
}

// Ticket tracks a submitted task.
type Ticket struct {
	ID   string
	done chan struct{}
	err  error
}

// Done is closed once the task has finished.
func (t *Ticket) Done() <-chan struct{} { return t.done }

// Err returns the task result. Only meaningful after Done is closed.
func (t *Ticket) Err() error { return t.err }

// Wait blocks until the task finishes or ctx is done. A cancelled wait does not
// stop the task.
func (t *Ticket) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type job struct {
	ctx    context.Context
	task   Task
	ticket *Ticket
}

// Pool is a bounded worker pool.
type Pool struct {
	workers  int
	logger   *slog.Logger
	observer Observer

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []job
	started bool
	closed  bool
	group   errgroup.Group
}

// Option configures a Pool.
type Option func(*Pool)

// WithWorkers sets the number of workers. Values below one fall back to DefaultWorkers.
func WithWorkers(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pool) {
		p.logger = logger
	}
}

// WithObserver reports queue depth, typically to a metrics gauge.
func WithObserver(o Observer) Option {
	return func(p *Pool) {
		p.observer = o
	}
}

// New creates a pool. Call Start before submitting work.
func New(opts ...Option) *Pool {
	p := &Pool{
		workers: DefaultWorkers,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	p.cond = sync.NewCond(&p.mu)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Workers returns the configured worker count.
func (p *Pool) Workers() int { return p.workers }

// Start launches the workers. Calling it twice is a no-op.
func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true
	for i := 0; i < p.workers; i++ {
		id := i
		p.group.Go(func() error {
			p.work(id)
			return nil
		})
	}
	p.logger.Debug("pool started", "workers", p.workers)
}

// Submit enqueues task and wakes one idle worker.
func (p *Pool) Submit(ctx context.Context, task Task) (*Ticket, error) {
	t := &Ticket{ID: uuid.NewString(), done: make(chan struct{})}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, domain.ErrPoolClosed
	}
	p.queue = append(p.queue, job{ctx: context.WithoutCancel(ctx), task: task, ticket: t})
	depth := len(p.queue)
	p.mu.Unlock()

	p.cond.Signal()
	p.report(depth)
	return t, nil
}

// Do submits task and waits for it.
func (p *Pool) Do(ctx context.Context, task Task) error {
	t, err := p.Submit(ctx, task)
	if err != nil {
		return err
	}
	return t.Wait(ctx)
}

// Call runs fn on p and returns its value once fn has finished. A nil pool runs
// fn inline. When ctx ends first Call returns the zero value with ctx.Err, and
// fn keeps running on its worker without touching the caller's state.
func Call[T any](ctx context.Context, p *Pool, fn func(context.Context) (T, error)) (T, error) {
	if p == nil {
		return fn(ctx)
	}
	out := make(chan T, 1)
	err := p.Do(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		out <- v
		return err
	})
	select {
	case v := <-out:
		return v, err
	default:
		var zero T
		return zero, err
	}
}

// Len returns the number of queued, not yet started, tasks.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Stop refuses new work, lets the workers drain the queue and waits for them.
func (p *Pool) Stop() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	started := p.started
	pending := p.queue
	if !started {
		p.queue = nil
	}
	p.mu.Unlock()

	p.cond.Broadcast()
	if !started {
		for _, j := range pending {
			j.ticket.err = domain.ErrPoolClosed
			close(j.ticket.done)
		}
		p.report(0)
		return nil
	}
	err := p.group.Wait()
	p.logger.Debug("pool stopped")
	return err
}

func (p *Pool) work(id int) {
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		j := p.queue[0]
		p.queue[0] = job{}
		p.queue = p.queue[1:]
		depth := len(p.queue)
		p.mu.Unlock()

		p.report(depth)
		p.run(id, j)
	}
}

func (p *Pool) run(worker int, j job) {
	defer close(j.ticket.done)
	defer func() {
		if r := recover(); r != nil {
			j.ticket.err = fmt.Errorf("task %s panicked: %v", j.ticket.ID, r)
			p.logger.Error("task panicked", "worker", worker, "id", j.ticket.ID, "panic", r)
		}
	}()
	j.ticket.err = j.task(j.ctx)
	if j.ticket.err != nil {
		p.logger.Debug("task failed", "worker", worker, "id", j.ticket.ID, "err", j.ticket.err)
	}
}

func (p *Pool) report(depth int) {
	if p.observer != nil {
		p.observer.SetQueueDepth(depth)
	}
}
