package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/mnemo/internal/logging"
	"github.com/aretw0/mnemo/pkg/domain"
	"github.com/aretw0/mnemo/pkg/ports"
)

// TrainFunc produces a base model when no cached copy exists.
type TrainFunc func(ctx context.Context) (*domain.BaseModel, error)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates model access, ensuring each key is trained at most once.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.ModelStore // nil disables persistence

	mu       sync.Mutex
	locks    map[string]*lockEntry
	resident map[string]*domain.BaseModel

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL bounds how long a distributed lock is held (default 2m).
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager over store. A nil store keeps models in memory only.
func NewManager(store ports.ModelStore, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		locks:    make(map[string]*lockEntry),
		resident: make(map[string]*domain.BaseModel),
		lockTTL:  2 * time.Minute,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(key) after unlocking.
func (m *Manager) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		entry = &lockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

func (m *Manager) cached(key string) (*domain.BaseModel, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	model, ok := m.resident[key]
	return model, ok
}

func (m *Manager) keep(key string, model *domain.BaseModel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resident[key] = model
}

// LoadOrTrain returns the model for key from memory, then the store, and finally by
// calling train. A freshly trained model is written back to the store.
// The returned model is shared and must be treated as read-only.
func (m *Manager) LoadOrTrain(ctx context.Context, key string, train TrainFunc) (*domain.BaseModel, error) {
	if model, ok := m.cached(key); ok {
		return model, nil
	}

	var model *domain.BaseModel
	err := m.WithLock(ctx, key, func(ctx context.Context) error {
		if cached, ok := m.cached(key); ok {
			model = cached
			return nil
		}

		if m.store != nil {
			loaded, err := m.store.Load(ctx, key)
			switch {
			case err == nil:
				m.logger.DebugContext(ctx, "model loaded from store", "key", key)
				model = loaded
				m.keep(key, model)
				return nil
			case !errors.Is(err, domain.ErrModelNotFound):
				m.logger.WarnContext(ctx, "model store unavailable, retraining", "key", key, "err", err)
			}
		}

		began := time.Now()
		trained, err := train(ctx)
		if err != nil {
			return fmt.Errorf("train %s: %w", key, err)
		}
		m.logger.InfoContext(ctx, "model trained",
			"key", key,
			"sentences", trained.Sentences,
			"tokens", len(trained.Transitions),
			"duration", time.Since(began),
		)

		if m.store != nil {
			// A failed write only costs a retrain later.
			if err := m.store.Save(ctx, key, trained); err != nil {
				m.logger.WarnContext(ctx, "failed to cache model", "key", key, "err", err)
			}
		}
		model = trained
		m.keep(key, model)
		return nil
	})
	return model, err
}

// Evict drops key from memory and from the store.
func (m *Manager) Evict(ctx context.Context, key string) error {
	return m.WithLock(ctx, key, func(ctx context.Context) error {
		m.mu.Lock()
		delete(m.resident, key)
		m.mu.Unlock()

		if m.store == nil {
			return nil
		}
		return m.store.Delete(ctx, key)
	})
}

// List returns the keys known to the store, or the resident keys without one.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	if m.store != nil {
		return m.store.List(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.resident))
	for k := range m.resident {
		keys = append(keys, k)
	}
	return keys, nil
}

// Store returns the underlying model store, which may be nil.
func (m *Manager) Store() ports.ModelStore {
	return m.store
}

// WithLock executes a function while holding the lock for the key.
func (m *Manager) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := m.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(key)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, key, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"key", key,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
