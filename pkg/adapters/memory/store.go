package memory

import (
	"context"
	"sync"

	"github.com/aretw0/mnemo/pkg/domain"
)

// Store implements ports.ModelStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.BaseModel
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.BaseModel),
	}
}

func clone(m *domain.BaseModel) *domain.BaseModel {
	cp := *m
	cp.Transitions = m.Transitions.Clone()
	cp.Frequencies = make(map[domain.Token]int, len(m.Frequencies))
	for k, v := range m.Frequencies {
		cp.Frequencies[k] = v
	}
	return &cp
}

// Save keeps a private copy of the model.
func (s *Store) Save(ctx context.Context, key string, model *domain.BaseModel) error {
	cp := clone(model)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = cp
	return nil
}

// Load returns a copy so callers cannot mutate the stored model.
func (s *Store) Load(ctx context.Context, key string) (*domain.BaseModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	model, ok := s.data[key]
	if !ok {
		return nil, domain.ErrModelNotFound
	}
	return clone(model), nil
}

// Delete removes the model.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns every stored key.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}
