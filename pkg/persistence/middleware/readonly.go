package middleware

import (
	"context"
	"errors"

	"github.com/aretw0/mnemo/pkg/domain"
	"github.com/aretw0/mnemo/pkg/ports"
)

// ErrReadOnly is returned when deleting from a read-only store.
var ErrReadOnly = errors.New("model store is read-only")

type readOnlyMiddleware struct {
	next ports.ModelStore
}

// NewReadOnlyMiddleware serves a shared cache without ever writing to it.
// Saves are dropped silently so that training still succeeds; deletes fail.
func NewReadOnlyMiddleware() Middleware {
	return func(next ports.ModelStore) ports.ModelStore {
		return &readOnlyMiddleware{next: next}
	}
}

func (m *readOnlyMiddleware) Save(ctx context.Context, key string, model *domain.BaseModel) error {
	return nil
}

func (m *readOnlyMiddleware) Load(ctx context.Context, key string) (*domain.BaseModel, error) {
	return m.next.Load(ctx, key)
}

func (m *readOnlyMiddleware) Delete(ctx context.Context, key string) error {
	return ErrReadOnly
}

func (m *readOnlyMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
