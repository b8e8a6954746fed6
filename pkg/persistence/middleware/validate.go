package middleware

import (
	"context"

	"github.com/aretw0/mnemo/pkg/domain"
	"github.com/aretw0/mnemo/pkg/ports"
)

type validationMiddleware struct {
	next ports.ModelStore
}

// NewValidationMiddleware hides cached models that no longer match their key, such as
// an entry written for another markov order or one that never saw training data. The
// caller sees domain.ErrModelNotFound and retrains.
func NewValidationMiddleware() Middleware {
	return func(next ports.ModelStore) ports.ModelStore {
		return &validationMiddleware{next: next}
	}
}

func (m *validationMiddleware) Save(ctx context.Context, key string, model *domain.BaseModel) error {
	return m.next.Save(ctx, key, model)
}

func (m *validationMiddleware) Load(ctx context.Context, key string) (*domain.BaseModel, error) {
	model, err := m.next.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if !model.Trained() || model.Key() != key {
		return nil, domain.ErrModelNotFound
	}
	return model, nil
}

func (m *validationMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

func (m *validationMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
