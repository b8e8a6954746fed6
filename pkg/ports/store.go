package ports

import (
	"context"

	"github.com/aretw0/mnemo/pkg/domain"
)

// ModelStore persists trained base models so a corpus is only trained once.
type ModelStore interface {
	// Save persists the model under key, replacing any previous entry.
	Save(ctx context.Context, key string, model *domain.BaseModel) error

	// Load retrieves the model stored under key.
	// Returns domain.ErrModelNotFound if the key does not exist.
	Load(ctx context.Context, key string) (*domain.BaseModel, error)

	// Delete removes the model stored under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns every stored key.
	List(ctx context.Context) ([]string, error)
}
