package domain

import (
	"fmt"
	"path/filepath"
	"time"
)

// BaseModel is the unconstrained chain learned from one corpus.
// It is immutable once trained and is the unit stored by a ModelStore.
type BaseModel struct {
	Corpus      string          `json:"corpus"`
	Order       int             `json:"order"`
	Transitions TransitionModel `json:"transitions"`
	Frequencies map[Token]int   `json:"frequencies"`
	Sentences   int             `json:"sentences"`
	TrainedAt   time.Time       `json:"trained_at"`
}

// Trained reports whether the model saw at least one sentence.
func (m *BaseModel) Trained() bool {
	return m != nil && len(m.Transitions) > 0
}

// Key identifies the model inside a ModelStore.
func (m *BaseModel) Key() string {
	return ModelKey(m.Corpus, m.Order)
}

// ModelKey derives the cache key from the corpus file name and the markov order.
func ModelKey(corpus string, order int) string {
	return fmt.Sprintf("%s@%d", filepath.Base(corpus), order)
}
