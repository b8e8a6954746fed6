package domain

import (
	"errors"
	"fmt"
)

// ErrNotTrained is returned when sampling from a model that never saw training data.
var ErrNotTrained = errors.New("model not trained")

// ErrInfeasible is returned when no sentence can satisfy the constraint.
var ErrInfeasible = errors.New("constraint is infeasible for this corpus")

// ErrZeroMass is returned when a surviving token has no reachable probability mass.
var ErrZeroMass = errors.New("zero reachability mass")

// ErrModelNotFound is returned when a cached model key cannot be found in the store.
var ErrModelNotFound = errors.New("model not found")

// ErrInvalidOrder is returned for a markov order below one.
var ErrInvalidOrder = errors.New("markov order must be positive")

// ErrEmptyCorpus is returned when tokenization yields no sentences.
var ErrEmptyCorpus = errors.New("corpus produced no sentences")

// ErrPoolClosed is returned when submitting work to a stopped pool.
var ErrPoolClosed = errors.New("worker pool closed")

// MassError pinpoints the token whose outgoing mass vanished during normalization.
type MassError struct {
	Layer int
	Token Token
}

func (e *MassError) Error() string {
	return fmt.Sprintf("%s: layer %d token %q", ErrZeroMass, e.Layer, e.Token)
}

func (e *MassError) Unwrap() error {
	return ErrZeroMass
}
