package request

import (
	"errors"
	"fmt"

	"github.com/aretw0/mnemo/pkg/domain"
)

const (
	// DefaultCount is the number of sentences generated when a request names none.
	DefaultCount = 1
	// MaxCount bounds the sentences one request may ask for.
	MaxCount = 100
)

var ErrInvalidCount = errors.New("sentence count out of range")

// Request is a generation request as it arrives from a transport.
type Request struct {
	Constraint string `json:"constraint"`
	Count      int    `json:"count,omitempty"`
}

// Parsed is a validated request.
type Parsed struct {
	Constraint domain.Constraint
	Count      int
}

// Parse sanitizes r and turns its constraint string into positions.
// A zero count falls back to fallback, then to DefaultCount.
func Parse(r Request, fallback int) (Parsed, error) {
	raw, err := Sanitize(r.Constraint)
	if err != nil {
		return Parsed{}, err
	}

	count := r.Count
	if count == 0 {
		count = fallback
	}
	if count == 0 {
		count = DefaultCount
	}
	if count < 0 || count > MaxCount {
		return Parsed{}, fmt.Errorf("%w: %d (max %d)", ErrInvalidCount, count, MaxCount)
	}

	return Parsed{Constraint: domain.ParseConstraint(raw), Count: count}, nil
}
