package domain

const (
	// DefaultOrder is the markov order used when none is configured.
	DefaultOrder = 1

	// Wildcard matches any word at its constraint position.
	Wildcard = "*"
)
