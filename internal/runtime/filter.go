package runtime

import (
	"unicode/utf8"

	"github.com/aretw0/mnemo/pkg/domain"
)

// Policy holds the optional per-word checks applied on top of the prefix match.
type Policy struct {
	// MinWordLength rejects constrained words shorter than this many runes. Zero disables it.
	MinWordLength int
	// StopWords rejects constrained words found in the set.
	StopWords map[string]struct{}
	// RequireEnd keeps only final-position tokens that can end a sentence.
	RequireEnd bool
}

// DefaultPolicy requires sentences to end on a token seen before End and applies
// no word-level filters.
func DefaultPolicy() Policy {
	return Policy{RequireEnd: true}
}

func (p Policy) accepts(word string) bool {
	if p.MinWordLength > 0 && utf8.RuneCountInString(word) < p.MinWordLength {
		return false
	}
	if _, stop := p.StopWords[word]; stop {
		return false
	}
	return true
}

// Filter prunes every source token that violates its position. Removed tokens are
// recorded under CauseConstraint. It returns the number of removals.
func Filter(layers Layers, c domain.Constraint, order int, p Policy, removed *Removed) int {
	total := 0
	for i, layer := range layers {
		window := c.Window(i, order)
		final := i == len(layers)-1

		var drop []domain.Token
		for _, src := range layer.Sources() {
			if !admits(layer, src, window, order, final, p) {
				drop = append(drop, src)
			}
		}

		for _, src := range drop {
			removed.record(domain.CauseConstraint, i, src)
			delete(layer, src)
		}
		total += len(drop)
	}
	return total
}

func admits(layer domain.TransitionModel, src domain.Token, window domain.Constraint, order int, final bool, p Policy) bool {
	if src.IsSentinel() {
		return false
	}
	words := src.Words()
	if len(words) != order {
		return false
	}
	for k, pos := range window {
		if !pos.Matches(words[k]) {
			return false
		}
		if !p.accepts(words[k]) {
			return false
		}
	}
	if final && p.RequireEnd {
		if _, ok := layer.Weight(src, domain.End); !ok {
			return false
		}
	}
	return true
}
