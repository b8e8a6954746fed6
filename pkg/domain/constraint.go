package domain

import (
	"strings"
	"unicode"
)

// ConstraintToken is one position of a constraint: a literal prefix or a wildcard.
type ConstraintToken struct {
	Prefix   string `json:"prefix,omitempty"`
	Wildcard bool   `json:"wildcard,omitempty"`
}

// Matches reports whether word satisfies the position, ignoring case.
func (c ConstraintToken) Matches(word string) bool {
	if c.Wildcard {
		return true
	}
	return strings.HasPrefix(strings.ToLower(word), strings.ToLower(c.Prefix))
}

func (c ConstraintToken) String() string {
	if c.Wildcard {
		return Wildcard
	}
	return c.Prefix
}

// Constraint is the ordered list of positions a generated sentence must satisfy.
type Constraint []ConstraintToken

// Len is the number of word positions, not the number of layers.
func (c Constraint) Len() int {
	return len(c)
}

// Layers returns ceil(L/M), the number of constrained layers for markov order M.
func (c Constraint) Layers(order int) int {
	if order < 1 || len(c) == 0 {
		return 0
	}
	return (len(c) + order - 1) / order
}

// Window returns the constraint positions consumed by layer i at markov order M.
// The last window may be shorter than M.
func (c Constraint) Window(layer, order int) Constraint {
	lo := layer * order
	if lo >= len(c) {
		return nil
	}
	hi := lo + order
	if hi > len(c) {
		hi = len(c)
	}
	return c[lo:hi]
}

func (c Constraint) String() string {
	parts := make([]string, len(c))
	for i, t := range c {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// ParseConstraint turns a request string into a Constraint.
//
// Positions are separated by whitespace or commas and lowercased. Double quotes are
// dropped and "*" is a wildcard.
func ParseConstraint(raw string) Constraint {
	raw = strings.ReplaceAll(raw, `"`, "")
	fields := strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	out := make(Constraint, 0, len(fields))
	for _, f := range fields {
		if f == Wildcard {
			out = append(out, ConstraintToken{Wildcard: true})
			continue
		}
		out = append(out, ConstraintToken{Prefix: f})
	}
	return out
}
