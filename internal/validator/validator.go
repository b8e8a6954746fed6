// Package validator checks the structural properties of a built constrained model.
package validator

import (
	"errors"
	"fmt"
	"math"

	"github.com/aretw0/mnemo/pkg/domain"
	"github.com/aretw0/mnemo/pkg/ports"
)

// Tolerance bounds how far a normalized row may drift from 1.
const Tolerance = 1e-9

// Properties checked by Check.
const (
	PropStochastic     = "stochastic"
	PropArcConsistency = "arc-consistency"
	PropConstraint     = "constraint"
	PropEnd            = "end-reachability"
	PropStart          = "start"
	PropGeneration     = "generation"
)

// ErrViolation is wrapped by every error returned from Validate.
var ErrViolation = errors.New("model invariant violated")

// Violation is one failed property at one layer.
type Violation struct {
	Property string
	Layer    int
	Token    domain.Token
	Detail   string
}

func (v Violation) Error() string {
	if v.Token == "" {
		return fmt.Sprintf("%s: layer %d: %s", v.Property, v.Layer, v.Detail)
	}
	return fmt.Sprintf("%s: layer %d: %q %s", v.Property, v.Layer, v.Token, v.Detail)
}

// Options tunes Check.
type Options struct {
	// RequireEnd checks that every terminal token can end a sentence.
	RequireEnd bool
	// Samples is the number of generated sentences checked against the layers.
	Samples int
}

// Check inspects m and returns every violation found. An untrained or infeasible
// model has no layers to inspect and yields none.
func Check(m ports.ConstrainedModel, opts Options) []Violation {
	if !m.Trained() || !m.Feasible() || m.Positions() == 0 {
		return nil
	}

	var out []Violation
	layers := make([]domain.TransitionModel, m.Positions()+1)
	for i := range layers {
		layers[i] = m.Layer(i)
	}

	out = append(out, checkStart(layers[0])...)
	for i, layer := range layers {
		out = append(out, checkRows(i, layer)...)
		if i+1 < len(layers) {
			out = append(out, checkArcs(i, layer, layers[i+1])...)
		}
		if i > 0 {
			out = append(out, checkWindow(i, layer, m.Constraint().Window(i-1, m.Order()))...)
		}
	}
	if opts.RequireEnd {
		out = append(out, checkEnd(len(layers)-1, layers[len(layers)-1])...)
	}
	if opts.Samples > 0 {
		out = append(out, checkSamples(m, layers, opts.Samples)...)
	}
	return out
}

// Validate runs Check and joins the violations into one error.
func Validate(m ports.ConstrainedModel, opts Options) error {
	if !m.Trained() {
		return domain.ErrNotTrained
	}
	violations := Check(m, opts)
	if len(violations) == 0 {
		return nil
	}
	errs := make([]error, len(violations))
	for i, v := range violations {
		errs[i] = v
	}
	return fmt.Errorf("%w: %w", ErrViolation, errors.Join(errs...))
}

func checkStart(layer domain.TransitionModel) []Violation {
	if len(layer) == 1 && layer.Has(domain.Start) {
		return nil
	}
	return []Violation{{
		Property: PropStart,
		Detail:   fmt.Sprintf("expected only %s, found %d sources", domain.Start, len(layer)),
	}}
}

func checkRows(i int, layer domain.TransitionModel) []Violation {
	var out []Violation
	for _, src := range layer.Sources() {
		var sum float64
		for _, w := range layer[src] {
			sum += w
		}
		if math.Abs(sum-1) > Tolerance {
			out = append(out, Violation{
				Property: PropStochastic,
				Layer:    i,
				Token:    src,
				Detail:   fmt.Sprintf("weights sum to %.12f", sum),
			})
		}
	}
	return out
}

func checkArcs(i int, layer, next domain.TransitionModel) []Violation {
	var out []Violation
	for _, src := range layer.Sources() {
		for _, dst := range layer.Successors(src) {
			if !next.Has(dst) {
				out = append(out, Violation{
					Property: PropArcConsistency,
					Layer:    i,
					Token:    src,
					Detail:   fmt.Sprintf("points at %q, missing from layer %d", dst, i+1),
				})
			}
		}
	}
	return out
}

func checkWindow(i int, layer domain.TransitionModel, window domain.Constraint) []Violation {
	var out []Violation
	for _, src := range layer.Sources() {
		words := src.Words()
		if len(words) < len(window) {
			out = append(out, Violation{Property: PropConstraint, Layer: i, Token: src, Detail: "is shorter than its window"})
			continue
		}
		for k, pos := range window {
			if !pos.Matches(words[k]) {
				out = append(out, Violation{
					Property: PropConstraint,
					Layer:    i,
					Token:    src,
					Detail:   fmt.Sprintf("word %q does not match %q", words[k], pos.String()),
				})
				break
			}
		}
	}
	return out
}

func checkEnd(i int, layer domain.TransitionModel) []Violation {
	var out []Violation
	for _, src := range layer.Sources() {
		if _, ok := layer.Weight(src, domain.End); !ok {
			out = append(out, Violation{Property: PropEnd, Layer: i, Token: src, Detail: "cannot end a sentence"})
		}
	}
	return out
}

func checkSamples(m ports.ConstrainedModel, layers []domain.TransitionModel, n int) []Violation {
	seqs, err := m.GenerateN(n)
	if err != nil {
		return []Violation{{Property: PropGeneration, Detail: err.Error()}}
	}

	var out []Violation
	for _, seq := range seqs {
		if len(seq) != m.Positions() {
			out = append(out, Violation{
				Property: PropGeneration,
				Detail:   fmt.Sprintf("sentence holds %d tokens, want %d", len(seq), m.Positions()),
			})
			continue
		}
		prev := domain.Start
		for i, tok := range seq {
			if _, ok := layers[i].Weight(prev, tok); !ok {
				out = append(out, Violation{
					Property: PropGeneration,
					Layer:    i,
					Token:    prev,
					Detail:   fmt.Sprintf("has no edge to sampled %q", tok),
				})
				break
			}
			prev = tok
		}
	}
	return out
}
