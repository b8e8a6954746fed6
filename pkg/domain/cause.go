package domain

import "fmt"

// RemovalCause tags why a token was pruned from a layer.
type RemovalCause int

const (
	// CauseConstraint marks tokens failing the position predicate.
	CauseConstraint RemovalCause = iota
	// CauseArcConsistency marks tokens left without a legal successor.
	CauseArcConsistency
)

// Causes lists every cause in reporting order.
var Causes = []RemovalCause{CauseConstraint, CauseArcConsistency}

func (c RemovalCause) String() string {
	switch c {
	case CauseConstraint:
		return "constraint"
	case CauseArcConsistency:
		return "arc_consistency"
	default:
		return fmt.Sprintf("cause(%d)", int(c))
	}
}

// ParseRemovalCause is the inverse of String.
func ParseRemovalCause(s string) (RemovalCause, error) {
	switch s {
	case "constraint":
		return CauseConstraint, nil
	case "arc_consistency", "arc":
		return CauseArcConsistency, nil
	}
	return 0, fmt.Errorf("unknown removal cause %q", s)
}
