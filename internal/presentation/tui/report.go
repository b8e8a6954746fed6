package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/mnemo"
	"github.com/aretw0/mnemo/pkg/domain"
)

// Report renders a generation result as markdown.
func Report(res *mnemo.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Mnemonics for `%s`\n\n", res.Constraint)
	fmt.Fprintf(&b, "Layers: `%s`\n\n", LayerChain(res.LayerSizes))

	if !res.Feasible {
		b.WriteString("**Infeasible**: no sentence in the corpus can satisfy this constraint.\n")
		return b.String()
	}

	b.WriteString("| # | Sentence | Probability |\n")
	b.WriteString("|---|----------|-------------|\n")
	for i, s := range res.Sentences {
		fmt.Fprintf(&b, "| %d | %s | %.4g |\n", i+1, escapeCell(s.Text), s.Probability)
	}

	if len(res.Removed) == 0 {
		return b.String()
	}
	b.WriteString("\n## Pruned words\n\n")
	b.WriteString("| # | Constraint | Arc consistency |\n")
	b.WriteString("|---|------------|-----------------|\n")
	byConstraint := res.Removed[domain.CauseConstraint.String()]
	byArc := res.Removed[domain.CauseArcConsistency.String()]
	for i := range res.Sentences {
		fmt.Fprintf(&b, "| %d | %s | %s |\n", i+1, removedCell(byConstraint, i), removedCell(byArc, i))
	}
	return b.String()
}

// Plain renders the sentences one per line.
func Plain(res *mnemo.Result) string {
	var b strings.Builder
	for _, s := range res.Sentences {
		b.WriteString(s.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// LayerChain formats layer sizes as "1 --> 1 --> 2".
func LayerChain(sizes []int) string {
	parts := make([]string, len(sizes))
	for i, n := range sizes {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, " --> ")
}

func removedCell(groups [][]string, i int) string {
	if i >= len(groups) {
		return "-"
	}
	words := make([]string, len(groups[i]))
	for j, w := range groups[i] {
		if w == "" {
			w = "-"
		}
		words[j] = w
	}
	return escapeCell(strings.Join(words, ", "))
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
