package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/mnemo/pkg/domain"
	"github.com/aretw0/mnemo/pkg/ports"
)

// Overlay highlights one generated sentence on the graph.
type Overlay struct {
	Path []domain.Token
}

// GenerateMermaid renders the normalized layers of m as a left-to-right Mermaid
// flowchart. Each constrained position becomes a subgraph labelled with its
// constraint token, and every edge carries its probability.
// Only edges to End leave the terminal position.
func GenerateMermaid(m ports.ConstrainedModel, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	sb.WriteString("    start((\"START\"))\n")

	k := m.Positions()
	ids := make([]map[domain.Token]string, k)
	window := windows(m)

	for pos := 0; pos < k; pos++ {
		ids[pos] = make(map[domain.Token]string)
		tokens := m.Layer(pos + 1).Sources()

		fmt.Fprintf(&sb, "    subgraph pos%d [\"%s\"]\n", pos, escape(window[pos]))
		for i, tok := range tokens {
			id := fmt.Sprintf("p%d_%d", pos, i)
			ids[pos][tok] = id
			fmt.Fprintf(&sb, "        %s[\"%s\"]\n", id, escape(string(tok)))
		}
		sb.WriteString("    end\n")
	}

	hasEnd := false
	for layer := 0; layer <= k && k > 0; layer++ {
		l := m.Layer(layer)
		for _, src := range l.Sources() {
			from := "start"
			if layer > 0 {
				from = ids[layer-1][src]
			}
			for _, dst := range l.Successors(src) {
				var to string
				switch {
				case layer == k && dst == domain.End:
					to = "finish"
					hasEnd = true
				case layer == k:
					continue
				default:
					to = ids[layer][dst]
				}
				w, _ := l.Weight(src, dst)
				fmt.Fprintf(&sb, "    %s -- \"%.3g\" --> %s\n", from, w, to)
			}
		}
	}
	if hasEnd {
		sb.WriteString("    finish((\"END\"))\n")
	}

	if overlay != nil && len(overlay.Path) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef chosen fill:#ffeb3b,stroke:#fbc02d,stroke-width:3px,color:#000;\n")
		for pos, tok := range overlay.Path {
			if pos >= k {
				break
			}
			if id, ok := ids[pos][tok]; ok {
				fmt.Fprintf(&sb, "    class %s chosen;\n", id)
			}
		}
	}

	return sb.String()
}

// windows labels each position with the constraint tokens it consumes.
func windows(m ports.ConstrainedModel) []string {
	out := make([]string, m.Positions())
	for pos := range out {
		out[pos] = m.Constraint().Window(pos, m.Order()).String()
	}
	return out
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
