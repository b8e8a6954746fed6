package request

import (
	"strings"
)

// Wire protocol separators. A reply holds three sections; each section holds one
// group per generated sentence.
const (
	SectionSep = "$$$"
	GroupSep   = "::"
)

// Reply is the payload returned to a socket client.
type Reply struct {
	Sentences []string
	// ByConstraint and ByArcConsistency hold, per sentence, one sampled removed
	// word for every constrained position. Empty strings mark positions where
	// nothing was removed.
	ByConstraint     [][]string
	ByArcConsistency [][]string
}

// Encode renders r as
//
//	sent1 :: sent2 $$$ removed1 :: removed2 $$$ removed1 :: removed2
func Encode(r Reply) string {
	sections := []string{
		strings.Join(r.Sentences, " "+GroupSep+" "),
		joinGroups(r.ByConstraint),
		joinGroups(r.ByArcConsistency),
	}
	for i := range sections {
		sections[i] = strings.TrimSpace(sections[i])
	}
	return strings.Join(sections, " "+SectionSep+" ")
}

func joinGroups(groups [][]string) string {
	parts := make([]string, len(groups))
	for i, g := range groups {
		parts[i] = strings.Join(strings.Fields(strings.Join(g, " ")), " ")
	}
	return strings.Join(parts, " "+GroupSep+" ")
}

// Decode splits an encoded reply back into its sections.
func Decode(s string) Reply {
	sections := strings.SplitN(s, SectionSep, 3)
	for len(sections) < 3 {
		sections = append(sections, "")
	}
	var r Reply
	r.Sentences = splitGroups(sections[0])
	for _, g := range splitGroups(sections[1]) {
		r.ByConstraint = append(r.ByConstraint, strings.Fields(g))
	}
	for _, g := range splitGroups(sections[2]) {
		r.ByArcConsistency = append(r.ByArcConsistency, strings.Fields(g))
	}
	return r
}

func splitGroups(section string) []string {
	section = strings.TrimSpace(section)
	if section == "" {
		return nil
	}
	parts := strings.Split(section, GroupSep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
