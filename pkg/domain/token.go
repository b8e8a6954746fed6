package domain

import "strings"

// Token is a Markov state. For order M it holds M corpus words joined by a single space.
type Token string

const (
	// Start precedes the first token of every training sentence.
	Start Token = "<<START>>"
	// End follows the last token of every training sentence.
	End Token = "<<END>>"
)

// IsSentinel reports whether t is Start or End.
func (t Token) IsSentinel() bool {
	return t == Start || t == End
}

// Words splits the token into its corpus words.
func (t Token) Words() []string {
	return strings.Fields(string(t))
}

// JoinWords builds a token out of consecutive corpus words.
func JoinWords(words ...string) Token {
	return Token(strings.Join(words, " "))
}

// Sentence flattens tokens into their words, dropping sentinels.
func Sentence(tokens []Token) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t.IsSentinel() {
			continue
		}
		out = append(out, t.Words()...)
	}
	return out
}
