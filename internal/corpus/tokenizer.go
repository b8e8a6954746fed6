package corpus

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/aretw0/mnemo/pkg/domain"
	"golang.org/x/text/unicode/norm"
)

const (
	sentenceBreaks = ".?!"
	wordBreaks     = ",#@$%&;:\"()"
)

// contractionTails are word fragments that belong to the preceding word.
var contractionTails = map[string]struct{}{
	"'s": {}, "'t": {}, "'re": {}, "'ll": {}, "'ve": {}, "'d": {}, "'m": {},
}

// Tokenizer splits plain text into lowercase sentences of order-sized tokens.
type Tokenizer struct {
	sentenceLimit int
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithSentenceLimit stops after n sentences. Zero means no limit.
func WithSentenceLimit(n int) Option {
	return func(t *Tokenizer) {
		t.sentenceLimit = n
	}
}

// New creates a Tokenizer.
func New(opts ...Option) *Tokenizer {
	t := &Tokenizer{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tokenize reads the whole corpus and returns one token sequence per sentence.
func (t *Tokenizer) Tokenize(ctx context.Context, r io.Reader, order int) ([][]domain.Token, error) {
	if order < 1 {
		return nil, domain.ErrInvalidOrder
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	text := strings.ToLower(norm.NFC.String(string(raw)))
	text = strings.ReplaceAll(text, "’", "'")

	sentences := strings.FieldsFunc(text, func(r rune) bool {
		return strings.ContainsRune(sentenceBreaks, r)
	})

	var out [][]domain.Token
	for i, s := range sentences {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		words := Words(s)
		if len(words) == 0 {
			continue
		}
		out = append(out, Group(words, order))
		if t.sentenceLimit > 0 && len(out) >= t.sentenceLimit {
			break
		}
	}
	return out, nil
}

// TokenizeFile opens path and tokenizes it.
func (t *Tokenizer) TokenizeFile(ctx context.Context, path string, order int) ([][]domain.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()
	return t.Tokenize(ctx, f, order)
}

// Words splits one sentence into words, folding contraction fragments into the
// word before them and trimming stray quotes.
func Words(sentence string) []string {
	fields := strings.FieldsFunc(sentence, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsDigit(r) || strings.ContainsRune(wordBreaks, r)
	})

	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, tail := contractionTails[f]; tail && len(words) > 0 {
			words[len(words)-1] += f
			continue
		}
		f = strings.Trim(f, "'")
		if f == "" {
			continue
		}
		words = append(words, f)
	}
	return words
}

// Group joins consecutive words into tokens of order words each. A trailing remainder
// becomes a shorter token.
func Group(words []string, order int) []domain.Token {
	out := make([]domain.Token, 0, (len(words)+order-1)/order)
	for i := 0; i < len(words); i += order {
		hi := i + order
		if hi > len(words) {
			hi = len(words)
		}
		out = append(out, domain.JoinWords(words[i:hi]...))
	}
	return out
}
