package ports

import (
	"context"
	"io"

	"github.com/aretw0/mnemo/pkg/domain"
)

// Tokenizer turns corpus text into training sequences.
type Tokenizer interface {
	// Tokenize splits r into sentences of order-sized tokens. The last token of a
	// sentence may hold fewer words than order.
	Tokenize(ctx context.Context, r io.Reader, order int) ([][]domain.Token, error)
}
