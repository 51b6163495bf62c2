package features

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"labelaudit/internal/auditerr"
	"labelaudit/internal/corpus"
)

// Provider embeds the tokens of one sentence.
type Provider interface {
	Name() string
	Dim() int
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Build embeds every sentence of c and stacks the vectors by global index.
func Build(ctx context.Context, c *corpus.Corpus, p Provider) (*mat.Dense, error) {
	if p == nil {
		return nil, auditerr.Wrap(auditerr.ErrConfiguration, "features", "build", "no provider", nil)
	}
	n := c.Len()
	dim := p.Dim()
	if n == 0 || dim <= 0 {
		return nil, auditerr.Wrap(auditerr.ErrAlignmentMismatch, "features", "build",
			fmt.Sprintf("cannot build %d×%d matrix", n, dim), nil)
	}
	out := mat.NewDense(n, dim, nil)
	for _, s := range c.Sentences {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		texts := make([]string, len(s.Tokens))
		for i, tok := range s.Tokens {
			texts[i] = tok.Text
		}
		vectors, err := p.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed sentence %d: %w", s.ID, err)
		}
		if len(vectors) != len(s.Tokens) {
			return nil, auditerr.Wrap(auditerr.ErrAlignmentMismatch, "features", p.Name(),
				fmt.Sprintf("sentence %d: %d vectors for %d tokens", s.ID, len(vectors), len(s.Tokens)), nil)
		}
		for i, vec := range vectors {
			if len(vec) != dim {
				return nil, auditerr.Wrap(auditerr.ErrAlignmentMismatch, "features", p.Name(),
					fmt.Sprintf("token %d: dimension %d, expected %d", s.Tokens[i].Index, len(vec), dim), nil)
			}
			out.SetRow(s.Tokens[i].Index, vec)
		}
	}
	return out, nil
}

// CheckRows verifies that x has exactly n rows.
func CheckRows(x mat.Matrix, n int) error {
	if x == nil {
		return auditerr.Wrap(auditerr.ErrAlignmentMismatch, "features", "check", "nil feature matrix", nil)
	}
	rows, _ := x.Dims()
	if rows != n {
		return auditerr.Wrap(auditerr.ErrAlignmentMismatch, "features", "check",
			fmt.Sprintf("feature matrix has %d rows for %d tokens", rows, n), nil)
	}
	return nil
}
