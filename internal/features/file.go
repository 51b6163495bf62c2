package features

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"labelaudit/internal/auditerr"
)

// Read parses precomputed vectors: one whitespace-separated row per token in
// corpus order. Blank lines (sentence breaks) are ignored.
func Read(r io.Reader, tokens int) (*mat.Dense, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 256*1024), 16*1024*1024)
	var (
		data []float64
		dim  int
		rows int
		line int
	)
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if dim == 0 {
			dim = len(fields)
			data = make([]float64, 0, dim*max(tokens, 1))
		} else if len(fields) != dim {
			return nil, auditerr.Wrap(auditerr.ErrAlignmentMismatch, "features", "read",
				fmt.Sprintf("line %d: %d values, expected %d", line, len(fields), dim), nil)
		}
		for _, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("parse feature on line %d: %w", line, err)
			}
			data = append(data, v)
		}
		rows++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan features: %w", err)
	}
	if rows != tokens {
		return nil, auditerr.Wrap(auditerr.ErrAlignmentMismatch, "features", "read",
			fmt.Sprintf("%d feature rows for %d tokens", rows, tokens), nil)
	}
	if rows == 0 {
		return nil, auditerr.Wrap(auditerr.ErrAlignmentMismatch, "features", "read", "no feature rows", nil)
	}
	return mat.NewDense(rows, dim, data), nil
}

// LoadFile reads precomputed vectors from path.
func LoadFile(path string, tokens int) (*mat.Dense, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open features: %w", err)
	}
	defer file.Close()
	return Read(file, tokens)
}
