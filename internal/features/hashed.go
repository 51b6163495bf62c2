package features

import (
	"context"
	"hash/fnv"
	"math"
	"strconv"
	"strings"
	"unicode"
)

const (
	defaultHashedDim    = 256
	defaultHashedWindow = 1
	sentenceStart       = "<s>"
	sentenceEnd         = "</s>"
)

// HashedProvider maps lexical features of each token and its neighbours into
// a fixed number of signed hash buckets, then L2-normalizes the vector.
type HashedProvider struct {
	dim    int
	window int
}

// NewHashedProvider returns a provider with dim buckets looking window tokens
// to either side. Out-of-range values fall back to defaults.
func NewHashedProvider(dim, window int) *HashedProvider {
	if dim <= 0 {
		dim = defaultHashedDim
	}
	if window < 0 {
		window = defaultHashedWindow
	}
	return &HashedProvider{dim: dim, window: window}
}

func (p *HashedProvider) Name() string { return "hashed" }

func (p *HashedProvider) Dim() int { return p.dim }

// Embed returns one vector per token in texts.
func (p *HashedProvider) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lowered := make([]string, len(texts))
	for i, text := range texts {
		lowered[i] = strings.ToLower(text)
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		vec := make([]float64, p.dim)
		p.add(vec, "bias")
		p.add(vec, "w="+lowered[i])
		p.add(vec, "shape="+wordShape(text))
		p.add(vec, "p3="+prefix(lowered[i], 3))
		p.add(vec, "s3="+suffix(lowered[i], 3))
		for offset := 1; offset <= p.window; offset++ {
			p.add(vec, "w-"+strconv.Itoa(offset)+"="+neighbour(lowered, i-offset))
			p.add(vec, "w+"+strconv.Itoa(offset)+"="+neighbour(lowered, i+offset))
		}
		normalize(vec)
		out[i] = vec
	}
	return out, nil
}

func (p *HashedProvider) add(vec []float64, feature string) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	bucket := int(sum % uint64(p.dim))
	if sum>>63 == 1 {
		vec[bucket]--
		return
	}
	vec[bucket]++
}

func neighbour(tokens []string, i int) string {
	switch {
	case i < 0:
		return sentenceStart
	case i >= len(tokens):
		return sentenceEnd
	default:
		return tokens[i]
	}
}

func prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func suffix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

// wordShape collapses runs of the same character class: "McDonald's" -> "XxXx'x".
func wordShape(s string) string {
	var b strings.Builder
	var last rune
	for _, r := range s {
		var class rune
		switch {
		case unicode.IsUpper(r):
			class = 'X'
		case unicode.IsLower(r):
			class = 'x'
		case unicode.IsDigit(r):
			class = 'd'
		default:
			class = r
		}
		if class != last {
			b.WriteRune(class)
			last = class
		}
	}
	return b.String()
}

func normalize(vec []float64) {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
}
