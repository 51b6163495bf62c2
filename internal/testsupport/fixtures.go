package testsupport

import (
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"labelaudit/internal/corpus"
)

// Blobs returns perClass two-dimensional points around each of numClasses
// centres spaced evenly on the unit circle.
func Blobs(perClass, numClasses int, seed uint64) (*mat.Dense, []int) {
	rng := rand.New(rand.NewPCG(seed, 1))
	x := mat.NewDense(perClass*numClasses, 2, nil)
	y := make([]int, 0, perClass*numClasses)
	for k := 0; k < numClasses; k++ {
		angle := 2 * math.Pi * float64(k) / float64(numClasses)
		for i := 0; i < perClass; i++ {
			row := len(y)
			x.Set(row, 0, math.Cos(angle)+(rng.Float64()-0.5)*0.1)
			x.Set(row, 1, math.Sin(angle)+(rng.Float64()-0.5)*0.1)
			y = append(y, k)
		}
	}
	return x, y
}

// Swapped is a four-class, twenty-token corpus in which one ORG token is
// labelled LOC. Features one-hot encode the true class of every token.
type Swapped struct {
	Corpus   *corpus.Corpus
	Features *mat.Dense
	Index    int
	Gold     string
	Given    string
}

// SwappedCorpus builds the Swapped fixture.
func SwappedCorpus() Swapped {
	classes := []string{"LOC", "MISC", "ORG", "PER"}
	words := [][]string{
		{"Paris", "Berlin", "Rome", "Oslo", "Lima"},
		{"German", "Olympic", "Euro", "Nobel", "Dutch"},
		{"Acme", "Reuters", "Fiat", "Nokia", "Lufthansa"},
		{"Mary", "John", "Ravi", "Chen", "Ana"},
	}
	const swapped = 6

	var b corpus.Builder
	x := mat.NewDense(20, len(classes), nil)
	for i := 0; i < 20; i++ {
		class := i % len(classes)
		label := classes[class]
		if i == swapped {
			label = "LOC"
		}
		b.Add(words[class][i/len(classes)], label)
		x.Set(i, class, 1)
		if i%5 == 4 {
			b.EndSentence()
		}
	}
	return Swapped{
		Corpus:   b.Build(),
		Features: x,
		Index:    swapped,
		Gold:     "ORG",
		Given:    "LOC",
	}
}

// WriteCorpus writes c in token-per-line form and returns the file path.
func WriteCorpus(t testing.TB, dir string, c *corpus.Corpus) string {
	t.Helper()

	var sb strings.Builder
	for _, s := range c.Sentences {
		for _, tok := range s.Tokens {
			fmt.Fprintf(&sb, "%s %s\n", tok.Text, tok.Label)
		}
		sb.WriteString("\n")
	}
	path := filepath.Join(dir, "corpus.conll")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteFeatures writes x as whitespace-separated rows and returns the path.
func WriteFeatures(t testing.TB, dir string, x mat.Matrix) string {
	t.Helper()

	var sb strings.Builder
	rows, cols := x.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if j > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%g", x.At(i, j))
		}
		sb.WriteByte('\n')
	}
	path := filepath.Join(dir, "features.txt")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
