package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const docStartMarker = "-DOCSTART-"

// ReadStats summarizes what the reader consumed.
type ReadStats struct {
	Lines     int
	Tokens    int
	Sentences int
	Skipped   int
}

// Read parses token-per-line input into a corpus.
func Read(r io.Reader) (*Corpus, ReadStats, error) {
	var (
		b     Builder
		stats ReadStats
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		stats.Lines++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			b.EndSentence()
			continue
		}
		fields := strings.Fields(line)
		if fields[0] == docStartMarker {
			b.EndSentence()
			continue
		}
		if len(fields) < 2 {
			stats.Skipped++
			continue
		}
		b.Add(norm.NFC.String(fields[0]), fields[len(fields)-1])
		stats.Tokens++
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("scan corpus: %w", err)
	}
	c := b.Build()
	stats.Sentences = len(c.Sentences)
	return c, stats, nil
}

// ReadFile opens path and parses it with Read.
func ReadFile(path string) (*Corpus, ReadStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, ReadStats{}, fmt.Errorf("open corpus: %w", err)
	}
	defer file.Close()
	return Read(file)
}
