package corpus_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"labelaudit/internal/corpus"
)

const sample = `-DOCSTART- -X- O O

EU NNP B-ORG
rejects VBZ O
German JJ B-MISC
call NN O
malformed

Peter NNP B-PER
Blackburn NNP I-PER


BRUSSELS NNP B-LOC
`

func TestReadAssignsContiguousIndices(t *testing.T) {
	c, stats, err := corpus.Read(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if stats.Skipped != 1 {
		t.Fatalf("expected one skipped line, got %d", stats.Skipped)
	}
	if stats.Tokens != 7 || c.Len() != 7 {
		t.Fatalf("expected 7 tokens, got stats=%d len=%d", stats.Tokens, c.Len())
	}
	if len(c.Sentences) != 3 || stats.Sentences != 3 {
		t.Fatalf("expected 3 sentences, got %d", len(c.Sentences))
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	for i, tok := range c.Tokens() {
		if tok.Index != i {
			t.Fatalf("token %d has index %d", i, tok.Index)
		}
	}
	wantLabels := []string{"B-ORG", "O", "B-MISC", "O", "B-PER", "I-PER", "B-LOC"}
	if got := c.Labels(); !reflect.DeepEqual(got, wantLabels) {
		t.Fatalf("unexpected labels: %v", got)
	}
	s, ok := c.Sentence(1)
	if !ok {
		t.Fatal("expected sentence 1")
	}
	if s.Tokens[0].Text != "Peter" || s.Tokens[0].Index != 4 {
		t.Fatalf("unexpected sentence 1 head: %+v", s.Tokens[0])
	}
	if _, ok := c.Sentence(9); ok {
		t.Fatal("expected sentence 9 to be missing")
	}
}

func TestReadNormalizesToNFC(t *testing.T) {
	decomposed := "Cafe\u0301 B-LOC\n"
	c, _, err := corpus.Read(strings.NewReader(decomposed))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if got := c.Tokens()[0].Text; got != "Caf\u00e9" {
		t.Fatalf("expected NFC text, got %q", got)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.conll")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	c, _, err := corpus.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile returned error: %v", err)
	}
	if c.Len() != 7 {
		t.Fatalf("expected 7 tokens, got %d", c.Len())
	}
	if _, _, err := corpus.ReadFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidateDetectsIndexDrift(t *testing.T) {
	c := corpus.New([]corpus.Sentence{
		{ID: 0, Tokens: []corpus.Token{{Text: "a", Label: "O", Index: 0}}},
		{ID: 1, Tokens: []corpus.Token{{Text: "b", Label: "O", Index: 2, SentenceID: 1}}},
	})
	if err := c.Validate(); err == nil {
		t.Fatal("expected index drift to fail validation")
	}
}

func TestFromLabelsRejectsRaggedInput(t *testing.T) {
	if _, err := corpus.FromLabels([][]string{{"a", "b"}}, [][]string{{"O"}}); err == nil {
		t.Fatal("expected error for ragged sentence")
	}
	c, err := corpus.FromLabels([][]string{{"a", "b"}, {"c"}}, [][]string{{"O", "X"}, {"O"}})
	if err != nil {
		t.Fatalf("FromLabels returned error: %v", err)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}
