package report

import (
	"golang.org/x/text/cases"

	"labelaudit/internal/corpus"
)

// Strategy names the locator that resolved a token position.
type Strategy string

const (
	StrategyExact Strategy = "exact"
	StrategyText  Strategy = "text"
	StrategyNone  Strategy = "none"
)

// Locator finds the position of target within s.
type Locator interface {
	Locate(s corpus.Sentence, target corpus.Token) (pos int, strategy Strategy, ok bool)
}

// ExactLocator derives the position from global index arithmetic.
type ExactLocator struct{}

func (ExactLocator) Locate(s corpus.Sentence, target corpus.Token) (int, Strategy, bool) {
	if len(s.Tokens) == 0 {
		return 0, StrategyExact, false
	}
	pos := target.Index - s.Tokens[0].Index
	if pos < 0 || pos >= len(s.Tokens) {
		return 0, StrategyExact, false
	}
	tok := s.Tokens[pos]
	if tok.Index != target.Index || tok.Text != target.Text {
		return 0, StrategyExact, false
	}
	return pos, StrategyExact, true
}

// TextLocator returns the first token whose case-folded text matches.
type TextLocator struct{}

func (TextLocator) Locate(s corpus.Sentence, target corpus.Token) (int, Strategy, bool) {
	folder := cases.Fold()
	want := folder.String(target.Text)
	for pos, tok := range s.Tokens {
		if folder.String(tok.Text) == want {
			return pos, StrategyText, true
		}
	}
	return 0, StrategyText, false
}

// Chain tries each locator in order and reports the first hit.
type Chain []Locator

func (c Chain) Locate(s corpus.Sentence, target corpus.Token) (int, Strategy, bool) {
	for _, l := range c {
		if pos, strategy, ok := l.Locate(s, target); ok {
			return pos, strategy, true
		}
	}
	return 0, StrategyNone, false
}

// DefaultLocator is exact arithmetic with a text fallback.
func DefaultLocator() Locator {
	return Chain{ExactLocator{}, TextLocator{}}
}
