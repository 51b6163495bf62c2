package corpus

import (
	"fmt"
)

// Token is a single labelled token.
type Token struct {
	Text       string `json:"text"`
	Label      string `json:"label"`
	Index      int    `json:"index"`
	SentenceID int    `json:"sentence_id"`
}

// Sentence is an ordered run of tokens sharing a sentence id.
type Sentence struct {
	ID     int     `json:"id"`
	Tokens []Token `json:"tokens"`
}

// Corpus is an ordered list of sentences.
type Corpus struct {
	Sentences []Sentence

	byID map[int]int
}

// Builder assembles a corpus while assigning indices in traversal order.
type Builder struct {
	sentences []Sentence
	current   []Token
	nextIndex int
	nextID    int
}

// Add appends a token to the sentence under construction.
func (b *Builder) Add(text, label string) {
	b.current = append(b.current, Token{
		Text:       text,
		Label:      label,
		Index:      b.nextIndex,
		SentenceID: b.nextID,
	})
	b.nextIndex++
}

// EndSentence closes the current sentence. Empty sentences are ignored.
func (b *Builder) EndSentence() {
	if len(b.current) == 0 {
		return
	}
	b.sentences = append(b.sentences, Sentence{ID: b.nextID, Tokens: b.current})
	b.current = nil
	b.nextID++
}

// Build closes any open sentence and returns the corpus.
func (b *Builder) Build() *Corpus {
	b.EndSentence()
	return New(b.sentences)
}

// New wraps sentences in a Corpus and indexes them by id.
func New(sentences []Sentence) *Corpus {
	c := &Corpus{Sentences: sentences, byID: make(map[int]int, len(sentences))}
	for pos, s := range sentences {
		if _, dup := c.byID[s.ID]; !dup {
			c.byID[s.ID] = pos
		}
	}
	return c
}

// FromLabels builds a corpus from parallel token and label sentences.
func FromLabels(texts, labels [][]string) (*Corpus, error) {
	if len(texts) != len(labels) {
		return nil, fmt.Errorf("sentence count mismatch: %d texts, %d label rows", len(texts), len(labels))
	}
	var b Builder
	for i := range texts {
		if len(texts[i]) != len(labels[i]) {
			return nil, fmt.Errorf("sentence %d: %d tokens, %d labels", i, len(texts[i]), len(labels[i]))
		}
		for j := range texts[i] {
			b.Add(texts[i][j], labels[i][j])
		}
		b.EndSentence()
	}
	return b.Build(), nil
}

// Len returns the number of tokens.
func (c *Corpus) Len() int {
	n := 0
	for _, s := range c.Sentences {
		n += len(s.Tokens)
	}
	return n
}

// Tokens returns every token in global index order.
func (c *Corpus) Tokens() []Token {
	out := make([]Token, 0, c.Len())
	for _, s := range c.Sentences {
		out = append(out, s.Tokens...)
	}
	return out
}

// Labels returns the gold labels in global index order.
func (c *Corpus) Labels() []string {
	out := make([]string, 0, c.Len())
	for _, s := range c.Sentences {
		for _, tok := range s.Tokens {
			out = append(out, tok.Label)
		}
	}
	return out
}

// Sentence looks up a sentence by id.
func (c *Corpus) Sentence(id int) (Sentence, bool) {
	if c.byID == nil {
		for _, s := range c.Sentences {
			if s.ID == id {
				return s, true
			}
		}
		return Sentence{}, false
	}
	pos, ok := c.byID[id]
	if !ok {
		return Sentence{}, false
	}
	return c.Sentences[pos], true
}

// Validate checks index contiguity and sentence id ordering.
func (c *Corpus) Validate() error {
	next := 0
	prevID := -1
	for pos, s := range c.Sentences {
		if pos > 0 && s.ID <= prevID {
			return fmt.Errorf("sentence %d: id %d not greater than previous id %d", pos, s.ID, prevID)
		}
		prevID = s.ID
		for _, tok := range s.Tokens {
			if tok.Index != next {
				return fmt.Errorf("sentence %d: token index %d, expected %d", s.ID, tok.Index, next)
			}
			if tok.SentenceID != s.ID {
				return fmt.Errorf("token %d: sentence id %d, expected %d", tok.Index, tok.SentenceID, s.ID)
			}
			next++
		}
	}
	return nil
}
