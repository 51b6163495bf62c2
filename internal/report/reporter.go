package report

import (
	"fmt"
	"log/slog"
	"strings"

	"gonum.org/v1/gonum/mat"

	"labelaudit/internal/auditerr"
	"labelaudit/internal/corpus"
	"labelaudit/internal/issues"
	"labelaudit/internal/logging"
	"labelaudit/internal/vocab"
)

// DefaultWindow is the number of tokens kept on each side of a flagged token.
const DefaultWindow = 10

// Options configures a Reporter.
type Options struct {
	Window  int
	Locator Locator
	Logger  *slog.Logger
}

// Reporter builds issue records. It holds no per-run state.
type Reporter struct {
	window  int
	locator Locator
	logger  *slog.Logger
}

// ContextToken is one (token, label) pair of the context window.
type ContextToken struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Issue is one reviewable suspected label error.
type Issue struct {
	Rank       int            `json:"rank"`
	Index      int            `json:"index"`
	SentenceID int            `json:"sentence_id"`
	Token      string         `json:"token"`
	Original   string         `json:"original"`
	Suggested  string         `json:"suggested"`
	Confidence float64        `json:"confidence"`
	Context    []ContextToken `json:"context"`
	Position   int            `json:"position"`
	Strategy   Strategy       `json:"strategy"`
	Rendered   string         `json:"rendered"`
}

// Stats counts how token positions were resolved.
type Stats struct {
	Exact     int `json:"exact"`
	Fallbacks int `json:"fallbacks"`
	Misses    int `json:"misses"`
}

// New returns a Reporter. A non-positive window selects DefaultWindow.
func New(opts Options) *Reporter {
	window := opts.Window
	if window <= 0 {
		window = DefaultWindow
	}
	locator := opts.Locator
	if locator == nil {
		locator = DefaultLocator()
	}
	return &Reporter{
		window:  window,
		locator: locator,
		logger:  logging.NewComponentLogger(opts.Logger, "reporter"),
	}
}

// Build produces one Issue per flag, in flag order. Inputs are not modified.
func (r *Reporter) Build(c *corpus.Corpus, v *vocab.Vocabulary, p mat.Matrix, flags []issues.Flag) ([]Issue, Stats, error) {
	var stats Stats
	tokens := c.Tokens()
	rows, cols := p.Dims()
	if rows != len(tokens) {
		return nil, stats, fmt.Errorf("%w: %d probability rows, %d tokens", auditerr.ErrAlignmentMismatch, rows, len(tokens))
	}
	if cols != v.Len() {
		return nil, stats, fmt.Errorf("%w: %d probability columns, %d classes", auditerr.ErrAlignmentMismatch, cols, v.Len())
	}

	out := make([]Issue, 0, len(flags))
	row := make([]float64, cols)
	for rank, flag := range flags {
		if flag.Index < 0 || flag.Index >= len(tokens) {
			return nil, stats, fmt.Errorf("%w: flagged index %d outside [0,%d)", auditerr.ErrAlignmentMismatch, flag.Index, len(tokens))
		}
		tok := tokens[flag.Index]
		gold, err := v.Encode(tok.Label)
		if err != nil {
			return nil, stats, fmt.Errorf("decode gold label at %d: %w", flag.Index, err)
		}
		mat.Row(row, flag.Index, p)
		suggested, err := v.Decode(suggest(row, gold, flag.ConfidentClass))
		if err != nil {
			return nil, stats, fmt.Errorf("decode suggested label at %d: %w", flag.Index, err)
		}

		issue := Issue{
			Rank:       rank + 1,
			Index:      flag.Index,
			SentenceID: tok.SentenceID,
			Token:      tok.Text,
			Original:   tok.Label,
			Suggested:  suggested,
			Confidence: flag.SelfConfidence,
			Context:    []ContextToken{},
			Strategy:   StrategyNone,
		}
		r.attachContext(c, tok, &issue, &stats)
		issue.Rendered = render(issue)
		out = append(out, issue)
	}
	return out, stats, nil
}

func (r *Reporter) attachContext(c *corpus.Corpus, tok corpus.Token, issue *Issue, stats *Stats) {
	sentence, ok := c.Sentence(tok.SentenceID)
	if !ok {
		stats.Misses++
		r.logger.Warn("sentence not found for flagged token",
			logging.Int("index", tok.Index),
			logging.Int("sentence_id", tok.SentenceID),
		)
		return
	}
	pos, strategy, ok := r.locator.Locate(sentence, tok)
	if !ok {
		stats.Misses++
		r.logger.Warn("flagged token not found in its sentence",
			logging.Int("index", tok.Index),
			logging.Int("sentence_id", tok.SentenceID),
			logging.String("token", tok.Text),
		)
		return
	}
	switch strategy {
	case StrategyExact:
		stats.Exact++
	default:
		stats.Fallbacks++
		logging.WarnWithContext(r.logger, "flagged token located by text match", "locate_fallback",
			logging.Int("index", tok.Index),
			logging.Int("sentence_id", tok.SentenceID),
			logging.String("token", tok.Text),
			logging.String(logging.FieldErrorHint, "check that corpus token indices are contiguous"),
			logging.String(logging.FieldImpact, "context may point at an earlier token with the same text"),
		)
	}

	start := max(0, pos-r.window)
	end := min(len(sentence.Tokens), pos+r.window+1)
	for _, t := range sentence.Tokens[start:end] {
		issue.Context = append(issue.Context, ContextToken{Text: t.Text, Label: t.Label})
	}
	issue.Position = pos - start
	issue.Strategy = strategy
}

// render writes the context with the flagged token annotated inline.
func render(issue Issue) string {
	mark := fmt.Sprintf("[%s: %s → %s]", issue.Token, issue.Original, issue.Suggested)
	if len(issue.Context) == 0 {
		return mark
	}
	parts := make([]string, len(issue.Context))
	for i, t := range issue.Context {
		if i == issue.Position {
			parts[i] = mark
			continue
		}
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}

// suggest returns the row's arg-max unless that is the gold class, in which
// case the flag's confident class is used so a suggestion never repeats the
// given label.
func suggest(row []float64, gold, confident int) int {
	if best := argmax(row); best != gold {
		return best
	}
	return confident
}

// argmax returns the first index of the largest value.
func argmax(row []float64) int {
	best := 0
	for i := 1; i < len(row); i++ {
		if row[i] > row[best] {
			best = i
		}
	}
	return best
}
