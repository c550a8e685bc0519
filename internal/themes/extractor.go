package themes

import (
	"sort"
	"strings"

	"github.com/tasteline-ai/tasteline/internal/review"
)

// Score is one theme's aggregate extraction score across a batch.
type Score struct {
	Theme string
	Score float64
}

// ExtractorConfig carries the extraction tunables.
type ExtractorConfig struct {
	// ConcentrationBonus multiplies a review's per-theme score when the
	// review matches at least two distinct keywords of that theme.
	ConcentrationBonus float64
	// TopK bounds the returned ranking.
	TopK int
}

// DefaultExtractorConfig returns the stock extraction settings.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		ConcentrationBonus: 1.2,
		TopK:               4,
	}
}

// Extractor scores review batches against a vocabulary. Stateless
// beyond its read-only configuration, so safe for concurrent use.
type Extractor struct {
	vocab *Vocabulary
	bonus float64
	topK  int
}

// NewExtractor wires an extractor to a vocabulary.
func NewExtractor(vocab *Vocabulary, cfg ExtractorConfig) *Extractor {
	if cfg.ConcentrationBonus <= 0 {
		cfg.ConcentrationBonus = 1.0
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 4
	}
	return &Extractor{vocab: vocab, bonus: cfg.ConcentrationBonus, topK: cfg.TopK}
}

// Extract aggregates per-theme scores over the batch and returns the
// top-K themes with non-zero scores, ranked descending. Equal scores
// keep vocabulary declaration order.
func (e *Extractor) Extract(reviews []review.Filtered) []Score {
	entries := e.vocab.Themes()
	agg := make([]float64, len(entries))

	for _, r := range reviews {
		text := strings.ToLower(r.Text)
		for i, th := range entries {
			score, distinct := scoreTheme(text, th)
			if distinct >= 2 {
				score *= e.bonus
			}
			agg[i] += score
		}
	}

	ranked := make([]Score, 0, len(entries))
	for i, th := range entries {
		if agg[i] > 0 {
			ranked = append(ranked, Score{Theme: th.Name, Score: agg[i]})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > e.topK {
		ranked = ranked[:e.topK]
	}
	return ranked
}

// Alignment reduces a ranking to its theme names.
func Alignment(ranked []Score) []string {
	names := make([]string, len(ranked))
	for i, s := range ranked {
		names[i] = s.Theme
	}
	return names
}

// scoreTheme sums weight x occurrences over the theme's keywords and
// reports how many distinct keywords matched.
func scoreTheme(text string, th Theme) (float64, int) {
	var score float64
	distinct := 0
	for _, kw := range th.Keywords {
		n := strings.Count(text, strings.ToLower(kw.Term))
		if n == 0 {
			continue
		}
		distinct++
		score += kw.Weight * float64(n)
	}
	return score, distinct
}
