// Package summarize selects representative sentences from a filtered
// review batch. The selection is extractive: sentences are scored by
// theme-keyword density and sentiment cues, never rewritten.
package summarize

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/tasteline-ai/tasteline/internal/review"
	"github.com/tasteline-ai/tasteline/internal/themes"
)

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// Sentiment indicator lexicons; a hit adds a flat bonus on top of the
// keyword density score.
var (
	positiveCues = []string{"great", "excellent", "amazing", "love", "best", "perfect"}
	negativeCues = []string{"bad", "worst", "terrible", "awful", "hate", "disappointing"}
)

// Config carries the summarizer tunables.
type Config struct {
	// MaxReviews caps how many filtered reviews feed the summary.
	MaxReviews int
	// MaxSentences bounds the total output.
	MaxSentences int
	// MaxPerReview bounds how many sentences one review may contribute.
	MaxPerReview int
	// MinSentenceLen drops fragments shorter than this many characters.
	MinSentenceLen int
}

// DefaultConfig returns the stock summarizer settings.
func DefaultConfig() Config {
	return Config{
		MaxReviews:     100,
		MaxSentences:   5,
		MaxPerReview:   2,
		MinSentenceLen: 15,
	}
}

// Snippet is one selected sentence with its selection score.
type Snippet struct {
	Text   string
	Score  float64
	Review int // index into the summarized batch
}

// Summarizer ranks sentences against a theme vocabulary.
type Summarizer struct {
	terms []string
	cfg   Config
}

// New wires a summarizer to a vocabulary.
func New(vocab *themes.Vocabulary, cfg Config) *Summarizer {
	if cfg.MaxReviews <= 0 {
		cfg.MaxReviews = 100
	}
	if cfg.MaxSentences <= 0 {
		cfg.MaxSentences = 5
	}
	if cfg.MaxPerReview <= 0 {
		cfg.MaxPerReview = 2
	}
	if cfg.MinSentenceLen <= 0 {
		cfg.MinSentenceLen = 15
	}
	return &Summarizer{terms: vocab.Terms(), cfg: cfg}
}

// Summarize scores every sentence in the batch and returns the top
// sentences, capped per review so one verbose reviewer cannot crowd
// out the rest. Ties keep original order.
func (s *Summarizer) Summarize(reviews []review.Filtered) []Snippet {
	if len(reviews) > s.cfg.MaxReviews {
		reviews = reviews[:s.cfg.MaxReviews]
	}

	var candidates []Snippet
	for ri, r := range reviews {
		for _, raw := range sentenceSplit.Split(r.Text, -1) {
			sent := strings.TrimSpace(raw)
			if utf8.RuneCountInString(sent) < s.cfg.MinSentenceLen {
				continue
			}
			score := s.scoreSentence(sent)
			if score <= 0 {
				continue
			}
			candidates = append(candidates, Snippet{Text: sent, Score: score, Review: ri})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	perReview := make(map[int]int, len(reviews))
	out := make([]Snippet, 0, s.cfg.MaxSentences)
	for _, c := range candidates {
		if len(out) == s.cfg.MaxSentences {
			break
		}
		if perReview[c.Review] == s.cfg.MaxPerReview {
			continue
		}
		perReview[c.Review]++
		out = append(out, c)
	}
	return out
}

// scoreSentence blends keyword density (normalized by sentence length
// in words) with a flat bonus per sentiment cue.
func (s *Summarizer) scoreSentence(sent string) float64 {
	lower := strings.ToLower(sent)
	words := len(strings.Fields(lower))
	if words == 0 {
		return 0
	}

	matches := 0
	for _, term := range s.terms {
		if strings.Contains(lower, term) {
			matches++
		}
	}
	score := float64(matches) / float64(words)

	for _, cue := range positiveCues {
		if strings.Contains(lower, cue) {
			score += 0.5
		}
	}
	for _, cue := range negativeCues {
		if strings.Contains(lower, cue) {
			score += 0.5
		}
	}
	return score
}

// Text joins snippets into a single evidence paragraph.
func Text(snippets []Snippet) string {
	parts := make([]string, len(snippets))
	for i, sn := range snippets {
		parts[i] = sn.Text
	}
	return strings.Join(parts, ". ")
}
