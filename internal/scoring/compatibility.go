// Package scoring turns extracted themes and aggregated sentiment into
// a compatibility score against a user's taste profile, and maps that
// score onto a recommendation tier.
package scoring

import (
	"fmt"
	"strings"

	"github.com/tasteline-ai/tasteline/internal/themes"
)

// Weights blends the two scoring signals. The scorer normalizes by the
// weight sum, so equal weights mean an even split.
type Weights struct {
	Sentiment float64
	Theme     float64
}

// DefaultWeights returns the stock equal weighting.
func DefaultWeights() Weights {
	return Weights{Sentiment: 0.5, Theme: 0.5}
}

// Validate checks the weights are usable.
func (w Weights) Validate() error {
	if w.Sentiment < 0 || w.Theme < 0 {
		return fmt.Errorf("scoring weights must be non-negative, got sentiment=%g theme=%g", w.Sentiment, w.Theme)
	}
	if w.Sentiment+w.Theme <= 0 {
		return fmt.Errorf("scoring weights must not both be zero")
	}
	return nil
}

// Compatibility combines mean sentiment with theme overlap into a
// single score clamped to [0,1].
func Compatibility(extracted []themes.Score, preferred []string, meanSentiment float64, w Weights) float64 {
	overlap := ThemeOverlap(extracted, preferred)
	total := w.Sentiment + w.Theme
	score := (w.Sentiment*meanSentiment + w.Theme*overlap) / total
	return clamp01(score)
}

// ThemeOverlap is a weighted Jaccard-like measure between the
// extracted themes and the user's preferred set. Extracted themes
// carry their extraction score; a preferred theme the reviews never
// touched enters the union at the mean extracted score, pulling the
// ratio down. With either side empty there is no evidence, and the
// measure sits at a neutral 0.5.
func ThemeOverlap(extracted []themes.Score, preferred []string) float64 {
	if len(extracted) == 0 || len(preferred) == 0 {
		return 0.5
	}

	prefSet := make(map[string]struct{}, len(preferred))
	for _, name := range preferred {
		name = strings.TrimSpace(name)
		if name != "" {
			prefSet[name] = struct{}{}
		}
	}
	if len(prefSet) == 0 {
		return 0.5
	}

	var inter, union, sum float64
	matched := make(map[string]struct{}, len(extracted))
	for _, s := range extracted {
		union += s.Score
		sum += s.Score
		if _, ok := prefSet[s.Theme]; ok {
			inter += s.Score
			matched[s.Theme] = struct{}{}
		}
	}

	missing := len(prefSet) - len(matched)
	if missing > 0 {
		union += float64(missing) * sum / float64(len(extracted))
	}

	if union <= 0 {
		return 0
	}
	return clamp01(inter / union)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
