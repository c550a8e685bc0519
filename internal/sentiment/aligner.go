package sentiment

import (
	"context"
	"fmt"
)

// Summary is the public sentiment breakdown; the three buckets always
// sum to exactly 100 for a non-empty verdict set.
type Summary struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// Aggregate bundles the bucketed distribution with the mean unit score
// that feeds compatibility scoring.
type Aggregate struct {
	Summary Summary
	// Mean is the unweighted arithmetic mean of (stars-1)/4, in [0,1].
	Mean float64
}

// Aligner submits review texts to the selected oracle and normalizes
// the verdicts.
type Aligner struct {
	oracle Oracle
}

// NewAligner binds the aligner to the process-wide oracle choice.
func NewAligner(oracle Oracle) *Aligner {
	return &Aligner{oracle: oracle}
}

// Oracle exposes the bound oracle for result transparency fields.
func (a *Aligner) Oracle() Oracle { return a.oracle }

// Align scores the texts as one oracle call and aggregates the result.
func (a *Aligner) Align(ctx context.Context, texts []string) (Aggregate, error) {
	verdicts, err := a.oracle.Score(ctx, texts)
	if err != nil {
		return Aggregate{}, fmt.Errorf("score sentiment: %w", err)
	}
	if len(verdicts) != len(texts) {
		return Aggregate{}, fmt.Errorf("oracle returned %d verdicts for %d texts", len(verdicts), len(texts))
	}
	return Reduce(verdicts), nil
}

// Reduce aggregates verdicts: confidence-weighted bucket percentages
// and the unweighted mean unit score.
func Reduce(verdicts []Verdict) Aggregate {
	if len(verdicts) == 0 {
		return Aggregate{}
	}

	var wPos, wNeu, wNeg float64
	var meanSum float64
	for _, v := range verdicts {
		w := v.Confidence
		if w <= 0 {
			w = 1 // degenerate confidence falls back to plain counting
		}
		switch {
		case v.Stars >= 4:
			wPos += w
		case v.Stars == 3:
			wNeu += w
		default:
			wNeg += w
		}
		meanSum += UnitScore(v.Stars)
	}

	return Aggregate{
		Summary: bucketPercentages(wPos, wNeu, wNeg),
		Mean:    meanSum / float64(len(verdicts)),
	}
}

// UnitScore maps a 1..5 star rating onto [0,1].
func UnitScore(stars int) float64 {
	return float64(stars-1) / 4
}

// bucketPercentages converts bucket weights into integer percentages
// summing to exactly 100; the rounding remainder goes to the largest
// bucket.
func bucketPercentages(wPos, wNeu, wNeg float64) Summary {
	total := wPos + wNeu + wNeg
	if total <= 0 {
		return Summary{}
	}

	pos := int(wPos / total * 100)
	neu := int(wNeu / total * 100)
	neg := int(wNeg / total * 100)

	remainder := 100 - pos - neu - neg
	switch {
	case wPos >= wNeu && wPos >= wNeg:
		pos += remainder
	case wNeu >= wNeg:
		neu += remainder
	default:
		neg += remainder
	}

	return Summary{Positive: pos, Neutral: neu, Negative: neg}
}
