// Package analysis sequences the review pipeline: filter, summarize,
// extract themes, align sentiment, score compatibility, classify. It
// is the only entry point external collaborators call.
package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/tasteline-ai/tasteline/internal/review"
	"github.com/tasteline-ai/tasteline/internal/scoring"
	"github.com/tasteline-ai/tasteline/internal/sentiment"
	"github.com/tasteline-ai/tasteline/internal/summarize"
	"github.com/tasteline-ai/tasteline/internal/themes"
)

// MediaType is the kind of title under analysis.
type MediaType string

const (
	MediaTV    MediaType = "tv"
	MediaMovie MediaType = "movie"
	MediaGame  MediaType = "game"
)

// Profile is the user's stored taste profile. Read-only to the
// pipeline.
type Profile struct {
	Themes        []string  `json:"themes"`
	AverageRating float64   `json:"average_rating"`
	MediaType     MediaType `json:"media_type"`
}

// Evaluation records which oracle variant produced the sentiment in a
// result, so degraded results are transparent to callers.
type Evaluation struct {
	Mode  sentiment.Mode `json:"mode"`
	Model string         `json:"model"`
}

// Result is the immutable outcome of one analysis request.
type Result struct {
	CompatibilityScore float64           `json:"compatibility_score"`
	Recommendation     scoring.Tier      `json:"recommendation"`
	ThemeAlignment     []string          `json:"theme_alignment"`
	SentimentSummary   sentiment.Summary `json:"sentiment_summary"`
	Summary            string            `json:"summary"`
	ReviewsAnalyzed    int               `json:"reviews_analyzed"`
	Evaluation         Evaluation        `json:"evaluation"`
}

// Config bounds the orchestrator itself; per-stage settings live with
// their stages.
type Config struct {
	// MinReviews is how many reviews must survive filtering before the
	// pipeline proceeds.
	MinReviews int
}

// DefaultConfig returns the stock orchestrator settings.
func DefaultConfig() Config {
	return Config{MinReviews: 1}
}

// Orchestrator owns one configured pipeline instance. All fields are
// read-only after construction; a single Orchestrator serves
// concurrent requests.
type Orchestrator struct {
	filter     *review.Filter
	summarizer *summarize.Summarizer
	extractor  *themes.Extractor
	aligner    *sentiment.Aligner
	weights    scoring.Weights
	thresholds scoring.Thresholds
	minReviews int
}

// New wires the pipeline stages together.
func New(
	filter *review.Filter,
	summarizer *summarize.Summarizer,
	extractor *themes.Extractor,
	aligner *sentiment.Aligner,
	weights scoring.Weights,
	thresholds scoring.Thresholds,
	cfg Config,
) *Orchestrator {
	if cfg.MinReviews <= 0 {
		cfg.MinReviews = 1
	}
	return &Orchestrator{
		filter:     filter,
		summarizer: summarizer,
		extractor:  extractor,
		aligner:    aligner,
		weights:    weights,
		thresholds: thresholds,
		minReviews: cfg.MinReviews,
	}
}

// Analyze runs the full pipeline for one request. It has no side
// effects and may be abandoned at any point; the only suspension is
// the oracle's batch call.
func (o *Orchestrator) Analyze(ctx context.Context, raws []review.Raw, profile Profile) (*Result, error) {
	for i, r := range raws {
		if strings.TrimSpace(r.Text) == "" {
			return nil, &ValidationError{Reason: fmt.Sprintf("review %d has no text", i)}
		}
	}

	filtered := o.filter.Apply(raws)
	if len(filtered) < o.minReviews {
		return nil, &InsufficientReviewsError{Got: len(filtered), Min: o.minReviews}
	}

	snippets := o.summarizer.Summarize(filtered)
	ranked := o.extractor.Extract(filtered)

	texts := make([]string, len(filtered))
	for i, r := range filtered {
		texts[i] = r.Text
	}
	agg, err := o.aligner.Align(ctx, texts)
	if err != nil {
		return nil, err
	}

	score := scoring.Compatibility(ranked, profile.Themes, agg.Mean, o.weights)
	oracle := o.aligner.Oracle()

	return &Result{
		CompatibilityScore: score,
		Recommendation:     o.thresholds.Classify(score),
		ThemeAlignment:     themes.Alignment(ranked),
		SentimentSummary:   agg.Summary,
		Summary:            summarize.Text(snippets),
		ReviewsAnalyzed:    len(filtered),
		Evaluation: Evaluation{
			Mode:  oracle.Mode(),
			Model: oracle.Model(),
		},
	}, nil
}
