// Package metrics exposes Prometheus instrumentation for the analysis
// pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AnalysesTotal counts completed analyses.
	// Labels:
	//   - tier: recommendation tier display string
	//   - mode: "bert" or "mock"
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasteline_analyses_total",
			Help: "Total number of completed compatibility analyses",
		},
		[]string{"tier", "mode"},
	)

	// AnalysisFailuresTotal counts analyses that returned an error.
	// Labels:
	//   - reason: "validation", "insufficient_reviews", "internal"
	AnalysisFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasteline_analysis_failures_total",
			Help: "Total number of failed compatibility analyses",
		},
		[]string{"reason"},
	)

	// AnalysisDuration measures end to end analysis latency, dominated
	// by sentiment inference when the model-backed oracle is active.
	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tasteline_analysis_duration_seconds",
			Help:    "Duration of compatibility analyses in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// ReviewsFiltered counts reviews that survived filtering per run.
	ReviewsFiltered = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tasteline_reviews_analyzed",
			Help:    "Number of reviews surviving the filter per analysis",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200},
		},
	)

	// ScrapedReviewsTotal counts reviews fetched per platform.
	ScrapedReviewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasteline_scraped_reviews_total",
			Help: "Total number of reviews fetched from review platforms",
		},
		[]string{"source"},
	)
)

// RecordAnalysis records a completed analysis.
func RecordAnalysis(tier, mode string, reviews int, elapsed time.Duration) {
	AnalysesTotal.WithLabelValues(tier, mode).Inc()
	AnalysisDuration.Observe(elapsed.Seconds())
	ReviewsFiltered.Observe(float64(reviews))
}

// RecordFailure records a failed analysis.
func RecordFailure(reason string) {
	AnalysisFailuresTotal.WithLabelValues(reason).Inc()
}

// RecordScrape records reviews fetched from one platform.
func RecordScrape(source string, count int) {
	ScrapedReviewsTotal.WithLabelValues(source).Add(float64(count))
}
