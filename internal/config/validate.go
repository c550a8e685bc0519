package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tasteline-ai/tasteline/internal/scoring"
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the loaded config for required fields and safe values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return errors.New("server.addr must be set")
	}
	if cfg.Server.RateLimit <= 0 {
		return errors.New("server.rate_limit must be positive")
	}
	if cfg.Server.RateLimitWindow <= 0 {
		return errors.New("server.rate_limit_window_seconds must be positive")
	}

	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" && cfg.Logging.Format != "console" {
		return fmt.Errorf("logging.format %q is not json or console", cfg.Logging.Format)
	}

	if cfg.Filter.MinLength <= 0 {
		return errors.New("filter.min_length must be positive")
	}
	if cfg.Filter.MaxLength < cfg.Filter.MinLength {
		return fmt.Errorf("filter.max_length %d is below filter.min_length %d", cfg.Filter.MaxLength, cfg.Filter.MinLength)
	}
	if cfg.Filter.MaxTokenShare <= 0 || cfg.Filter.MaxTokenShare >= 1 {
		return errors.New("filter.max_token_share must be in (0, 1)")
	}
	for _, p := range cfg.Filter.SpamPatterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("filter.spam_patterns entry %q: %w", p, err)
		}
	}

	if cfg.Summarizer.MaxSentences <= 0 {
		return errors.New("summarizer.max_sentences must be positive")
	}
	if cfg.Summarizer.MaxPerReview <= 0 {
		return errors.New("summarizer.max_per_review must be positive")
	}

	if cfg.Themes.ConcentrationBonus < 1 {
		return errors.New("themes.concentration_bonus must be at least 1")
	}
	if cfg.Themes.TopK <= 0 {
		return errors.New("themes.top_k must be positive")
	}

	if cfg.Sentiment.SeqLen <= 0 {
		return errors.New("sentiment.seq_len must be positive")
	}
	if cfg.Sentiment.BatchSize <= 0 {
		return errors.New("sentiment.batch_size must be positive")
	}
	if cfg.Sentiment.PoolSize <= 0 {
		return errors.New("sentiment.pool_size must be positive")
	}

	weights := scoring.Weights{
		Sentiment: cfg.Scoring.SentimentWeight,
		Theme:     cfg.Scoring.ThemeWeight,
	}
	if err := weights.Validate(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}

	thresholds := scoring.Thresholds{
		HighlyLikely:       cfg.Recommendation.HighlyLikely,
		WorthTrying:        cfg.Recommendation.WorthTrying,
		ProceedWithCaution: cfg.Recommendation.ProceedWithCaution,
	}
	if err := thresholds.Validate(); err != nil {
		return fmt.Errorf("recommendation: %w", err)
	}

	if cfg.Analysis.MinReviews <= 0 {
		return errors.New("analysis.min_reviews must be positive")
	}

	if strings.TrimSpace(cfg.Preferences.Path) == "" {
		return errors.New("preferences.path must be set")
	}

	if cfg.Scrape.TimeoutSeconds <= 0 {
		return errors.New("scrape.timeout_seconds must be positive")
	}
	if cfg.Scrape.MaxPerSource <= 0 {
		return errors.New("scrape.max_per_source must be positive")
	}

	return nil
}
