package review

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultSpamPatterns reject raw URLs and common advertorial phrasing.
var DefaultSpamPatterns = []string{
	`https?://`,
	`click here`,
	`buy now`,
	`visit (my|our) (site|website)`,
	`\b(cheap|free) (download|shipping)\b`,
}

// FilterConfig carries the tunable filter thresholds.
type FilterConfig struct {
	MinLength     int
	MaxLength     int
	SpamPatterns  []string
	MaxTokenShare float64
}

// DefaultFilterConfig returns the stock thresholds.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MinLength:     20,
		MaxLength:     5000,
		SpamPatterns:  DefaultSpamPatterns,
		MaxTokenShare: 0.3,
	}
}

// Filter drops duplicate, malformed, spammy, and bot-generated reviews
// from a raw batch. A single Filter is safe for concurrent use.
type Filter struct {
	minLength     int
	maxLength     int
	spam          *regexp.Regexp
	maxTokenShare float64
}

// NewFilter compiles the spam patterns and checks threshold sanity.
func NewFilter(cfg FilterConfig) (*Filter, error) {
	if cfg.MinLength <= 0 || cfg.MaxLength < cfg.MinLength {
		return nil, fmt.Errorf("invalid length bounds [%d, %d]", cfg.MinLength, cfg.MaxLength)
	}
	if cfg.MaxTokenShare <= 0 || cfg.MaxTokenShare > 1 {
		return nil, fmt.Errorf("max_token_share must be in (0, 1], got %g", cfg.MaxTokenShare)
	}
	if len(cfg.SpamPatterns) == 0 {
		return nil, errors.New("at least one spam pattern must be configured")
	}

	joined := "(?i)(?:" + strings.Join(cfg.SpamPatterns, ")|(?:") + ")"
	spam, err := regexp.Compile(joined)
	if err != nil {
		return nil, fmt.Errorf("compile spam patterns: %w", err)
	}

	return &Filter{
		minLength:     cfg.MinLength,
		maxLength:     cfg.MaxLength,
		spam:          spam,
		maxTokenShare: cfg.MaxTokenShare,
	}, nil
}

// Apply runs the filter rules in order: dedup, length, spam, repetition.
// Rejected reviews are dropped silently; output order follows input order.
func (f *Filter) Apply(reviews []Raw) []Filtered {
	kept := make([]Filtered, 0, len(reviews))
	seen := make(map[string]struct{}, len(reviews))

	for _, r := range reviews {
		text := strings.TrimSpace(r.Text)

		// Only reviews that were actually kept count as dedup
		// ancestors; a duplicate of a rejected review gets its own
		// chance against the remaining rules.
		norm := normalizeText(text)
		if _, dup := seen[norm]; dup {
			continue
		}

		// Length bounds count characters, not bytes; reviews for the
		// multilingual model routinely arrive in multibyte scripts.
		if n := utf8.RuneCountInString(text); n < f.minLength || n > f.maxLength {
			continue
		}

		if f.spam.MatchString(text) {
			continue
		}

		if dominatedBySingleToken(norm, f.maxTokenShare) {
			continue
		}

		seen[norm] = struct{}{}
		kept = append(kept, Filtered{
			Text:   text,
			Rating: r.Rating,
			Source: r.Source,
		})
	}

	return kept
}

// normalizeText case-folds and collapses all whitespace runs to single
// spaces so trivially restyled duplicates compare equal.
func normalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// dominatedBySingleToken reports whether one whitespace token accounts
// for strictly more than share of all tokens. A token at exactly the
// threshold is allowed.
func dominatedBySingleToken(norm string, share float64) bool {
	tokens := strings.Fields(norm)
	if len(tokens) == 0 {
		return false
	}

	counts := make(map[string]int, len(tokens))
	max := 0
	for _, tok := range tokens {
		counts[tok]++
		if counts[tok] > max {
			max = counts[tok]
		}
	}

	return float64(max) > share*float64(len(tokens))
}
