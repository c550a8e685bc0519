// Package scrape pulls user reviews from the supported platforms.
// IMDb and Metacritic are scraped from their review pages; Steam uses
// its public appreviews JSON API. A source that fails or yields
// nothing contributes an empty slice, never an error, so one broken
// site does not sink an analysis.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/tasteline-ai/tasteline/internal/review"
)

const userAgent = "tasteline/1.0"

var urlPatterns = map[review.Source]*regexp.Regexp{
	review.SourceIMDb:       regexp.MustCompile(`^https?://(?:www\.)?imdb\.com/title/tt\d+`),
	review.SourceSteam:      regexp.MustCompile(`^https?://store\.steampowered\.com/app/\d+`),
	review.SourceMetacritic: regexp.MustCompile(`^https?://(?:www\.)?metacritic\.com/`),
}

// ValidateURL reports whether the URL matches the expected shape for
// the given source.
func ValidateURL(source review.Source, url string) error {
	pattern, ok := urlPatterns[source]
	if !ok {
		return fmt.Errorf("unknown review source %q", source)
	}
	if !pattern.MatchString(url) {
		return fmt.Errorf("url %q does not look like a %s link", url, source)
	}
	return nil
}

// Scraper fetches reviews for one platform.
type Scraper interface {
	Source() review.Source
	Scrape(ctx context.Context, url string) ([]review.Raw, error)
}

// Config tunes the shared HTTP behavior of all scrapers.
type Config struct {
	Timeout      time.Duration
	MaxPerSource int
	// RateLimit and RateLimitWindow bound outbound requests across
	// all scrapers sharing this config.
	RateLimit       int
	RateLimitWindow time.Duration
}

// DefaultConfig mirrors the shipped configuration defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:         10 * time.Second,
		MaxPerSource:    20,
		RateLimit:       100,
		RateLimitWindow: 60 * time.Second,
	}
}

// Collector fans a request out to every configured scraper and merges
// the results.
type Collector struct {
	scrapers []Scraper
	log      zerolog.Logger
}

// NewCollector builds a collector over the given scrapers.
func NewCollector(log zerolog.Logger, scrapers ...Scraper) *Collector {
	return &Collector{scrapers: scrapers, log: log}
}

// NewDefaultCollector wires all three platform scrapers behind one
// shared rate limiter.
func NewDefaultCollector(cfg Config, log zerolog.Logger) *Collector {
	limiter := newRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)
	return NewCollector(log,
		NewIMDbScraper(cfg, limiter),
		NewSteamScraper(cfg, limiter),
		NewMetacriticScraper(cfg, limiter),
	)
}

// Collect fetches reviews for each source with a configured URL.
// Sources absent from urls are skipped; a failing source is logged
// and contributes nothing.
func (c *Collector) Collect(ctx context.Context, urls map[review.Source]string) ([]review.Raw, error) {
	var out []review.Raw
	for _, s := range c.scrapers {
		url, ok := urls[s.Source()]
		if ok {
			if err := ValidateURL(s.Source(), url); err != nil {
				return nil, err
			}
		}
	}
	for _, s := range c.scrapers {
		url, ok := urls[s.Source()]
		if !ok || url == "" {
			continue
		}
		reviews, err := s.Scrape(ctx, url)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			c.log.Warn().Err(err).Str("source", string(s.Source())).Msg("scrape failed, continuing without source")
			continue
		}
		c.log.Info().Str("source", string(s.Source())).Int("reviews", len(reviews)).Msg("scraped reviews")
		out = append(out, reviews...)
	}
	return out, nil
}

func newHTTPClient(cfg Config) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func maxPerSource(cfg Config) int {
	if cfg.MaxPerSource <= 0 {
		return 20
	}
	return cfg.MaxPerSource
}

func get(ctx context.Context, client *http.Client, limiter *rateLimiter, url string) (*http.Response, error) {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request reviews: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp, nil
}
