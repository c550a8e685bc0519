package scrape

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/tasteline-ai/tasteline/internal/review"
)

// IMDbScraper parses the user review page for a title. Ratings are on
// IMDb's native 1 to 10 scale.
type IMDbScraper struct {
	client  *http.Client
	limiter *rateLimiter
	max     int
}

// NewIMDbScraper builds a scraper with the shared rate limiter.
func NewIMDbScraper(cfg Config, limiter *rateLimiter) *IMDbScraper {
	return &IMDbScraper{
		client:  newHTTPClient(cfg),
		limiter: limiter,
		max:     maxPerSource(cfg),
	}
}

func (s *IMDbScraper) Source() review.Source { return review.SourceIMDb }

// Scrape fetches and parses the title's review page.
func (s *IMDbScraper) Scrape(ctx context.Context, url string) ([]review.Raw, error) {
	if !strings.Contains(url, "/reviews") {
		url = strings.TrimRight(url, "/") + "/reviews"
	}

	resp, err := get(ctx, s.client, s.limiter, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}
	return s.parse(doc), nil
}

func (s *IMDbScraper) parse(doc *goquery.Document) []review.Raw {
	var reviews []review.Raw
	doc.Find("div.review-container").EachWithBreak(func(i int, container *goquery.Selection) bool {
		if len(reviews) >= s.max {
			return false
		}

		text := strings.TrimSpace(container.Find("div.text").First().Text())
		if text == "" {
			return true
		}

		var rating *float64
		ratingText := strings.TrimSpace(container.Find("span.rating-other-user-rating span").First().Text())
		if ratingText != "" {
			if v, err := strconv.ParseFloat(ratingText, 64); err == nil {
				rating = &v
			}
		}

		reviews = append(reviews, review.Raw{
			Text:   text,
			Rating: rating,
			Source: review.SourceIMDb,
		})
		return true
	})
	return reviews
}
