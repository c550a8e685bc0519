package scrape

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/tasteline-ai/tasteline/internal/review"
)

// MetacriticScraper parses the user review page for a title. Ratings
// are on Metacritic's user score scale of 0 to 10.
type MetacriticScraper struct {
	client  *http.Client
	limiter *rateLimiter
	max     int
}

// NewMetacriticScraper builds a scraper with the shared rate limiter.
func NewMetacriticScraper(cfg Config, limiter *rateLimiter) *MetacriticScraper {
	return &MetacriticScraper{
		client:  newHTTPClient(cfg),
		limiter: limiter,
		max:     maxPerSource(cfg),
	}
}

func (s *MetacriticScraper) Source() review.Source { return review.SourceMetacritic }

// Scrape fetches and parses the title's user review page.
func (s *MetacriticScraper) Scrape(ctx context.Context, url string) ([]review.Raw, error) {
	if !strings.Contains(url, "/user-reviews") {
		url = strings.TrimRight(url, "/") + "/user-reviews"
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

func (s *MetacriticScraper) parse(doc *goquery.Document) []review.Raw {
	var reviews []review.Raw
	doc.Find("div.review").EachWithBreak(func(i int, container *goquery.Selection) bool {
		if len(reviews) >= s.max {
			return false
		}

		text := strings.TrimSpace(container.Find("div.review_body").First().Text())
		if text == "" {
			// Collapsed reviews only render a teaser span.
			text = strings.TrimSpace(container.Find("span.blurb").First().Text())
		}
		if text == "" {
			return true
		}

		var rating *float64
		gradeText := strings.TrimSpace(container.Find("div.review_grade").First().Text())
		if gradeText != "" {
			if v, err := strconv.ParseFloat(gradeText, 64); err == nil {
				rating = &v
			}
		}

		reviews = append(reviews, review.Raw{
			Text:   text,
			Rating: rating,
			Source: review.SourceMetacritic,
		})
		return true
	})
	return reviews
}
