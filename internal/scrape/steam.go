package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tasteline-ai/tasteline/internal/review"
)

const steamAPIBase = "https://store.steampowered.com/appreviews/"

var steamAppIDExpr = regexp.MustCompile(`/app/(\d+)`)

// SteamScraper pulls reviews from Steam's public appreviews endpoint.
// Steam only exposes a thumbs up or down verdict, mapped to 1 and 0.
type SteamScraper struct {
	client  *http.Client
	limiter *rateLimiter
	max     int
	// apiBase is overridable for tests.
	apiBase string
}

// NewSteamScraper builds a scraper with the shared rate limiter.
func NewSteamScraper(cfg Config, limiter *rateLimiter) *SteamScraper {
	return &SteamScraper{
		client:  newHTTPClient(cfg),
		limiter: limiter,
		max:     maxPerSource(cfg),
		apiBase: steamAPIBase,
	}
}

func (s *SteamScraper) Source() review.Source { return review.SourceSteam }

type steamResponse struct {
	Success int `json:"success"`
	Reviews []struct {
		Review  string `json:"review"`
		VotedUp bool   `json:"voted_up"`
	} `json:"reviews"`
}

// Scrape extracts the app ID from a store URL and queries the review
// API for recent English reviews.
func (s *SteamScraper) Scrape(ctx context.Context, storeURL string) ([]review.Raw, error) {
	match := steamAppIDExpr.FindStringSubmatch(storeURL)
	if match == nil {
		return nil, fmt.Errorf("no steam app id in url %q", storeURL)
	}
	appID := match[1]

	params := url.Values{}
	params.Set("json", "1")
	params.Set("filter", "recent")
	params.Set("language", "english")
	params.Set("num_per_page", strconv.Itoa(s.max))
	apiURL := strings.TrimRight(s.apiBase, "/") + "/" + appID + "?" + params.Encode()

	resp, err := get(ctx, s.client, s.limiter, apiURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload steamResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode steam response: %w", err)
	}
	if payload.Success != 1 {
		return nil, fmt.Errorf("steam api reported failure for app %s", appID)
	}

	var reviews []review.Raw
	for _, r := range payload.Reviews {
		if len(reviews) >= s.max {
			break
		}
		if r.Review == "" {
			continue
		}
		rating := 0.0
		if r.VotedUp {
			rating = 1.0
		}
		reviews = append(reviews, review.Raw{
			Text:   r.Review,
			Rating: &rating,
			Source: review.SourceSteam,
		})
	}
	return reviews, nil
}
