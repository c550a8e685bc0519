package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/tasteline-ai/tasteline/internal/review"
)

func TestValidateURL(t *testing.T) {
	cases := []struct {
		name   string
		source review.Source
		url    string
		ok     bool
	}{
		{"imdb title", review.SourceIMDb, "https://www.imdb.com/title/tt0111161/", true},
		{"imdb no www", review.SourceIMDb, "http://imdb.com/title/tt0111161", true},
		{"imdb wrong path", review.SourceIMDb, "https://www.imdb.com/name/nm0000151/", false},
		{"steam app", review.SourceSteam, "https://store.steampowered.com/app/440/", true},
		{"steam community", review.SourceSteam, "https://steamcommunity.com/app/440", false},
		{"metacritic", review.SourceMetacritic, "https://www.metacritic.com/movie/heat", true},
		{"metacritic wrong host", review.SourceMetacritic, "https://example.com/movie/heat", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateURL(tc.source, tc.url)
			if tc.ok && err != nil {
				t.Fatalf("expected valid, got: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected validation error for %q", tc.url)
			}
		})
	}
}

const imdbPage = `
<html><body>
  <div class="review-container">
    <span class="rating-other-user-rating"><span>9</span><span class="point-scale">/10</span></span>
    <div class="text">A gripping story with outstanding performances throughout.</div>
  </div>
  <div class="review-container">
    <div class="text">No rating on this one but the atmosphere is superb.</div>
  </div>
  <div class="review-container">
    <span class="rating-other-user-rating"><span>3</span></span>
    <div class="text"></div>
  </div>
</body></html>`

func TestIMDbParse(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(imdbPage))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}

	s := NewIMDbScraper(DefaultConfig(), nil)
	reviews := s.parse(doc)
	if len(reviews) != 2 {
		t.Fatalf("expected 2 reviews (empty text skipped), got %d", len(reviews))
	}
	if reviews[0].Rating == nil || *reviews[0].Rating != 9 {
		t.Fatalf("expected rating 9, got %v", reviews[0].Rating)
	}
	if reviews[1].Rating != nil {
		t.Fatalf("expected nil rating, got %v", *reviews[1].Rating)
	}
	if reviews[0].Source != review.SourceIMDb {
		t.Fatalf("expected imdb source, got %q", reviews[0].Source)
	}
}

func TestIMDbScrapeAppendsReviewsPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(imdbPage))
	}))
	defer srv.Close()

	s := NewIMDbScraper(DefaultConfig(), nil)
	if _, err := s.Scrape(context.Background(), srv.URL+"/title/tt0111161"); err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if gotPath != "/title/tt0111161/reviews" {
		t.Fatalf("expected /reviews suffix, got %q", gotPath)
	}
}

const metacriticPage = `
<html><body>
  <div class="review">
    <div class="review_grade">8</div>
    <div class="review_body">Tense and beautifully shot, the soundtrack carries every scene.</div>
  </div>
  <div class="review">
    <div class="review_grade">4</div>
    <span class="blurb">Shallow characters drag down an otherwise fine premise.</span>
  </div>
</body></html>`

func TestMetacriticParse(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(metacriticPage))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}

	s := NewMetacriticScraper(DefaultConfig(), nil)
	reviews := s.parse(doc)
	if len(reviews) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(reviews))
	}
	if reviews[0].Rating == nil || *reviews[0].Rating != 8 {
		t.Fatalf("expected rating 8, got %v", reviews[0].Rating)
	}
	if !strings.Contains(reviews[1].Text, "Shallow characters") {
		t.Fatalf("blurb fallback not used: %q", reviews[1].Text)
	}
}

func TestSteamScrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("json") != "1" {
			t.Errorf("expected json=1, got query %q", r.URL.RawQuery)
		}
		w.Write([]byte(`{
			"success": 1,
			"reviews": [
				{"review": "Endless replay value, the gunplay feels great.", "voted_up": true},
				{"review": "Crashes constantly on my machine.", "voted_up": false},
				{"review": "", "voted_up": true}
			]
		}`))
	}))
	defer srv.Close()

	s := NewSteamScraper(DefaultConfig(), nil)
	s.apiBase = srv.URL + "/"

	reviews, err := s.Scrape(context.Background(), "https://store.steampowered.com/app/440/")
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if len(reviews) != 2 {
		t.Fatalf("expected 2 reviews (empty skipped), got %d", len(reviews))
	}
	if *reviews[0].Rating != 1 || *reviews[1].Rating != 0 {
		t.Fatalf("expected ratings 1 and 0, got %v and %v", *reviews[0].Rating, *reviews[1].Rating)
	}
}

func TestSteamScrapeRejectsBadURL(t *testing.T) {
	s := NewSteamScraper(DefaultConfig(), nil)
	if _, err := s.Scrape(context.Background(), "https://store.steampowered.com/search/"); err == nil {
		t.Fatal("expected error for URL without app id")
	}
}

type stubScraper struct {
	source  review.Source
	reviews []review.Raw
	err     error
}

func (s *stubScraper) Source() review.Source { return s.source }

func (s *stubScraper) Scrape(ctx context.Context, url string) ([]review.Raw, error) {
	return s.reviews, s.err
}

func TestCollectorSkipsFailedSource(t *testing.T) {
	good := &stubScraper{
		source:  review.SourceIMDb,
		reviews: []review.Raw{{Text: "fine movie overall", Source: review.SourceIMDb}},
	}
	bad := &stubScraper{
		source: review.SourceMetacritic,
		err:    http.ErrHandlerTimeout,
	}

	c := NewCollector(zerolog.Nop(), good, bad)
	got, err := c.Collect(context.Background(), map[review.Source]string{
		review.SourceIMDb:       "https://www.imdb.com/title/tt0111161/",
		review.SourceMetacritic: "https://www.metacritic.com/movie/heat",
	})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(got) != 1 || got[0].Source != review.SourceIMDb {
		t.Fatalf("expected only imdb reviews, got %+v", got)
	}
}

func TestCollectorValidatesURLsUpFront(t *testing.T) {
	c := NewCollector(zerolog.Nop(), &stubScraper{source: review.SourceIMDb})
	_, err := c.Collect(context.Background(), map[review.Source]string{
		review.SourceIMDb: "https://example.com/not-imdb",
	})
	if err == nil {
		t.Fatal("expected URL validation error")
	}
}

func TestRateLimiterBlocksAtLimit(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := base
	r := newRateLimiter(2, time.Minute)
	r.now = func() time.Time { return current }

	if wait := r.reserve(); wait != 0 {
		t.Fatalf("first request should pass, wait=%v", wait)
	}
	if wait := r.reserve(); wait != 0 {
		t.Fatalf("second request should pass, wait=%v", wait)
	}
	if wait := r.reserve(); wait != time.Minute {
		t.Fatalf("third request should wait a full window, got %v", wait)
	}

	current = base.Add(61 * time.Second)
	if wait := r.reserve(); wait != 0 {
		t.Fatalf("request after window should pass, wait=%v", wait)
	}
}

func TestRateLimiterWaitHonorsContext(t *testing.T) {
	r := newRateLimiter(1, time.Hour)
	if err := r.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := r.Wait(ctx); err == nil {
		t.Fatal("expected context deadline error")
	}
}
