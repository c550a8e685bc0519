package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tasteline-ai/tasteline/internal/analysis"
	"github.com/tasteline-ai/tasteline/internal/prefs"
	"github.com/tasteline-ai/tasteline/internal/review"
	"github.com/tasteline-ai/tasteline/internal/scoring"
	"github.com/tasteline-ai/tasteline/internal/scrape"
	"github.com/tasteline-ai/tasteline/internal/sentiment"
	"github.com/tasteline-ai/tasteline/internal/summarize"
	"github.com/tasteline-ai/tasteline/internal/themes"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	filter, err := review.NewFilter(review.DefaultFilterConfig())
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}
	vocab := themes.Default()
	orchestrator := analysis.New(
		filter,
		summarize.New(vocab, summarize.DefaultConfig()),
		themes.NewExtractor(vocab, themes.DefaultExtractorConfig()),
		sentiment.NewAligner(sentiment.NewMock()),
		scoring.DefaultWeights(),
		scoring.DefaultThresholds(),
		analysis.DefaultConfig(),
	)

	store, err := prefs.NewStore(filepath.Join(t.TempDir(), "preferences.json"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	return New(Config{Addr: ":0"}, orchestrator, store, nil, zerolog.Nop())
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func analyzeBody() AnalyzeRequest {
	return AnalyzeRequest{
		Title:     "The Long Night",
		MediaType: "tv",
		Reviews: []ReviewInput{
			{Text: "Amazing story with excellent acting and a great soundtrack throughout every episode."},
			{Text: "The plot is engaging and the characters feel real, a wonderful experience overall."},
			{Text: "Terrible pacing in the middle episodes, boring filler that nearly made me quit."},
			{Text: "Beautiful visuals and immersive atmosphere, the world feels alive and detailed."},
		},
		Preferences: &PreferencesInput{
			Themes:        []string{"storytelling", "acting", "atmosphere"},
			AverageRating: 4.0,
			MediaType:     "tv",
		},
	}
}

func TestHealthz(t *testing.T) {
	rec := doJSON(t, newTestServer(t).Router(), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAnalyzeInlineReviews(t *testing.T) {
	rec := doJSON(t, newTestServer(t).Router(), http.MethodPost, "/api/v1/analyze", analyzeBody())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.AnalysisID == "" {
		t.Fatal("expected a non-empty analysis id")
	}
	if resp.Result == nil {
		t.Fatal("expected a result")
	}
	if resp.Result.Evaluation.Mode != sentiment.ModeMock {
		t.Fatalf("expected mock mode, got %q", resp.Result.Evaluation.Mode)
	}
	if resp.Result.ReviewsAnalyzed != 4 {
		t.Fatalf("expected 4 reviews analyzed, got %d", resp.Result.ReviewsAnalyzed)
	}
	sum := resp.Result.SentimentSummary
	if sum.Positive+sum.Neutral+sum.Negative != 100 {
		t.Fatalf("sentiment buckets should sum to 100, got %+v", sum)
	}
}

func TestAnalyzeRejectsMissingTitle(t *testing.T) {
	body := analyzeBody()
	body.Title = ""
	rec := doJSON(t, newTestServer(t).Router(), http.MethodPost, "/api/v1/analyze", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAnalyzeRejectsBadMediaType(t *testing.T) {
	body := analyzeBody()
	body.MediaType = "podcast"
	rec := doJSON(t, newTestServer(t).Router(), http.MethodPost, "/api/v1/analyze", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAnalyzeWithoutPreferencesOrProfile(t *testing.T) {
	body := analyzeBody()
	body.Preferences = nil
	rec := doJSON(t, newTestServer(t).Router(), http.MethodPost, "/api/v1/analyze", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 when no profile exists, got %d", rec.Code)
	}
}

func TestAnalyzeUsesStoredProfile(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	putRec := doJSON(t, router, http.MethodPut, "/api/v1/preferences", PreferencesInput{
		Themes:        []string{"storytelling", "acting"},
		AverageRating: 4.5,
		MediaType:     "tv",
	})
	if putRec.Code != http.StatusOK {
		t.Fatalf("put preferences: expected 200, got %d: %s", putRec.Code, putRec.Body.String())
	}

	body := analyzeBody()
	body.Preferences = nil
	rec := doJSON(t, router, http.MethodPost, "/api/v1/analyze", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with stored profile, got %d: %s", rec.Code, rec.Body.String())
	}
}

type canceledScraper struct{}

func (canceledScraper) Source() review.Source { return review.SourceIMDb }

func (canceledScraper) Scrape(ctx context.Context, url string) ([]review.Raw, error) {
	return nil, context.Canceled
}

func TestAnalyzeScrapeCancellationIsNotAClientError(t *testing.T) {
	srv := newTestServer(t)
	srv.collector = scrape.NewCollector(zerolog.Nop(), canceledScraper{})

	body := analyzeBody()
	body.Reviews = nil
	body.IMDbURL = "https://www.imdb.com/title/tt0111161/"
	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/analyze", body)
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504 for aborted collection, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAnalyzeRejectsMalformedSourceURL(t *testing.T) {
	srv := newTestServer(t)
	srv.collector = scrape.NewCollector(zerolog.Nop(), canceledScraper{})

	body := analyzeBody()
	body.IMDbURL = "https://example.com/not-imdb"
	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/analyze", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed source url, got %d", rec.Code)
	}
}

func TestAnalyzeInsufficientReviews(t *testing.T) {
	body := analyzeBody()
	body.Reviews = []ReviewInput{{Text: "too short"}}
	rec := doJSON(t, newTestServer(t).Router(), http.MethodPost, "/api/v1/analyze", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPreferencesLifecycle(t *testing.T) {
	router := newTestServer(t).Router()

	if rec := doJSON(t, router, http.MethodGet, "/api/v1/preferences", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before save, got %d", rec.Code)
	}

	in := PreferencesInput{
		Themes:        []string{"combat", "exploration"},
		AverageRating: 3.5,
		MediaType:     "game",
	}
	if rec := doJSON(t, router, http.MethodPut, "/api/v1/preferences", in); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on save, got %d: %s", rec.Code, rec.Body.String())
	}

	getRec := doJSON(t, router, http.MethodGet, "/api/v1/preferences", nil)
	if getRec.Code != http.StatusOK {
		t.Fatalf("expected 200 after save, got %d", getRec.Code)
	}
	var profile analysis.Profile
	if err := json.Unmarshal(getRec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.MediaType != analysis.MediaGame || len(profile.Themes) != 2 {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	if rec := doJSON(t, router, http.MethodDelete, "/api/v1/preferences", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on delete, got %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodGet, "/api/v1/preferences", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestPutPreferencesRejectsEmptyThemes(t *testing.T) {
	rec := doJSON(t, newTestServer(t).Router(), http.MethodPut, "/api/v1/preferences", PreferencesInput{
		Themes:        []string{},
		AverageRating: 4,
		MediaType:     "movie",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
