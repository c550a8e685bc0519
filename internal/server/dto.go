package server

import (
	"github.com/tasteline-ai/tasteline/internal/analysis"
	"github.com/tasteline-ai/tasteline/internal/review"
)

// ReviewInput is one inline review supplied with an analyze request.
type ReviewInput struct {
	Text   string   `json:"text" validate:"required"`
	Rating *float64 `json:"rating,omitempty"`
	Author string   `json:"author,omitempty"`
	Source string   `json:"source,omitempty" validate:"omitempty,oneof=imdb steam metacritic"`
}

// PreferencesInput is the taste profile, either stored via the
// preferences endpoints or supplied inline per request.
type PreferencesInput struct {
	Themes        []string `json:"themes" validate:"required,min=1,dive,required"`
	AverageRating float64  `json:"average_rating" validate:"gte=0,lte=5"`
	MediaType     string   `json:"media_type" validate:"required,oneof=tv movie game"`
}

// AnalyzeRequest describes one title to analyze. Reviews may come
// inline, from platform URLs, or both.
type AnalyzeRequest struct {
	Title         string            `json:"title" validate:"required"`
	MediaType     string            `json:"media_type" validate:"required,oneof=tv movie game"`
	Reviews       []ReviewInput     `json:"reviews,omitempty" validate:"omitempty,dive"`
	IMDbURL       string            `json:"imdb_url,omitempty" validate:"omitempty,url"`
	SteamURL      string            `json:"steam_url,omitempty" validate:"omitempty,url"`
	MetacriticURL string            `json:"metacritic_url,omitempty" validate:"omitempty,url"`
	Preferences   *PreferencesInput `json:"preferences,omitempty"`
}

// AnalyzeResponse wraps the pipeline result with request identity.
type AnalyzeResponse struct {
	AnalysisID string           `json:"analysis_id"`
	Title      string           `json:"title"`
	MediaType  string           `json:"media_type"`
	Result     *analysis.Result `json:"result"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (r *AnalyzeRequest) sourceURLs() map[review.Source]string {
	urls := make(map[review.Source]string)
	if r.IMDbURL != "" {
		urls[review.SourceIMDb] = r.IMDbURL
	}
	if r.SteamURL != "" {
		urls[review.SourceSteam] = r.SteamURL
	}
	if r.MetacriticURL != "" {
		urls[review.SourceMetacritic] = r.MetacriticURL
	}
	return urls
}

func (r *ReviewInput) toRaw() review.Raw {
	return review.Raw{
		Text:   r.Text,
		Rating: r.Rating,
		Author: r.Author,
		Source: review.Source(r.Source),
	}
}

func (p *PreferencesInput) toProfile() analysis.Profile {
	return analysis.Profile{
		Themes:        p.Themes,
		AverageRating: p.AverageRating,
		MediaType:     analysis.MediaType(p.MediaType),
	}
}
