package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tasteline-ai/tasteline/internal/analysis"
	"github.com/tasteline-ai/tasteline/internal/metrics"
	"github.com/tasteline-ai/tasteline/internal/prefs"
	"github.com/tasteline-ai/tasteline/internal/review"
)

const maxRequestBody = 1 << 20 // 1 MiB

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req AnalyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		metrics.RecordFailure("validation")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	raws := make([]review.Raw, 0, len(req.Reviews))
	for _, in := range req.Reviews {
		raws = append(raws, in.toRaw())
	}

	urls := req.sourceURLs()
	if len(urls) > 0 && s.collector != nil {
		scraped, err := s.collector.Collect(r.Context(), urls)
		if err != nil {
			// Collect only fails on bad URLs or a dead request
			// context; scraper errors degrade to empty slices.
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				metrics.RecordFailure("canceled")
				writeError(w, http.StatusGatewayTimeout, "review collection aborted: "+err.Error())
				return
			}
			metrics.RecordFailure("validation")
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		for _, raw := range scraped {
			metrics.RecordScrape(string(raw.Source), 1)
		}
		raws = append(raws, scraped...)
	}

	profile, ok := s.resolveProfile(w, req.Preferences)
	if !ok {
		return
	}

	result, err := s.orchestrator.Analyze(r.Context(), raws, profile)
	if err != nil {
		s.writeAnalyzeError(w, err)
		return
	}

	metrics.RecordAnalysis(string(result.Recommendation), string(result.Evaluation.Mode), result.ReviewsAnalyzed, time.Since(started))
	s.log.Info().
		Str("title", req.Title).
		Str("tier", string(result.Recommendation)).
		Float64("score", result.CompatibilityScore).
		Int("reviews", result.ReviewsAnalyzed).
		Msg("analysis complete")

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		AnalysisID: uuid.NewString(),
		Title:      req.Title,
		MediaType:  req.MediaType,
		Result:     result,
	})
}

// resolveProfile prefers inline preferences and falls back to the
// stored profile. A missing profile is a client error; there is
// nothing to score against.
func (s *Server) resolveProfile(w http.ResponseWriter, inline *PreferencesInput) (analysis.Profile, bool) {
	if inline != nil {
		return inline.toProfile(), true
	}

	profile, err := s.prefs.Load()
	if err != nil {
		if errors.Is(err, prefs.ErrNotFound) {
			metrics.RecordFailure("validation")
			writeError(w, http.StatusBadRequest, "no preferences saved; supply preferences inline or save them first")
		} else {
			metrics.RecordFailure("internal")
			s.log.Error().Err(err).Msg("load preferences")
			writeError(w, http.StatusInternalServerError, "failed to load preferences")
		}
		return analysis.Profile{}, false
	}
	return profile, true
}

func (s *Server) writeAnalyzeError(w http.ResponseWriter, err error) {
	var validation *analysis.ValidationError
	var insufficient *analysis.InsufficientReviewsError
	switch {
	case errors.As(err, &validation):
		metrics.RecordFailure("validation")
		writeError(w, http.StatusBadRequest, validation.Error())
	case errors.As(err, &insufficient):
		metrics.RecordFailure("insufficient_reviews")
		writeError(w, http.StatusUnprocessableEntity, insufficient.Error())
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		metrics.RecordFailure("canceled")
		writeError(w, http.StatusGatewayTimeout, "analysis aborted: "+err.Error())
	default:
		metrics.RecordFailure("internal")
		s.log.Error().Err(err).Msg("analysis failed")
		writeError(w, http.StatusInternalServerError, "analysis failed")
	}
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	profile, err := s.prefs.Load()
	if err != nil {
		if errors.Is(err, prefs.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no preferences saved")
			return
		}
		s.log.Error().Err(err).Msg("load preferences")
		writeError(w, http.StatusInternalServerError, "failed to load preferences")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	var in PreferencesInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.validate.Struct(&in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile := in.toProfile()
	if err := s.prefs.Save(profile); err != nil {
		s.log.Error().Err(err).Msg("save preferences")
		writeError(w, http.StatusInternalServerError, "failed to save preferences")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleDeletePreferences(w http.ResponseWriter, r *http.Request) {
	if err := s.prefs.Delete(); err != nil {
		s.log.Error().Err(err).Msg("delete preferences")
		writeError(w, http.StatusInternalServerError, "failed to delete preferences")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
