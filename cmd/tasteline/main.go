package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tasteline-ai/tasteline/internal/analysis"
	"github.com/tasteline-ai/tasteline/internal/config"
	"github.com/tasteline-ai/tasteline/internal/logging"
	"github.com/tasteline-ai/tasteline/internal/prefs"
	"github.com/tasteline-ai/tasteline/internal/review"
	"github.com/tasteline-ai/tasteline/internal/scoring"
	"github.com/tasteline-ai/tasteline/internal/scrape"
	"github.com/tasteline-ai/tasteline/internal/sentiment"
	"github.com/tasteline-ai/tasteline/internal/server"
	"github.com/tasteline-ai/tasteline/internal/summarize"
	"github.com/tasteline-ai/tasteline/internal/themes"
)

func main() {
	addrFlag := flag.String("addr", "", "HTTP listen address (overrides config)")
	configPath := flag.String("config", "tasteline.yaml", "Path to Tasteline config file")
	flag.Parse()

	if err := run(*configPath, *addrFlag); err != nil {
		fmt.Fprintf(os.Stderr, "tasteline: %v\n", err)
		os.Exit(1)
	}
}

// buildOrchestrator assembles the pipeline from the loaded config;
// every stage takes its thresholds from the config sections, never
// from compiled defaults.
func buildOrchestrator(cfg *config.Config, vocab *themes.Vocabulary, oracle sentiment.Oracle) (*analysis.Orchestrator, error) {
	filter, err := review.NewFilter(review.FilterConfig{
		MinLength:     cfg.Filter.MinLength,
		MaxLength:     cfg.Filter.MaxLength,
		MaxTokenShare: cfg.Filter.MaxTokenShare,
		SpamPatterns:  cfg.Filter.SpamPatterns,
	})
	if err != nil {
		return nil, fmt.Errorf("build review filter: %w", err)
	}

	return analysis.New(
		filter,
		summarize.New(vocab, summarize.Config{
			MaxReviews:     cfg.Summarizer.MaxReviews,
			MaxSentences:   cfg.Summarizer.MaxSentences,
			MaxPerReview:   cfg.Summarizer.MaxPerReview,
			MinSentenceLen: cfg.Summarizer.MinSentenceLen,
		}),
		themes.NewExtractor(vocab, themes.ExtractorConfig{
			ConcentrationBonus: cfg.Themes.ConcentrationBonus,
			TopK:               cfg.Themes.TopK,
		}),
		sentiment.NewAligner(oracle),
		scoring.Weights{Sentiment: cfg.Scoring.SentimentWeight, Theme: cfg.Scoring.ThemeWeight},
		scoring.Thresholds{
			HighlyLikely:       cfg.Recommendation.HighlyLikely,
			WorthTrying:        cfg.Recommendation.WorthTrying,
			ProceedWithCaution: cfg.Recommendation.ProceedWithCaution,
		},
		analysis.Config{MinReviews: cfg.Analysis.MinReviews},
	), nil
}

func run(configPath, addrOverride string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	addr := cfg.Server.Addr
	if addrOverride != "" {
		addr = addrOverride
	}

	vocab, err := themes.Load(cfg.Themes.VocabularyPath)
	if err != nil {
		return fmt.Errorf("load theme vocabulary: %w", err)
	}

	oracle, loadErr := sentiment.Select(sentiment.BertConfig{
		ModelDir:     cfg.Sentiment.ModelDir,
		ModelName:    cfg.Sentiment.ModelName,
		SeqLen:       cfg.Sentiment.SeqLen,
		BatchSize:    cfg.Sentiment.BatchSize,
		PoolSize:     cfg.Sentiment.PoolSize,
		IntraThreads: cfg.Sentiment.IntraThreads,
		InterThreads: cfg.Sentiment.InterThreads,
	})
	if loadErr != nil {
		log.Warn().Err(loadErr).Msg("sentiment model unavailable, running with mock oracle")
	}
	log.Info().Str("mode", string(oracle.Mode())).Str("model", oracle.Model()).Msg("sentiment oracle ready")

	orchestrator, err := buildOrchestrator(cfg, vocab, oracle)
	if err != nil {
		return err
	}

	store, err := prefs.NewStore(cfg.Preferences.Path)
	if err != nil {
		return fmt.Errorf("open preferences store: %w", err)
	}

	scrapeCfg := scrape.Config{
		Timeout:         time.Duration(cfg.Scrape.TimeoutSeconds) * time.Second,
		MaxPerSource:    cfg.Scrape.MaxPerSource,
		RateLimit:       cfg.Server.RateLimit,
		RateLimitWindow: time.Duration(cfg.Server.RateLimitWindow) * time.Second,
	}
	collector := scrape.NewDefaultCollector(scrapeCfg, log)

	srv := server.New(server.Config{
		Addr:            addr,
		RateLimit:       cfg.Server.RateLimit,
		RateLimitWindow: time.Duration(cfg.Server.RateLimitWindow) * time.Second,
	}, orchestrator, store, collector, log)

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("tasteline listening")
		errCh <- httpSrv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}

	if closer, ok := oracle.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Warn().Err(err).Msg("close sentiment oracle")
		}
	}
	return nil
}
