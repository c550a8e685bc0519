// Package config loads and validates the YAML configuration. Every
// pipeline threshold lives here so operators can tune behavior without
// a rebuild; validation happens once at process start.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tasteline-ai/tasteline/internal/review"
)

// Config holds the full Tasteline configuration.
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Logging        LoggingConfig        `yaml:"logging"`
	Filter         FilterConfig         `yaml:"filter"`
	Summarizer     SummarizerConfig     `yaml:"summarizer"`
	Themes         ThemesConfig         `yaml:"themes"`
	Sentiment      SentimentConfig      `yaml:"sentiment"`
	Scoring        ScoringConfig        `yaml:"scoring"`
	Recommendation RecommendationConfig `yaml:"recommendation"`
	Analysis       AnalysisConfig       `yaml:"analysis"`
	Preferences    PreferencesConfig    `yaml:"preferences"`
	Scrape         ScrapeConfig         `yaml:"scrape"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"` // HTTP listen address, e.g. ":8080"
	// RateLimit bounds requests per client IP per window.
	RateLimit       int `yaml:"rate_limit"`
	RateLimitWindow int `yaml:"rate_limit_window_seconds"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // json | console
}

type FilterConfig struct {
	MinLength     int      `yaml:"min_length"`
	MaxLength     int      `yaml:"max_length"`
	MaxTokenShare float64  `yaml:"max_token_share"`
	SpamPatterns  []string `yaml:"spam_patterns"`
}

type SummarizerConfig struct {
	MaxReviews     int `yaml:"max_reviews"`
	MaxSentences   int `yaml:"max_sentences"`
	MaxPerReview   int `yaml:"max_per_review"`
	MinSentenceLen int `yaml:"min_sentence_length"`
}

type ThemesConfig struct {
	// VocabularyPath overrides the compiled-in theme table.
	VocabularyPath     string  `yaml:"vocabulary_path"`
	ConcentrationBonus float64 `yaml:"concentration_bonus"`
	TopK               int     `yaml:"top_k"`
}

type SentimentConfig struct {
	// ModelDir holds the ONNX export; empty disables the model-backed
	// oracle and starts straight in mock mode.
	ModelDir     string `yaml:"model_dir"`
	ModelName    string `yaml:"model_name"`
	SeqLen       int    `yaml:"seq_len"`
	BatchSize    int    `yaml:"batch_size"`
	PoolSize     int    `yaml:"pool_size"`
	IntraThreads int    `yaml:"intra_threads"`
	InterThreads int    `yaml:"inter_threads"`
}

type ScoringConfig struct {
	SentimentWeight float64 `yaml:"sentiment_weight"`
	ThemeWeight     float64 `yaml:"theme_weight"`
}

type RecommendationConfig struct {
	HighlyLikely       float64 `yaml:"highly_likely_threshold"`
	WorthTrying        float64 `yaml:"worth_trying_threshold"`
	ProceedWithCaution float64 `yaml:"proceed_caution_threshold"`
}

type AnalysisConfig struct {
	MinReviews int `yaml:"min_reviews"`
}

type PreferencesConfig struct {
	Path string `yaml:"path"`
}

type ScrapeConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
	MaxPerSource   int `yaml:"max_per_source"`
}

// Load reads configuration from a YAML file. A missing file yields the
// default config and no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg
}

// applyEnvOverrides lets deploy environments steer the listen address
// and model location without editing the config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TASTELINE_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TASTELINE_MODEL_DIR"); v != "" {
		cfg.Sentiment.ModelDir = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.RateLimit <= 0 {
		cfg.Server.RateLimit = 100
	}
	if cfg.Server.RateLimitWindow <= 0 {
		cfg.Server.RateLimitWindow = 60
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Filter.MinLength <= 0 {
		cfg.Filter.MinLength = 20
	}
	if cfg.Filter.MaxLength <= 0 {
		cfg.Filter.MaxLength = 5000
	}
	if cfg.Filter.MaxTokenShare <= 0 {
		cfg.Filter.MaxTokenShare = 0.3
	}
	if len(cfg.Filter.SpamPatterns) == 0 {
		cfg.Filter.SpamPatterns = review.DefaultSpamPatterns
	}

	if cfg.Summarizer.MaxReviews <= 0 {
		cfg.Summarizer.MaxReviews = 100
	}
	if cfg.Summarizer.MaxSentences <= 0 {
		cfg.Summarizer.MaxSentences = 5
	}
	if cfg.Summarizer.MaxPerReview <= 0 {
		cfg.Summarizer.MaxPerReview = 2
	}
	if cfg.Summarizer.MinSentenceLen <= 0 {
		cfg.Summarizer.MinSentenceLen = 15
	}

	if cfg.Themes.ConcentrationBonus <= 0 {
		cfg.Themes.ConcentrationBonus = 1.2
	}
	if cfg.Themes.TopK <= 0 {
		cfg.Themes.TopK = 4
	}

	if cfg.Sentiment.ModelName == "" {
		cfg.Sentiment.ModelName = "nlptown/bert-base-multilingual-uncased-sentiment"
	}
	if cfg.Sentiment.SeqLen <= 0 {
		cfg.Sentiment.SeqLen = 256
	}
	if cfg.Sentiment.BatchSize <= 0 {
		cfg.Sentiment.BatchSize = 16
	}
	if cfg.Sentiment.PoolSize <= 0 {
		cfg.Sentiment.PoolSize = 2
	}
	if cfg.Sentiment.IntraThreads <= 0 {
		cfg.Sentiment.IntraThreads = 2
	}
	if cfg.Sentiment.InterThreads <= 0 {
		cfg.Sentiment.InterThreads = 1
	}

	if cfg.Scoring.SentimentWeight == 0 && cfg.Scoring.ThemeWeight == 0 {
		cfg.Scoring.SentimentWeight = 0.5
		cfg.Scoring.ThemeWeight = 0.5
	}

	if cfg.Recommendation.HighlyLikely == 0 {
		cfg.Recommendation.HighlyLikely = 0.8
	}
	if cfg.Recommendation.WorthTrying == 0 {
		cfg.Recommendation.WorthTrying = 0.6
	}
	if cfg.Recommendation.ProceedWithCaution == 0 {
		cfg.Recommendation.ProceedWithCaution = 0.4
	}

	if cfg.Analysis.MinReviews <= 0 {
		cfg.Analysis.MinReviews = 1
	}

	if cfg.Preferences.Path == "" {
		cfg.Preferences.Path = "preferences.json"
	}

	if cfg.Scrape.TimeoutSeconds <= 0 {
		cfg.Scrape.TimeoutSeconds = 10
	}
	if cfg.Scrape.MaxPerSource <= 0 {
		cfg.Scrape.MaxPerSource = 20
	}
}
