package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func TestValidateDefaults(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
}

func TestValidateFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "missing server addr",
			mutate: func(c *Config) { c.Server.Addr = "  " },
			want:   "server.addr",
		},
		{
			name:   "zero rate limit",
			mutate: func(c *Config) { c.Server.RateLimit = 0 },
			want:   "rate_limit",
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.Logging.Level = "verbose" },
			want:   "logging.level",
		},
		{
			name:   "bad log format",
			mutate: func(c *Config) { c.Logging.Format = "text" },
			want:   "logging.format",
		},
		{
			name:   "max length below min length",
			mutate: func(c *Config) { c.Filter.MaxLength = 10 },
			want:   "filter.max_length",
		},
		{
			name:   "token share out of range",
			mutate: func(c *Config) { c.Filter.MaxTokenShare = 1.5 },
			want:   "max_token_share",
		},
		{
			name:   "broken spam pattern",
			mutate: func(c *Config) { c.Filter.SpamPatterns = []string{"("} },
			want:   "spam_patterns",
		},
		{
			name:   "concentration bonus below one",
			mutate: func(c *Config) { c.Themes.ConcentrationBonus = 0.5 },
			want:   "concentration_bonus",
		},
		{
			name:   "negative scoring weight",
			mutate: func(c *Config) { c.Scoring.SentimentWeight = -0.1 },
			want:   "scoring",
		},
		{
			name: "thresholds not descending",
			mutate: func(c *Config) {
				c.Recommendation.HighlyLikely = 0.5
				c.Recommendation.WorthTrying = 0.6
			},
			want: "recommendation",
		},
		{
			name:   "empty preferences path",
			mutate: func(c *Config) { c.Preferences.Path = "" },
			want:   "preferences.path",
		},
		{
			name:   "zero scrape timeout",
			mutate: func(c *Config) { c.Scrape.TimeoutSeconds = 0 },
			want:   "scrape.timeout_seconds",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got: %v", tc.want, err)
			}
		})
	}
}

func TestValidateNil(t *testing.T) {
	if err := Validate(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}
