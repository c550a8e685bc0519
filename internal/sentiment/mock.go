package sentiment

import (
	"context"
	"strings"
)

// Cue words for the heuristic fallback. Matching is substring-based on
// the lowercased text, mirroring how the summarizer spots cues.
var (
	mockPositive = []string{"great", "excellent", "amazing", "love", "best", "perfect", "masterpiece", "wonderful"}
	mockNegative = []string{"bad", "worst", "terrible", "awful", "hate", "disappointing", "boring", "waste"}
)

// MockOracle stands in when the real model fails to load. It derives
// plausible star ratings from sentiment cue words so results stay
// stable run to run; its verdicts are clearly marked by evaluation
// mode "mock", never mixed with model output.
type MockOracle struct{}

// NewMock returns the fallback oracle.
func NewMock() *MockOracle { return &MockOracle{} }

// Mode implements Oracle.
func (m *MockOracle) Mode() Mode { return ModeMock }

// Model implements Oracle.
func (m *MockOracle) Model() string { return "heuristic-lexicon" }

// Score implements Oracle. It never fails and does no I/O.
func (m *MockOracle) Score(ctx context.Context, texts []string) ([]Verdict, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]Verdict, len(texts))
	for i, text := range texts {
		out[i] = mockVerdict(text)
	}
	return out, nil
}

func mockVerdict(text string) Verdict {
	lower := strings.ToLower(text)

	pos, neg := 0, 0
	for _, cue := range mockPositive {
		pos += strings.Count(lower, cue)
	}
	for _, cue := range mockNegative {
		neg += strings.Count(lower, cue)
	}

	balance := pos - neg
	if balance > 2 {
		balance = 2
	}
	if balance < -2 {
		balance = -2
	}
	stars := 3 + balance

	hits := pos + neg
	confidence := 0.5
	if hits > 0 {
		confidence = 0.6 + 0.08*float64(min(hits, 4))
	}

	return Verdict{Stars: stars, Confidence: confidence}
}
