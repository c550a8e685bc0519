// Package sentiment scores review text on a 1-5 star scale and
// aggregates the verdicts into a normalized distribution. Two oracle
// variants exist: one backed by a local ONNX sentiment model and a
// heuristic mock used when the model cannot be loaded. The variant is
// chosen once at process start and never changes afterwards.
package sentiment

import "context"

// Mode names the oracle variant that produced a verdict batch.
type Mode string

const (
	ModeBert Mode = "bert"
	ModeMock Mode = "mock"
)

// Verdict is one review's sentiment classification.
type Verdict struct {
	Stars      int     // 1..5
	Confidence float64 // 0..1
}

// Oracle scores a batch of review texts, one verdict per text.
type Oracle interface {
	// Mode reports which variant this is.
	Mode() Mode
	// Model names the underlying model for result transparency.
	Model() string
	// Score returns exactly one verdict per input text, in order.
	Score(ctx context.Context, texts []string) ([]Verdict, error)
}

// Select tries to load the model-backed oracle once and falls back to
// the mock for the remainder of the process lifetime. The returned
// error is the load failure, for one-time logging by the caller; the
// oracle is always usable.
func Select(cfg BertConfig) (Oracle, error) {
	bert, err := LoadBert(cfg)
	if err != nil {
		return NewMock(), err
	}
	return bert, nil
}
