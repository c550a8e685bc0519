package scoring

import "fmt"

// Tier is the terminal recommendation label.
type Tier string

const (
	HighlyLikely       Tier = "Highly Likely"
	WorthTrying        Tier = "Worth Trying"
	ProceedWithCaution Tier = "Proceed with Caution"
	LikelyToDisappoint Tier = "Likely to Disappoint"
)

// Thresholds are the tier cutoffs. They must be strictly descending;
// anything else is a configuration error caught at startup, never at
// request time.
type Thresholds struct {
	HighlyLikely       float64
	WorthTrying        float64
	ProceedWithCaution float64
}

// DefaultThresholds returns the stock cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighlyLikely:       0.8,
		WorthTrying:        0.6,
		ProceedWithCaution: 0.4,
	}
}

// Validate enforces strict ordering and the [0,1] range.
func (t Thresholds) Validate() error {
	if t.HighlyLikely <= t.WorthTrying || t.WorthTrying <= t.ProceedWithCaution {
		return fmt.Errorf("recommendation thresholds must be strictly descending, got %g/%g/%g",
			t.HighlyLikely, t.WorthTrying, t.ProceedWithCaution)
	}
	if t.ProceedWithCaution <= 0 || t.HighlyLikely > 1 {
		return fmt.Errorf("recommendation thresholds must lie in (0,1], got %g/%g/%g",
			t.HighlyLikely, t.WorthTrying, t.ProceedWithCaution)
	}
	return nil
}

// Classify maps a score onto its tier. Thresholds are inclusive at the
// lower bound of each tier.
func (t Thresholds) Classify(score float64) Tier {
	switch {
	case score >= t.HighlyLikely:
		return HighlyLikely
	case score >= t.WorthTrying:
		return WorthTrying
	case score >= t.ProceedWithCaution:
		return ProceedWithCaution
	default:
		return LikelyToDisappoint
	}
}

// rank orders tiers from worst to best for monotonicity checks.
func (tier Tier) rank() int {
	switch tier {
	case LikelyToDisappoint:
		return 0
	case ProceedWithCaution:
		return 1
	case WorthTrying:
		return 2
	case HighlyLikely:
		return 3
	}
	return -1
}
