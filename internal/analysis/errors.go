package analysis

import "fmt"

// ValidationError reports a malformed raw review batch. It is fatal to
// the single request and never retried internally.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid analysis input: " + e.Reason
}

// InsufficientReviewsError reports that too few reviews survived
// filtering to say anything useful. It is deliberately distinct from a
// scraping failure: an unreachable platform surfaces here as an empty
// raw list, and callers can tell the two apart.
type InsufficientReviewsError struct {
	Got int
	Min int
}

func (e *InsufficientReviewsError) Error() string {
	return fmt.Sprintf("insufficient reviews: %d passed filtering, need at least %d", e.Got, e.Min)
}
