package learnpath

import (
	"fmt"
	"math"
	"strings"
)

// ScoringConfig holds the accuracy thresholds used to turn raw answer
// counts into an Outcome.
type ScoringConfig struct {
	// PartialThreshold: accuracy below this marks the node partial.
	PartialThreshold float64
	// SupportThreshold: accuracy below this flags the learner for support.
	SupportThreshold float64
}

// DefaultScoringConfig returns the standard thresholds (80% / 50%).
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		PartialThreshold: 0.80,
		SupportThreshold: 0.50,
	}
}

// Validate checks that both thresholds lie in [0, 1] and support <= partial.
func (c ScoringConfig) Validate() error {
	if c.PartialThreshold < 0 || c.PartialThreshold > 1 {
		return fmt.Errorf("partial threshold must be in [0, 1], got %f", c.PartialThreshold)
	}
	if c.SupportThreshold < 0 || c.SupportThreshold > 1 {
		return fmt.Errorf("support threshold must be in [0, 1], got %f", c.SupportThreshold)
	}
	if c.SupportThreshold > c.PartialThreshold {
		return fmt.Errorf("support threshold %f is above partial threshold %f", c.SupportThreshold, c.PartialThreshold)
	}
	return nil
}

// ScoreAnswers builds the outcome of a session from its answer counts.
// A session with no answers is not completed.
func ScoreAnswers(correct, total int, cfg ScoringConfig) Outcome {
	if total <= 0 {
		return Outcome{}
	}
	correct = max(0, min(correct, total))

	accuracy := float64(correct) / float64(total)
	return Outcome{
		Completed:       true,
		Partial:         accuracy < cfg.PartialThreshold,
		NeedsSupport:    accuracy < cfg.SupportThreshold,
		ConfidenceScore: int(math.Round(accuracy * 100)),
	}
}

// Validate checks that an outcome is well-formed before it reaches the reducer.
func (o Outcome) Validate() error {
	var errs []string
	if o.ConfidenceScore < 0 || o.ConfidenceScore > 100 {
		errs = append(errs, fmt.Sprintf("confidence score %d outside 0..100", o.ConfidenceScore))
	}
	if !o.Completed && o.Partial {
		errs = append(errs, "partial outcome must also be completed")
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid outcome: %s", strings.Join(errs, "; "))
	}
	return nil
}
