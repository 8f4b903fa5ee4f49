package modifier

import "fmt"

// Level names a personality coherence setting from configuration.
type Level string

const (
	LevelHigh     Level = "high"
	LevelBalanced Level = "balanced"
	LevelLow      Level = "low"
)

// Policy holds the concrete selection parameters a coherence level maps to.
type Policy struct {
	// MaxAttempts bounds the rejection-sampling retry budget.
	MaxAttempts int
	// IntensitySpreadLimit bounds max-min intensity across the selected set.
	// Negative means unbounded.
	IntensitySpreadLimit int
	// AllowContradictionFallback permits returning the best-effort set when
	// the retry budget runs out instead of failing.
	AllowContradictionFallback bool
}

// Unbounded disables the intensity spread check.
const Unbounded = -1

// PolicyFor maps a coherence level name to its selection parameters.
func PolicyFor(level Level) (Policy, error) {
	switch level {
	case LevelHigh:
		return Policy{MaxAttempts: 50, IntensitySpreadLimit: 1}, nil
	case LevelBalanced:
		return Policy{MaxAttempts: 15, IntensitySpreadLimit: 2}, nil
	case LevelLow:
		return Policy{MaxAttempts: 3, IntensitySpreadLimit: Unbounded, AllowContradictionFallback: true}, nil
	default:
		return Policy{}, fmt.Errorf("%w: %q", ErrInvalidCoherenceLevel, level)
	}
}
