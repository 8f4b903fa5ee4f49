package modifier

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCoherenceLevel is returned for coherence level names outside
// high/balanced/low. Config validation checks for it before any generation.
var ErrInvalidCoherenceLevel = errors.New("unknown coherence level")

// LoadError reports a missing, malformed, or structurally invalid catalog
// file. It is fatal: nothing can be generated without a catalog.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading modifier catalog %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// InsufficientCandidatesError reports that the requested categories expose
// fewer distinct spectrums than the target modifier count, so no valid set
// can exist. Detected before the retry loop starts.
type InsufficientCandidatesError struct {
	Categories []string
	Unknown    []string // requested categories absent from the catalog
	Spectrums  int
	Target     int
}

func (e *InsufficientCandidatesError) Error() string {
	msg := fmt.Sprintf("categories [%s] expose %d distinct spectrums, need %d",
		strings.Join(e.Categories, ", "), e.Spectrums, e.Target)
	if len(e.Unknown) > 0 {
		msg += fmt.Sprintf(" (unknown categories: %s)", strings.Join(e.Unknown, ", "))
	}
	return msg
}

// SelectionExhaustedError reports that the retry budget ran out before a valid
// set was found and the policy forbids returning a best-effort set. Callers
// may retry with a looser coherence level or skip the persona.
type SelectionExhaustedError struct {
	Categories []string
	Level      Level
	Attempts   int
}

func (e *SelectionExhaustedError) Error() string {
	return fmt.Sprintf("no valid modifier set for categories [%s] after %d attempts at %s coherence",
		strings.Join(e.Categories, ", "), e.Attempts, e.Level)
}
