package resolvermodule

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidReference indicates a malformed source:id reference string.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrNoAcceptableMatch indicates the best search candidate scored
	// below the acceptance floor. This is a hard failure for the
	// provider attempt, not a low-confidence success.
	ErrNoAcceptableMatch = errors.New("no acceptable match")

	// ErrNotFound indicates a provider has no info for a native id.
	ErrNotFound = errors.New("not found")
)

// SearchError wraps a provider search failure. The orchestrator treats
// it as "this provider yielded no candidates" rather than aborting the
// whole resolution.
type SearchError struct {
	Provider string
	Err      error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search failed on provider %s: %v", e.Provider, e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// ExhaustedError indicates every provider in the fallback chain failed
// or yielded no acceptable match.
type ExhaustedError struct {
	Reference Reference
	Tried     []string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all providers exhausted for %s (tried %d)", e.Reference, len(e.Tried))
}

// recoverable reports whether a provider attempt failure should move
// the orchestrator on to the next provider in the chain.
func recoverable(err error) bool {
	var se *SearchError
	return errors.As(err, &se) || errors.Is(err, ErrNoAcceptableMatch)
}
