package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that no quote exists anywhere in the pipeline.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrUpstream indicates that the rate provider call failed after retries.
var ErrUpstream = errors.New("upstream provider error")

// ErrStore indicates a persistence-layer fault in the quote store.
var ErrStore = errors.New("store error")

// ErrCache indicates a hot-cache fault. Always treated as a soft failure.
var ErrCache = errors.New("cache error")

// Wrap annotates err with one of the sentinel errors above so that callers
// can classify it with errors.Is while keeping the original cause.
func Wrap(sentinel error, cause error, msg string) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", sentinel, msg)
	}
	return fmt.Errorf("%w: %s: %w", sentinel, msg, cause)
}
