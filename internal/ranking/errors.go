package ranking

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyGallery is returned when ranking is invoked without candidates.
	ErrEmptyGallery = errors.New("gallery is empty")
	// ErrQueryMissing is returned when the query buffer is absent or empty.
	ErrQueryMissing = errors.New("query image is missing")
)

// CandidateError identifies the candidate that stopped a ranking pass, so the
// caller can drop it and retry with a reduced gallery.
type CandidateError struct {
	ID  string
	Err error
}

func (e *CandidateError) Error() string {
	return fmt.Sprintf("candidate %s: %v", e.ID, e.Err)
}

func (e *CandidateError) Unwrap() error { return e.Err }
