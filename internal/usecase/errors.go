package usecase

import (
	"errors"
	"fmt"
)

// Error kinds callers branch on. Adapters and services wrap these with
// context via fmt.Errorf("%w: ..."); nothing ever matches on message text.
var (
	// ErrSourceUnavailable: transient transport failure that survived the
	// retry budget (DNS, TLS, connection reset, 429/5xx).
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrNotFound: the resource does not exist for this league/season.
	// Expected and benign; units report empty, not failed.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidContent: the response arrived but is not the expected
	// payload, e.g. an HTML error page behind HTTP 200.
	ErrInvalidContent = errors.New("invalid content")
	// ErrAccessDenied: the provider rejected our credentials or plan.
	// Triggers the router's fallback chain.
	ErrAccessDenied = errors.New("access denied")

	ErrInvalidInput          = errors.New("invalid input")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// RowReason classifies why one upstream row was rejected.
type RowReason string

const (
	ReasonInvalidDate      RowReason = "invalid_date"
	ReasonMissingField     RowReason = "missing_critical_field"
	ReasonUnparsableNumber RowReason = "unparsable_number"
)

// RowError is a row-level normalization rejection. The row is skipped and
// counted; it never aborts the unit.
type RowError struct {
	Reason RowReason
	Field  string
	Detail string
}

func (e *RowError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("row rejected: %s (%s)", e.Reason, e.Field)
	}
	return fmt.Sprintf("row rejected: %s (%s): %s", e.Reason, e.Field, e.Detail)
}

func rowErrorf(reason RowReason, field, format string, args ...any) *RowError {
	return &RowError{Reason: reason, Field: field, Detail: fmt.Sprintf(format, args...)}
}

// AsRowError unwraps err into a RowError when it is one.
func AsRowError(err error) (*RowError, bool) {
	var rowErr *RowError
	if errors.As(err, &rowErr) {
		return rowErr, true
	}
	return nil, false
}
