package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a scrape failure. The orchestrator dispatches on
// the kind: connection errors rotate to the next proxy, everything else
// ends the run.
type ErrorKind string

const (
	KindConnection        ErrorKind = "ConnectionError"
	KindTargetSelection   ErrorKind = "TargetSelectionError"
	KindContainerNotFound ErrorKind = "ContainerNotFoundError"
	KindDataExtraction    ErrorKind = "DataExtractionError"
	KindFatal             ErrorKind = "FatalError"
)

// ScrapeError carries a failure kind through the error chain.
type ScrapeError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ScrapeError) Unwrap() error { return e.Err }

// NewError creates a ScrapeError with a formatted message.
func NewError(kind ErrorKind, format string, args ...any) *ScrapeError {
	return &ScrapeError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// WrapError wraps an underlying error under the given kind. If the cause
// already carries a kind it is preserved in the chain but the outer kind
// wins for classification.
func WrapError(kind ErrorKind, msg string, err error) *ScrapeError {
	return &ScrapeError{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of the outermost ScrapeError in the chain, or
// KindFatal for errors that carry no kind. Returns "" for nil.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindFatal
}

// IsKind reports whether err classifies as the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
