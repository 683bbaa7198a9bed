package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/esgf/solrsync/solr"
)

var (
	// ErrProbeUnavailable is returned when a signature or a page can not be
	// read from an index. It aborts the session.
	ErrProbeUnavailable = errors.New("probe unavailable")
	// ErrWriteConflict marks a write rejected because of a stale revision marker.
	ErrWriteConflict = errors.New("write conflict")
	// ErrRecordSkipped marks a record that failed both the batch and the
	// single record write. It is only counted, never returned by a session.
	ErrRecordSkipped = errors.New("record skipped")
	// ErrCommitFailure is returned when a commit or optimize fails.
	ErrCommitFailure = errors.New("commit failure")
)

// ErrorKind tells whether a failed write may be attempted again record by record.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindRetryable
	KindFatal
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindRetryable:
		return "retryable"
	case KindFatal:
		return "fatal"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Classify maps an error to its kind. Cancellation, probe and commit failures
// are fatal, every other write failure is retryable.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindFatal
	case errors.Is(err, ErrProbeUnavailable), errors.Is(err, ErrCommitFailure):
		return KindFatal
	}
	return KindRetryable
}

// writeError annotates index write errors with the taxonomy.
func writeError(err error) error {
	if errors.Is(err, solr.ErrConflict) && !errors.Is(err, ErrWriteConflict) {
		return fmt.Errorf("%w: %w", ErrWriteConflict, err)
	}
	return err
}

// Outcome is the result of writing one batch.
type Outcome struct {
	Written int
	Skipped int
	// Fallback is set when the batch write failed and records were written one by one.
	Fallback bool
}
