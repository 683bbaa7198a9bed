package solr

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict is returned when the server rejects a write because of a
	// stale _version_ value.
	ErrConflict = errors.New("solr: version conflict")
	// ErrBadRequest is returned for requests the server refuses to process.
	ErrBadRequest = errors.New("solr: bad request")
)

// StatusError is an unexpected response status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("solr: unexpected status %d: %s", e.Code, e.Body)
}

// Temporary reports whether the server may accept the request later.
func (e *StatusError) Temporary() bool {
	return e.Code >= 500 || e.Code == 429
}
