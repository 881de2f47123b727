package search

import (
	"fmt"
)

// TransportError reports a failed round trip to the search service: the
// request never completed, came back with a non-success status, or the body
// could not be read as the expected envelope.
type TransportError struct {
	Status int   // HTTP status code, 0 when the request never completed
	Err    error // underlying cause, may be nil
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("search request failed with status %d", e.Status)
	}
	return fmt.Sprintf("search request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProviderError reports a well-formed error payload the search service
// returned in place of results.
type ProviderError struct {
	Message string // what the service said, e.g. "Commons API error"
	Detail  string // optional second line from the payload
	Status  int    // upstream status the service relayed, 0 when absent
}

func (e *ProviderError) Error() string {
	switch {
	case e.Detail != "":
		return fmt.Sprintf("search provider error: %s: %s", e.Message, e.Detail)
	case e.Status != 0:
		return fmt.Sprintf("search provider error: %s (status %d)", e.Message, e.Status)
	default:
		return fmt.Sprintf("search provider error: %s", e.Message)
	}
}
