package service

import "fmt"

// InvalidRequestError reports a classification request the caller can fix,
// such as a body that does not decode into the expected shape.
type InvalidRequestError struct {
	Err error
}

func (e InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid classification request: %s", e.Err)
}

func (e InvalidRequestError) Unwrap() error { return e.Err }

// LookupError reports a failed read against the code mapping store. The
// classifier performs no internal retry; callers may retry with backoff.
type LookupError struct {
	ClientID string
	Err      error
}

func (e LookupError) Error() string {
	return fmt.Sprintf("failed to get code mappings for client %s: %s", e.ClientID, e.Err)
}

func (e LookupError) Unwrap() error { return e.Err }
