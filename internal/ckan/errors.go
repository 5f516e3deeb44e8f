package ckan

import (
	"errors"
	"fmt"
)

// ErrAttributeNotFound is wrapped by the APIError returned when a dataset has
// no value for the requested attribute.
var ErrAttributeNotFound = errors.New("attribute not found")

// APIError is returned whenever a CKAN action does not complete: the
// envelope reports success=false, the body cannot be decoded, or the request
// never got a response. Message is the API-supplied error message when there
// is one.
type APIError struct {
	Operation  string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Operation, e.Err)
	}
	return e.Operation + ": Undefined error."
}

func (e *APIError) Unwrap() error {
	return e.Err
}
