package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an error that already knows how it should be presented over
// HTTP. RetryAfter, when set, is sent as a Retry-After header in seconds.
type Error struct {
	Status     int
	Code       string
	Err        error
	RetryAfter int
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// Mapping binds a sentinel error to its presentation.
type Mapping struct {
	Target     error
	Status     int
	Code       string
	RetryAfter int
}

// Classify returns the first mapping whose target matches err. Errors that
// already are *Error pass through. Anything else becomes a 500.
func Classify(err error, mappings ...Mapping) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	for _, m := range mappings {
		if errors.Is(err, m.Target) {
			return &Error{Status: m.Status, Code: m.Code, Err: err, RetryAfter: m.RetryAfter}
		}
	}
	return &Error{Status: http.StatusInternalServerError, Code: "internal_error", Err: err}
}
