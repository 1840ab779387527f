package response

import (
	"errors"
)

type Error struct {
	Code   int
	Reason string
	Err    error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Is(target error) bool {
	var t *Error
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Err.Error() == t.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Body is the JSON payload written for an error response.
func (e *Error) Body() map[string]string {
	body := map[string]string{"error": e.Err.Error()}
	if e.Reason != "" {
		body["code"] = e.Reason
	}
	return body
}

func NewError(code int, err string) error {
	return &Error{Code: code, Err: errors.New(err)}
}

// NewCodedError also carries a machine-readable reason.
func NewCodedError(code int, reason, err string) error {
	return &Error{Code: code, Reason: reason, Err: errors.New(err)}
}
