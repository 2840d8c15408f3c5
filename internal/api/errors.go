// Package api provides the wire client for the pipeline server and the error
// types its callers branch on.
package api

import (
	"context"
	"errors"

	"github.com/foldlab/foldpipe/internal/models"
)

// Error is a classified failure of one server call.
//
// Kind decides how callers present it: transport errors are shown verbatim,
// server errors carry the HTTP status and (possibly truncated) body, timeout
// errors get a fixed friendly message.
type Error struct {
	Kind    models.ErrorKind
	Status  int    // HTTP status for KindServer, zero otherwise
	Message string // body text, server-provided error, or transport error text
	Detail  string // optional server-provided details
	Err     error  // underlying cause, if any
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the classification of err, or zero when err is not an *Error.
func KindOf(err error) models.ErrorKind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// transportError classifies a failed round trip. A deadline on the request
// context is reported as a timeout rather than a network failure.
func transportError(ctx context.Context, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: models.KindTimeout, Message: "request timed out", Err: err}
	}
	return &Error{Kind: models.KindTransport, Message: err.Error(), Err: err}
}
