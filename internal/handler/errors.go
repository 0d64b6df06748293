package handler

import "errors"

var (
	// ErrUnauthorized indicates a missing or wrong bearer token
	ErrUnauthorized = errors.New("unauthorized")

	// ErrViewIDNotSet indicates the upstream view is not configured
	ErrViewIDNotSet = errors.New("GA_VIEW_ID not set")
)

// Client-facing error messages. Anything not listed here is reported as
// msgInternal so upstream details never reach the caller.
const (
	msgUnauthorized = "Unauthorized"
	msgViewIDNotSet = "GA_VIEW_ID not set"
	msgInternal     = "Something went wrong"
)

// ErrorResponse is the JSON body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}
