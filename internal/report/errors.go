package report

import "errors"

// ErrUnknownKind indicates a report kind other than ad or origin
var ErrUnknownKind = errors.New("unknown report kind")
