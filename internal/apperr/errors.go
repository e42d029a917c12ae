// Package apperr holds the sentinel errors shared by the service and its transports.
package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrSessionNotFound = errors.New("session not found")
	ErrSpanMismatch    = errors.New("span no longer matches trigger")
	ErrNoCandidate     = errors.New("no such candidate")
)
