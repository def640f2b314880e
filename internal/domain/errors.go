package domain

import "errors"

var (
	ErrInvalidBound      = errors.New("invalid bound")
	ErrNotConfigured     = errors.New("backend not configured")
	ErrServiceFailure    = errors.New("service failure")
	ErrTransportFailure  = errors.New("transport failure")
	ErrRequestInProgress = errors.New("request in progress")
)
