package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrMalformedMarkup    = errors.New("malformed button markup")
	ErrBroadcastRunning   = errors.New("a broadcast run is already in progress")
	ErrUnauthorized       = errors.New("unauthorized")
)
