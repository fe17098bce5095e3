package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrEmptyResponse       = errors.New("empty model response")
	ErrMalformedOutput     = errors.New("malformed model output")
	ErrPersistence         = errors.New("persistence failure")
	ErrConnectionNotFound  = errors.New("connection not found")
)
