package domain

import "errors"

var (
	// ErrMissingCredentials is returned when the generative AI API key is not configured
	ErrMissingCredentials = errors.New("AI API key is not configured")

	// ErrStreamFailed is returned when the AI response stream fails mid-flight
	ErrStreamFailed = errors.New("failed to fetch results from the AI model")

	// ErrInvalidRouteFormat is returned when the AI route response is not valid JSON
	ErrInvalidRouteFormat = errors.New("the AI returned an invalid route format")

	// ErrNotEnoughStores is returned when route generation is requested with fewer than two stores
	ErrNotEnoughStores = errors.New("route generation requires at least two stores")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrNotFound is returned when a saved record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrSearchSuperseded is returned when a stream is abandoned because a newer search started
	ErrSearchSuperseded = errors.New("search superseded by a newer search")
)
