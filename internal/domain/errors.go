package domain

import "errors"

var (
	// ErrValidation signals a malformed filter value. Never reaches the backend.
	ErrValidation = errors.New("invalid filter value")
	// ErrUnknownFilter signals a filter name missing from the schema.
	ErrUnknownFilter = errors.New("unknown filter")
	// ErrGeocodeFailure signals an address that could not be resolved to
	// valid coordinates.
	ErrGeocodeFailure = errors.New("geocode failure")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
)
