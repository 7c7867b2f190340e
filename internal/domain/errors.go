package domain

import "errors"

var (
	ErrNotFound            = errors.New("player not found")
	ErrInvalidTarget       = errors.New("target does not look like a player")
	ErrUpstreamUnavailable = errors.New("replay service unavailable")
	ErrMalformedRecord     = errors.New("malformed replay record")
)

// IsNotFound reports whether err should be shown to the user as "not found".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidTarget)
}
