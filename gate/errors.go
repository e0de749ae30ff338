package gate

import "errors"

// Sentinel errors returned by Authorize.
var (
	// ErrUnauthorized means there is no usable session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the session's profile lacks the permission.
	ErrForbidden = errors.New("forbidden")
)
