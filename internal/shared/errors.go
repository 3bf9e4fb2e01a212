package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidRole occurs when a role assignment names a role the
	// membership system may not grant.
	ErrInvalidRole = errors.New("role not assignable")
	// ErrInvalidTrustScore occurs when a trust score is outside the 0-10 scale.
	ErrInvalidTrustScore = errors.New("trust score out of range")
)
