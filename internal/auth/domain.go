package auth

import "time"

// User represents an authenticated user account.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	// TrustScore is the platform trust score (0-10), nil when unscored.
	TrustScore *float64
	// AssignedRole holds an organization-scoped role granted by the
	// membership system; empty otherwise.
	AssignedRole string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
