package users

import "context"

// Store defines persistence operations for the users module.
type Store interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	SetAssignedRole(ctx context.Context, id int64, role *string) error
	SetTrustScore(ctx context.Context, id int64, score *float64) error
	SetActive(ctx context.Context, id int64, active bool) error
}
