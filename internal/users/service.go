package users

import (
	"context"
	"fmt"

	"github.com/trustverify/trustverify/internal/authz"
	"github.com/trustverify/trustverify/internal/shared"
)

// Roles the membership system may grant. Platform roles (USER, MODERATOR,
// ADMIN, SUPER_ADMIN) are always derived and never stored.
var assignableRoles = map[authz.Role]struct{}{
	authz.RoleClientAnalyst:  {},
	authz.RoleClientOrgOwner: {},
	authz.RoleDeveloper:      {},
}

// Service orchestrates user administration.
type Service struct {
	store Store
}

// NewService constructs a Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.store.ListUsers(ctx)
}

// GetUser fetches one user.
func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	return s.store.GetUser(ctx, id)
}

// AssignRole grants an organization-scoped role to the user.
func (s *Service) AssignRole(ctx context.Context, id int64, role authz.Role) error {
	if _, ok := assignableRoles[role]; !ok {
		return fmt.Errorf("%w: %s", shared.ErrInvalidRole, role)
	}
	name := string(role)
	return s.store.SetAssignedRole(ctx, id, &name)
}

// ClearRole removes any organization-scoped role from the user.
func (s *Service) ClearRole(ctx context.Context, id int64) error {
	return s.store.SetAssignedRole(ctx, id, nil)
}

// SetTrustScore stores the user's trust score on the 0-10 scale.
func (s *Service) SetTrustScore(ctx context.Context, id int64, score float64) error {
	if score < 0 || score > 10 {
		return fmt.Errorf("%w: %.2f", shared.ErrInvalidTrustScore, score)
	}
	return s.store.SetTrustScore(ctx, id, &score)
}

// SetActive enables or suspends the account.
func (s *Service) SetActive(ctx context.Context, id int64, active bool) error {
	return s.store.SetActive(ctx, id, active)
}
