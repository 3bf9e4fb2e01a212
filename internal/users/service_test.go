package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustverify/trustverify/internal/authz"
	"github.com/trustverify/trustverify/internal/shared"
)

type memoryStore struct {
	users map[int64]User
}

func newMemoryStore(seed ...User) *memoryStore {
	store := &memoryStore{users: make(map[int64]User)}
	for _, u := range seed {
		store.users[u.ID] = u
	}
	return store
}

func (s *memoryStore) ListUsers(ctx context.Context) ([]User, error) {
	list := make([]User, 0, len(s.users))
	for _, u := range s.users {
		list = append(list, u)
	}
	return list, nil
}

func (s *memoryStore) GetUser(ctx context.Context, id int64) (User, error) {
	u, ok := s.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (s *memoryStore) SetAssignedRole(ctx context.Context, id int64, role *string) error {
	u, ok := s.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	if role == nil {
		u.AssignedRole = ""
	} else {
		u.AssignedRole = *role
	}
	s.users[id] = u
	return nil
}

func (s *memoryStore) SetTrustScore(ctx context.Context, id int64, score *float64) error {
	u, ok := s.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.TrustScore = score
	s.users[id] = u
	return nil
}

func (s *memoryStore) SetActive(ctx context.Context, id int64, active bool) error {
	u, ok := s.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.IsActive = active
	s.users[id] = u
	return nil
}

func TestAssignRoleAcceptsOrgRolesOnly(t *testing.T) {
	store := newMemoryStore(User{ID: 1, Email: "member@example.com", IsActive: true})
	service := NewService(store)
	ctx := context.Background()

	for _, role := range []authz.Role{authz.RoleClientAnalyst, authz.RoleClientOrgOwner, authz.RoleDeveloper} {
		require.NoError(t, service.AssignRole(ctx, 1, role))
		got, err := service.GetUser(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, string(role), got.AssignedRole)
	}
}

func TestAssignRoleRejectsPlatformRoles(t *testing.T) {
	store := newMemoryStore(User{ID: 1, Email: "member@example.com", IsActive: true})
	service := NewService(store)
	ctx := context.Background()

	for _, role := range []authz.Role{authz.RoleUser, authz.RoleModerator, authz.RoleAdmin, authz.RoleSuperAdmin, authz.Role("GHOST")} {
		err := service.AssignRole(ctx, 1, role)
		require.ErrorIs(t, err, shared.ErrInvalidRole, "role %s", role)
	}
	got, err := service.GetUser(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, got.AssignedRole)
}

func TestClearRole(t *testing.T) {
	store := newMemoryStore(User{ID: 1, AssignedRole: "CLIENT_ANALYST", IsActive: true})
	service := NewService(store)

	require.NoError(t, service.ClearRole(context.Background(), 1))
	got, err := service.GetUser(context.Background(), 1)
	require.NoError(t, err)
	require.Empty(t, got.AssignedRole)
}

func TestSetTrustScoreValidatesScale(t *testing.T) {
	store := newMemoryStore(User{ID: 1, IsActive: true})
	service := NewService(store)
	ctx := context.Background()

	require.NoError(t, service.SetTrustScore(ctx, 1, 9.5))
	got, err := service.GetUser(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got.TrustScore)
	require.Equal(t, 9.5, *got.TrustScore)

	require.ErrorIs(t, service.SetTrustScore(ctx, 1, -0.1), shared.ErrInvalidTrustScore)
	require.ErrorIs(t, service.SetTrustScore(ctx, 1, 10.1), shared.ErrInvalidTrustScore)
}

func TestServiceErrorsOnUnknownUser(t *testing.T) {
	service := NewService(newMemoryStore())
	ctx := context.Background()

	_, err := service.GetUser(ctx, 99)
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.ErrorIs(t, service.AssignRole(ctx, 99, authz.RoleDeveloper), shared.ErrNotFound)
	require.ErrorIs(t, service.SetActive(ctx, 99, false), shared.ErrNotFound)
}
