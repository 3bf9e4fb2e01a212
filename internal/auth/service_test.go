package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustverify/trustverify/internal/auth"
	"github.com/trustverify/trustverify/internal/authz"
	"github.com/trustverify/trustverify/internal/shared"
)

func TestLookupPrincipalMapsAccountFields(t *testing.T) {
	trust := 6.5
	repo := &stubRepo{users: map[string]*auth.User{
		"analyst@acme.example": {
			ID:           42,
			Email:        "analyst@acme.example",
			TrustScore:   &trust,
			AssignedRole: "CLIENT_ANALYST",
			IsActive:     true,
		},
	}}
	service := auth.NewService(repo)

	principal, err := service.LookupPrincipal(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, "42", principal.ID)
	require.Equal(t, "analyst@acme.example", principal.Email)
	require.Equal(t, authz.RoleClientAnalyst, principal.AssignedRole)
	require.NotNil(t, principal.TrustScore)
	require.Equal(t, 6.5, *principal.TrustScore)
}

func TestLookupPrincipalHidesInactiveAccounts(t *testing.T) {
	repo := &stubRepo{users: map[string]*auth.User{
		"frozen@example.com": {ID: 5, Email: "frozen@example.com", IsActive: false},
	}}
	service := auth.NewService(repo)

	_, err := service.LookupPrincipal(context.Background(), 5)
	require.ErrorIs(t, err, shared.ErrNotFound)

	_, err = service.LookupPrincipal(context.Background(), 999)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPrincipalForLeavesUnsetFieldsZero(t *testing.T) {
	p := auth.PrincipalFor(&auth.User{ID: 1, Email: "member@example.com"})
	require.Equal(t, "1", p.ID)
	require.Nil(t, p.TrustScore)
	require.Empty(t, p.AssignedRole)
}
