package auth

import (
	"context"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/trustverify/trustverify/internal/authz"
	"github.com/trustverify/trustverify/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// LookupPrincipal resolves a session user id to the authorization principal.
func (s *Service) LookupPrincipal(ctx context.Context, userID int64) (*authz.Principal, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, shared.ErrNotFound
	}
	p := PrincipalFor(user)
	return &p, nil
}

// PrincipalFor maps a user account onto the engine's principal shape.
func PrincipalFor(user *User) authz.Principal {
	return authz.Principal{
		ID:           strconv.FormatInt(user.ID, 10),
		Email:        user.Email,
		TrustScore:   user.TrustScore,
		AssignedRole: authz.Role(user.AssignedRole),
	}
}
