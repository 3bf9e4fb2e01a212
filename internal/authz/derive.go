package authz

import "strings"

// DerivationConfig parameterizes the role derivation chain. Values come from
// environment configuration and are fixed for the process lifetime.
type DerivationConfig struct {
	// SuperAdminEmail is the single address elevated to SUPER_ADMIN.
	SuperAdminEmail string
	// OperatorDomain elevates any address under it to ADMIN.
	OperatorDomain string
	// ModeratorTrustFloor is the minimum trust score for MODERATOR.
	ModeratorTrustFloor float64
}

// DeriveRole maps a principal's attributes to a platform role. The rules are
// evaluated in order and the first match wins; reordering them changes who
// gets elevated privileges, so the sequence is part of the contract:
//
//  1. super-administrator email        -> SUPER_ADMIN
//  2. operator email domain            -> ADMIN
//  3. trust score at or above floor    -> MODERATOR
//  4. everyone else                    -> USER
//
// The function is pure: identical inputs always yield the identical role.
func (c DerivationConfig) DeriveRole(p Principal) Role {
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if c.SuperAdminEmail != "" && email == strings.ToLower(c.SuperAdminEmail) {
		return RoleSuperAdmin
	}
	if c.OperatorDomain != "" && emailDomain(email) == strings.ToLower(c.OperatorDomain) {
		return RoleAdmin
	}
	if p.TrustScore != nil && *p.TrustScore >= c.ModeratorTrustFloor {
		return RoleModerator
	}
	return RoleUser
}

// Resolve returns the principal's effective role. Organization-scoped roles
// are granted by the membership system, not derivable from email or trust
// score, so a pre-assigned CLIENT_ANALYST, CLIENT_ORG_OWNER or DEVELOPER is
// honored as-is; any other principal goes through the derivation chain.
func (c DerivationConfig) Resolve(p Principal) Role {
	switch p.AssignedRole {
	case RoleClientAnalyst, RoleClientOrgOwner, RoleDeveloper:
		return p.AssignedRole
	}
	return c.DeriveRole(p)
}

func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return email[at+1:]
}
