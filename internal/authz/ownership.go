package authz

// Resource types a non-elevated principal may access when it owns the
// instance. Everything outside this allowlist is denied for them.
const (
	ResourceProfile     = "profile"
	ResourceTransaction = "transaction"
	ResourceMessage     = "message"
)

var ownerScopedTypes = map[string]struct{}{
	ResourceProfile:     {},
	ResourceTransaction: {},
	ResourceMessage:     {},
}

// Resource types withheld even from ADMIN; only SUPER_ADMIN reaches these.
var adminDeniedTypes = map[string]struct{}{
	"system_config": {},
	"audit_logs":    {},
}

// CanAccessResource decides whether the principal may touch the given
// resource instance.
//
// SUPER_ADMIN is never restricted. ADMIN reaches every type except the fixed
// denylist. Everyone else is limited to owner-scoped types and must be the
// owner: the resource id has to equal the principal id exactly, byte for
// byte. Any other combination is denied.
func (g *Gate) CanAccessResource(p Principal, resourceID, resourceType string) bool {
	switch g.derivation.Resolve(p) {
	case RoleSuperAdmin:
		return true
	case RoleAdmin:
		_, denied := adminDeniedTypes[resourceType]
		return !denied
	}
	if _, ok := ownerScopedTypes[resourceType]; !ok {
		return false
	}
	return resourceID == p.ID
}
