package authz

import (
	"fmt"
	"sort"
)

// basePermissions declares each role's own permission set. Effective sets
// are composed from these by NewResolver; nothing here is inherited
// implicitly.
var basePermissions = map[Role][]Permission{
	RoleUser: {
		PermReadOwnProfile,
		PermUpdateOwnProfile,
		PermCreateTransaction,
		PermReadOwnTransactions,
		PermSendMessage,
		PermReadOwnMessages,
		PermUploadFiles,
	},
	RoleClientAnalyst: {
		PermReadOrgReports,
		PermReadOrgTransactions,
		PermRunVerifications,
		PermExportReports,
	},
	RoleClientOrgOwner: {
		PermManageOrgBilling,
		PermManageOrgMembers,
		PermManageOrgSettings,
	},
	RoleDeveloper: {
		PermManageAPIKeys,
		PermReadAPIDocs,
		PermAccessSandbox,
	},
	RoleModerator: {
		PermReviewFlaggedContent,
		PermSuspendUsers,
		PermReadAnyProfile,
	},
	RoleAdmin: {
		PermManageUsers,
		PermManageRoles,
		PermReadSystemMetrics,
		PermManagePlatformSettings,
	},
	RoleSuperAdmin: {
		PermAccessAuditLogs,
		PermManageSystemConfig,
		PermImpersonateUsers,
	},
}

// composes declares which other roles' base sets each role absorbs. This is
// explicit union, not structural inheritance: changing one entry never
// silently changes another role's grant.
var composes = map[Role][]Role{
	RoleUser:           nil,
	RoleClientAnalyst:  nil,
	RoleClientOrgOwner: {RoleClientAnalyst},
	RoleDeveloper:      nil,
	RoleModerator:      {RoleUser},
	RoleAdmin:          {RoleUser, RoleModerator},
	RoleSuperAdmin:     {RoleUser, RoleModerator, RoleAdmin},
}

// Resolver holds the effective permission set for every role. It is built
// once at startup and read-only afterwards, so concurrent lookups need no
// synchronization.
type Resolver struct {
	effective map[Role]map[Permission]struct{}
}

// NewResolver composes the effective permission table. It returns an error
// when any role in the catalog is missing a base set or a composition entry,
// so misconfiguration surfaces at startup instead of as a runtime denial.
func NewResolver() (*Resolver, error) {
	effective := make(map[Role]map[Permission]struct{}, len(basePermissions))
	for _, role := range AllRoles() {
		base, ok := basePermissions[role]
		if !ok {
			return nil, fmt.Errorf("authz: role %s has no base permission set", role)
		}
		parents, ok := composes[role]
		if !ok {
			return nil, fmt.Errorf("authz: role %s has no composition entry", role)
		}
		set := make(map[Permission]struct{}, len(base))
		for _, p := range base {
			set[p] = struct{}{}
		}
		for _, parent := range parents {
			parentBase, ok := basePermissions[parent]
			if !ok {
				return nil, fmt.Errorf("authz: role %s composes unknown role %s", role, parent)
			}
			for _, p := range parentBase {
				set[p] = struct{}{}
			}
		}
		effective[role] = set
	}
	return &Resolver{effective: effective}, nil
}

// MustResolver is NewResolver for wiring paths where a catalog error is
// unrecoverable.
func MustResolver() *Resolver {
	r, err := NewResolver()
	if err != nil {
		panic(err)
	}
	return r
}

// Has reports whether the role's effective set contains p.
func (r *Resolver) Has(role Role, p Permission) bool {
	set, ok := r.effective[role]
	if !ok {
		return false
	}
	_, ok = set[p]
	return ok
}

// HasAny reports whether the role holds at least one of perms.
func (r *Resolver) HasAny(role Role, perms []Permission) bool {
	for _, p := range perms {
		if r.Has(role, p) {
			return true
		}
	}
	return false
}

// HasAll reports whether the role holds every permission in perms.
func (r *Resolver) HasAll(role Role, perms []Permission) bool {
	for _, p := range perms {
		if !r.Has(role, p) {
			return false
		}
	}
	return true
}

// Effective returns the role's composed permission set, sorted for stable
// output. The returned slice is a copy.
func (r *Resolver) Effective(role Role) []Permission {
	set, ok := r.effective[role]
	if !ok {
		return nil
	}
	perms := make([]Permission, 0, len(set))
	for p := range set {
		perms = append(perms, p)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return perms
}
