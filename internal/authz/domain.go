package authz

import "context"

// Role is a named privilege tier. The set of roles is closed and fixed at
// build time; there is no runtime role creation.
type Role string

const (
	RoleUser           Role = "USER"
	RoleClientAnalyst  Role = "CLIENT_ANALYST"
	RoleClientOrgOwner Role = "CLIENT_ORG_OWNER"
	RoleDeveloper      Role = "DEVELOPER"
	RoleModerator      Role = "MODERATOR"
	RoleAdmin          Role = "ADMIN"
	RoleSuperAdmin     Role = "SUPER_ADMIN"
)

// AllRoles returns every role in the catalog.
func AllRoles() []Role {
	return []Role{
		RoleUser,
		RoleClientAnalyst,
		RoleClientOrgOwner,
		RoleDeveloper,
		RoleModerator,
		RoleAdmin,
		RoleSuperAdmin,
	}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleClientAnalyst, RoleClientOrgOwner, RoleDeveloper,
		RoleModerator, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// roleRank places the four platform roles on the role-floor ladder.
// CLIENT_ANALYST, CLIENT_ORG_OWNER and DEVELOPER are organization-scoped and
// do not participate: they rank below every floor.
var roleRank = map[Role]int{
	RoleUser:       0,
	RoleModerator:  1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

// Ranked reports whether r participates in the role-floor ladder.
func (r Role) Ranked() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r ranks at or above min on the role-floor ladder.
// Roles outside the ladder never satisfy a floor.
func (r Role) AtLeast(min Role) bool {
	have, ok := roleRank[r]
	if !ok {
		return false
	}
	want, ok := roleRank[min]
	if !ok {
		return false
	}
	return have >= want
}

// Permission is a single atomic capability token. Tokens follow the
// verb:object convention and never overlap in meaning.
type Permission string

const (
	// Self-service.
	PermReadOwnProfile      Permission = "read:own_profile"
	PermUpdateOwnProfile    Permission = "update:own_profile"
	PermCreateTransaction   Permission = "create:transaction"
	PermReadOwnTransactions Permission = "read:own_transactions"
	PermSendMessage         Permission = "send:message"
	PermReadOwnMessages     Permission = "read:own_messages"
	PermUploadFiles         Permission = "upload:files"

	// Organization analysts.
	PermReadOrgReports      Permission = "read:org_reports"
	PermReadOrgTransactions Permission = "read:org_transactions"
	PermRunVerifications    Permission = "run:verifications"
	PermExportReports       Permission = "export:reports"

	// Organization owners.
	PermManageOrgBilling  Permission = "manage:org_billing"
	PermManageOrgMembers  Permission = "manage:org_members"
	PermManageOrgSettings Permission = "manage:org_settings"

	// API developers.
	PermManageAPIKeys Permission = "manage:api_keys"
	PermReadAPIDocs   Permission = "read:api_docs"
	PermAccessSandbox Permission = "access:sandbox"

	// Moderation.
	PermReviewFlaggedContent Permission = "review:flagged_content"
	PermSuspendUsers         Permission = "suspend:users"
	PermReadAnyProfile       Permission = "read:any_profile"

	// Platform administration.
	PermManageUsers            Permission = "manage:users"
	PermManageRoles            Permission = "manage:roles"
	PermReadSystemMetrics      Permission = "read:system_metrics"
	PermManagePlatformSettings Permission = "manage:platform_settings"

	// Super administration.
	PermAccessAuditLogs    Permission = "access:audit_logs"
	PermManageSystemConfig Permission = "manage:system_config"
	PermImpersonateUsers   Permission = "impersonate:users"
)

// Principal describes the authenticated actor. It is produced by the
// authentication layer and only read here, never mutated.
type Principal struct {
	// ID is the opaque account identifier, also used for resource
	// ownership comparison.
	ID    string
	Email string
	// TrustScore is the platform trust score on a 0-10 scale, nil when the
	// account has not been scored yet.
	TrustScore *float64
	// AssignedRole carries an organization-scoped role granted by the
	// membership system (CLIENT_ANALYST, CLIENT_ORG_OWNER or DEVELOPER).
	// Empty for everyone else; platform roles are always derived.
	AssignedRole Role
}

// ReasonCode is the stable machine-readable code attached to a denial.
type ReasonCode string

const (
	CodeAuthenticationRequired  ReasonCode = "AUTHENTICATION_REQUIRED"
	CodeInsufficientPermissions ReasonCode = "INSUFFICIENT_PERMISSIONS"
	CodeInsufficientRole        ReasonCode = "INSUFFICIENT_ROLE"
	CodeNotResourceOwner        ReasonCode = "NOT_RESOURCE_OWNER"
)

// HTTPStatus maps a denial code to its response status. Missing
// authentication is 401; every other denial is 403.
func (c ReasonCode) HTTPStatus() int {
	if c == CodeAuthenticationRequired {
		return 401
	}
	return 403
}

// AccessDecision is the verdict produced by a gate primitive. Code and
// Required are empty on allow.
type AccessDecision struct {
	Allowed bool
	// Code is the denial reason, empty when allowed.
	Code ReasonCode
	// Role is the principal's resolved role, empty when unauthenticated.
	Role Role
	// Requirement names what was evaluated, e.g. "permission:create:transaction"
	// or "role:ADMIN".
	Requirement string
	// Required is the specific permission or role that was missing.
	Required string
}

// DecisionRecorder receives every allow and deny decision. Implementations
// must not block and must never panic into the caller; the gate fires these
// before returning the decision.
type DecisionRecorder interface {
	Record(d AccessDecision, principal *Principal, endpoint string)
}

// DecisionObserver counts decisions for monitoring. Implemented by the
// observability package.
type DecisionObserver interface {
	ObserveDecision(primitive, outcome, code string)
}

type principalContextKey struct{}

// ContextWithPrincipal stores the authenticated principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context, nil when the
// request is unauthenticated.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}
