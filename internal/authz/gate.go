package authz

import "strings"

// Gate is the request-time authorization decision point. Every primitive is
// a pure in-memory computation over the frozen permission table: no I/O, no
// locks, no blocking. Decisions are handed to the recorder before they are
// returned, but the recorder contract keeps that path non-blocking too.
type Gate struct {
	resolver   *Resolver
	derivation DerivationConfig
	recorder   DecisionRecorder
	observer   DecisionObserver
}

// GateConfig groups Gate dependencies. Recorder and Observer are optional.
type GateConfig struct {
	Resolver   *Resolver
	Derivation DerivationConfig
	Recorder   DecisionRecorder
	Observer   DecisionObserver
}

// NewGate constructs a Gate.
func NewGate(cfg GateConfig) *Gate {
	return &Gate{
		resolver:   cfg.Resolver,
		derivation: cfg.Derivation,
		recorder:   cfg.Recorder,
		observer:   cfg.Observer,
	}
}

// Resolver exposes the gate's permission table, mainly for introspection
// endpoints.
func (g *Gate) Resolver() *Resolver {
	return g.resolver
}

// ResolveRole returns the principal's effective role per the derivation
// chain and external assignments.
func (g *Gate) ResolveRole(p Principal) Role {
	return g.derivation.Resolve(p)
}

// RequirePermission allows when the principal's role holds perm.
func (g *Gate) RequirePermission(p *Principal, perm Permission, endpoint string) AccessDecision {
	requirement := "permission:" + string(perm)
	if p == nil {
		return g.deny(nil, "", CodeAuthenticationRequired, requirement, string(perm), endpoint)
	}
	role := g.derivation.Resolve(*p)
	if !g.resolver.Has(role, perm) {
		return g.deny(p, role, CodeInsufficientPermissions, requirement, string(perm), endpoint)
	}
	return g.allow(p, role, requirement, endpoint)
}

// RequireAnyPermission allows when the principal's role holds at least one
// of perms.
func (g *Gate) RequireAnyPermission(p *Principal, perms []Permission, endpoint string) AccessDecision {
	requirement := "any-permission:" + joinPermissions(perms)
	if p == nil {
		return g.deny(nil, "", CodeAuthenticationRequired, requirement, joinPermissions(perms), endpoint)
	}
	role := g.derivation.Resolve(*p)
	if !g.resolver.HasAny(role, perms) {
		return g.deny(p, role, CodeInsufficientPermissions, requirement, joinPermissions(perms), endpoint)
	}
	return g.allow(p, role, requirement, endpoint)
}

// RequireAllPermissions allows only when the principal's role holds every
// permission in perms.
func (g *Gate) RequireAllPermissions(p *Principal, perms []Permission, endpoint string) AccessDecision {
	requirement := "all-permissions:" + joinPermissions(perms)
	if p == nil {
		return g.deny(nil, "", CodeAuthenticationRequired, requirement, joinPermissions(perms), endpoint)
	}
	role := g.derivation.Resolve(*p)
	for _, perm := range perms {
		if !g.resolver.Has(role, perm) {
			return g.deny(p, role, CodeInsufficientPermissions, requirement, string(perm), endpoint)
		}
	}
	return g.allow(p, role, requirement, endpoint)
}

// RequireRole allows when the principal's role ranks at or above min on the
// fixed ladder USER < MODERATOR < ADMIN < SUPER_ADMIN. Callers must pass a
// ladder role as min; the HTTP middleware validates that at construction.
// Roles outside the ladder never satisfy a floor.
func (g *Gate) RequireRole(p *Principal, min Role, endpoint string) AccessDecision {
	requirement := "role:" + string(min)
	if p == nil {
		return g.deny(nil, "", CodeAuthenticationRequired, requirement, string(min), endpoint)
	}
	role := g.derivation.Resolve(*p)
	if !role.AtLeast(min) {
		return g.deny(p, role, CodeInsufficientRole, requirement, string(min), endpoint)
	}
	return g.allow(p, role, requirement, endpoint)
}

// RequireResourceOwner allows when the ownership evaluator admits the
// principal to the resource instance. Elevated roles bypass the ownership
// comparison per the evaluator rules.
func (g *Gate) RequireResourceOwner(p *Principal, resourceID, resourceType, endpoint string) AccessDecision {
	requirement := "owner:" + resourceType
	if p == nil {
		return g.deny(nil, "", CodeAuthenticationRequired, requirement, resourceType, endpoint)
	}
	role := g.derivation.Resolve(*p)
	if !g.CanAccessResource(*p, resourceID, resourceType) {
		return g.deny(p, role, CodeNotResourceOwner, requirement, resourceType, endpoint)
	}
	return g.allow(p, role, requirement, endpoint)
}

func (g *Gate) allow(p *Principal, role Role, requirement, endpoint string) AccessDecision {
	d := AccessDecision{Allowed: true, Role: role, Requirement: requirement}
	g.emit(d, p, endpoint)
	return d
}

func (g *Gate) deny(p *Principal, role Role, code ReasonCode, requirement, required, endpoint string) AccessDecision {
	d := AccessDecision{
		Code:        code,
		Role:        role,
		Requirement: requirement,
		Required:    required,
	}
	g.emit(d, p, endpoint)
	return d
}

func (g *Gate) emit(d AccessDecision, p *Principal, endpoint string) {
	if g.recorder != nil {
		g.recorder.Record(d, p, endpoint)
	}
	if g.observer != nil {
		outcome := "deny"
		if d.Allowed {
			outcome = "allow"
		}
		g.observer.ObserveDecision(primitiveName(d.Requirement), outcome, string(d.Code))
	}
}

func primitiveName(requirement string) string {
	if i := strings.IndexByte(requirement, ':'); i > 0 {
		return requirement[:i]
	}
	return requirement
}

func joinPermissions(perms []Permission) string {
	parts := make([]string, len(perms))
	for i, p := range perms {
		parts[i] = string(p)
	}
	return strings.Join(parts, ",")
}
