package audit

import "time"

// Outcome of an authorization decision.
const (
	OutcomeAllow = "allow"
	OutcomeDeny  = "deny"
)

// RoleUnauthenticated is recorded when no principal was attached to the
// request.
const RoleUnauthenticated = "unauthenticated"

// Entry is the audit record for a single authorization decision. The schema
// is the contract with whatever sink stores it; the engine does not dictate
// storage.
type Entry struct {
	At          time.Time `json:"at"`
	Role        string    `json:"role"`
	PrincipalID string    `json:"principal_id,omitempty"`
	Endpoint    string    `json:"endpoint"`
	Requirement string    `json:"requirement"`
	Outcome     string    `json:"outcome"`
	Code        string    `json:"code,omitempty"`
	Required    string    `json:"required,omitempty"`
}
