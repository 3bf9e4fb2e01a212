package authz

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trustverify/trustverify/internal/platform/httpx"
)

// Middleware wires gate primitives into HTTP handlers. Allowed requests
// continue down the chain with no body written; denials stop with the stable
// denial body (401 for missing authentication, 403 otherwise).
type Middleware struct {
	Gate   *Gate
	Logger *slog.Logger
}

// RequirePermission guards a route with a single permission.
func (m Middleware) RequirePermission(perm Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := m.Gate.RequirePermission(PrincipalFromContext(r.Context()), perm, endpoint(r))
			m.respond(w, r, next, d)
		})
	}
}

// RequireAny guards a route with a set of alternatives; holding any one of
// perms is enough.
func (m Middleware) RequireAny(perms ...Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := m.Gate.RequireAnyPermission(PrincipalFromContext(r.Context()), perms, endpoint(r))
			m.respond(w, r, next, d)
		})
	}
}

// RequireAll guards a route that needs every one of perms.
func (m Middleware) RequireAll(perms ...Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := m.Gate.RequireAllPermissions(PrincipalFromContext(r.Context()), perms, endpoint(r))
			m.respond(w, r, next, d)
		})
	}
}

// RequireRole guards a route with a role floor. min must be a ladder role
// (USER, MODERATOR, ADMIN, SUPER_ADMIN); passing an organization-scoped role
// is a wiring bug and panics at router construction rather than producing a
// misleading runtime denial.
func (m Middleware) RequireRole(min Role) func(http.Handler) http.Handler {
	if !min.Ranked() {
		panic(fmt.Sprintf("authz: role %s is not on the role-floor ladder", min))
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := m.Gate.RequireRole(PrincipalFromContext(r.Context()), min, endpoint(r))
			m.respond(w, r, next, d)
		})
	}
}

// RequireOwner guards a route addressing a single resource instance. The
// resource id is read from the named chi URL parameter.
func (m Middleware) RequireOwner(resourceType, urlParam string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resourceID := chi.URLParam(r, urlParam)
			d := m.Gate.RequireResourceOwner(PrincipalFromContext(r.Context()), resourceID, resourceType, endpoint(r))
			m.respond(w, r, next, d)
		})
	}
}

func (m Middleware) respond(w http.ResponseWriter, r *http.Request, next http.Handler, d AccessDecision) {
	if d.Allowed {
		next.ServeHTTP(w, r)
		return
	}
	if m.Logger != nil {
		m.Logger.Warn("authorization denied",
			slog.String("path", r.URL.Path),
			slog.String("code", string(d.Code)),
			slog.String("required", d.Required),
			slog.String("role", string(d.Role)))
	}
	httpx.Deny(w, d.Code.HTTPStatus(), denialMessage(d.Code), string(d.Code), d.Required)
}

func denialMessage(code ReasonCode) string {
	switch code {
	case CodeAuthenticationRequired:
		return "authentication required"
	case CodeInsufficientPermissions:
		return "insufficient permissions"
	case CodeInsufficientRole:
		return "insufficient role"
	case CodeNotResourceOwner:
		return "not the resource owner"
	default:
		return "forbidden"
	}
}

func endpoint(r *http.Request) string {
	return r.Method + " " + r.URL.Path
}
