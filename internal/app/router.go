package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	audithttp "github.com/trustverify/trustverify/internal/audit/http"
	"github.com/trustverify/trustverify/internal/auth"
	"github.com/trustverify/trustverify/internal/authz"
	"github.com/trustverify/trustverify/internal/observability"
	"github.com/trustverify/trustverify/internal/profiles"
	"github.com/trustverify/trustverify/internal/shared"
	"github.com/trustverify/trustverify/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	SessionManager  *shared.SessionManager
	AuthService     *auth.Service
	AuthHandler     *auth.Handler
	UsersHandler    *users.Handler
	ProfilesHandler *profiles.Handler
	AuditHandler    *audithttp.Handler
	Authz           authz.Middleware
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with TrustVerify defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)
	r.Use(auth.PrincipalMiddleware(params.AuthService, params.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Group(func(r chi.Router) {
		r.Use(params.Authz.RequirePermission(authz.PermReadSystemMetrics))
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)
		r.Route("/users", params.UsersHandler.MountRoutes)
		r.Route("/profiles", params.ProfilesHandler.MountRoutes)
		r.Route("/audit", params.AuditHandler.MountRoutes)
	})

	return r
}
