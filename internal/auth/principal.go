package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/trustverify/trustverify/internal/authz"
	"github.com/trustverify/trustverify/internal/shared"
)

// PrincipalMiddleware resolves the session user into an authorization
// principal and attaches it to the request context. Requests without a valid
// session continue unauthenticated; the gate turns that into
// AUTHENTICATION_REQUIRED where it matters.
func PrincipalMiddleware(service *Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			if sess == nil {
				next.ServeHTTP(w, r)
				return
			}
			raw := strings.TrimSpace(sess.User())
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			userID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				if logger != nil {
					logger.Error("parse session user id", slog.String("value", raw))
				}
				next.ServeHTTP(w, r)
				return
			}
			principal, err := service.LookupPrincipal(r.Context(), userID)
			if err != nil {
				if !errors.Is(err, shared.ErrNotFound) && logger != nil {
					logger.Error("lookup principal", slog.Any("error", err))
				}
				next.ServeHTTP(w, r)
				return
			}
			ctx := authz.ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
