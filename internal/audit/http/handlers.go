package audithttp

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/trustverify/trustverify/internal/audit"
	"github.com/trustverify/trustverify/internal/authz"
	"github.com/trustverify/trustverify/internal/platform/httpx"
)

// Service reads stored audit entries.
type Service interface {
	Recent(ctx context.Context, limit int) ([]audit.Entry, error)
}

// Handler exposes the audit review endpoint.
type Handler struct {
	logger  *slog.Logger
	service Service
	authz   authz.Middleware
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service Service, mw authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authz: mw}
}

// MountRoutes registers audit routes. Reading the trail is reserved to
// holders of access:audit_logs.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequirePermission(authz.PermAccessAuditLogs))
		r.Get("/events", h.listEvents)
	})
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "limit must be an integer")
			return
		}
		limit = parsed
	}
	entries, err := h.service.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("list audit events", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"events": entries})
}
