package profiles

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/trustverify/trustverify/internal/authz"
	"github.com/trustverify/trustverify/internal/platform/httpx"
	"github.com/trustverify/trustverify/internal/shared"
	"github.com/trustverify/trustverify/internal/users"
)

// Handler serves profile resources. Profiles are owner-scoped: a
// non-elevated principal only reaches its own id, enforced by the ownership
// gate in front of every route.
type Handler struct {
	logger  *slog.Logger
	service *users.Service
	authz   authz.Middleware
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *users.Service, mw authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authz: mw}
}

// MountRoutes registers profile routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequirePermission(authz.PermReadOwnProfile))
		r.Use(h.authz.RequireOwner(authz.ResourceProfile, "id"))
		r.Get("/{id}", h.getProfile)
	})
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "id must be an integer")
		return
	}
	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "profile not found")
			return
		}
		h.logger.Error("get profile", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"id":          strconv.FormatInt(user.ID, 10),
		"email":       user.Email,
		"name":        user.Name,
		"trust_score": user.TrustScore,
	})
}
