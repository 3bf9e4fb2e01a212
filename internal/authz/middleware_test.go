package authz

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newTestMiddleware(t *testing.T) Middleware {
	t.Helper()
	resolver, err := NewResolver()
	if err != nil {
		t.Fatalf("compose resolver: %v", err)
	}
	gate := NewGate(GateConfig{Resolver: resolver, Derivation: testDerivation()})
	return Middleware{Gate: gate}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func decodeDenial(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode denial body: %v", err)
	}
	return body
}

func TestRequirePermissionMiddlewareUnauthenticated(t *testing.T) {
	mw := newTestMiddleware(t)
	handler := mw.RequirePermission(PermCreateTransaction)(okHandler())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/transactions", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	body := decodeDenial(t, rr)
	if body["code"] != "AUTHENTICATION_REQUIRED" {
		t.Fatalf("expected AUTHENTICATION_REQUIRED, got %s", body["code"])
	}
	if body["required"] != "create:transaction" {
		t.Fatalf("expected missing permission in body, got %s", body["required"])
	}
}

func TestRequirePermissionMiddlewareForbidden(t *testing.T) {
	mw := newTestMiddleware(t)
	handler := mw.RequirePermission(PermManageOrgBilling)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/org/billing", nil)
	p := &Principal{ID: "7", Email: "user@example.com"}
	req = req.WithContext(ContextWithPrincipal(req.Context(), p))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	body := decodeDenial(t, rr)
	if body["code"] != "INSUFFICIENT_PERMISSIONS" {
		t.Fatalf("expected INSUFFICIENT_PERMISSIONS, got %s", body["code"])
	}
}

func TestRequirePermissionMiddlewareAllows(t *testing.T) {
	mw := newTestMiddleware(t)
	handler := mw.RequirePermission(PermCreateTransaction)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/transactions", nil)
	p := &Principal{ID: "7", Email: "user@example.com"}
	req = req.WithContext(ContextWithPrincipal(req.Context(), p))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Body.String() != "ok" {
		t.Fatalf("expected handler body to pass through, got %q", rr.Body.String())
	}
}

func TestRequireRoleMiddleware(t *testing.T) {
	mw := newTestMiddleware(t)
	handler := mw.RequireRole(RoleAdmin)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	p := &Principal{ID: "1", Email: "admin@trustverify.com"}
	req = req.WithContext(ContextWithPrincipal(req.Context(), p))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for super admin, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	p = &Principal{ID: "2", Email: "user@example.com"}
	req = req.WithContext(ContextWithPrincipal(req.Context(), p))

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for plain user, got %d", rr.Code)
	}
	body := decodeDenial(t, rr)
	if body["code"] != "INSUFFICIENT_ROLE" {
		t.Fatalf("expected INSUFFICIENT_ROLE, got %s", body["code"])
	}
	if body["required"] != "ADMIN" {
		t.Fatalf("expected required ADMIN, got %s", body["required"])
	}
}

func TestRequireRoleMiddlewarePanicsOnNonLadderRole(t *testing.T) {
	mw := newTestMiddleware(t)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for non-ladder role floor")
		}
	}()
	mw.RequireRole(RoleClientOrgOwner)
}

func TestRequireOwnerMiddleware(t *testing.T) {
	mw := newTestMiddleware(t)

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(mw.RequireOwner(ResourceMessage, "id"))
		r.Get("/api/messages/{id}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	serve := func(target string, p *Principal) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		if p != nil {
			req = req.WithContext(ContextWithPrincipal(req.Context(), p))
		}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	owner := &Principal{ID: "42", Email: "user@example.com"}
	if rr := serve("/api/messages/42", owner); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner, got %d", rr.Code)
	}
	rr := serve("/api/messages/43", owner)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign message, got %d", rr.Code)
	}
	if body := decodeDenial(t, rr); body["code"] != "NOT_RESOURCE_OWNER" {
		t.Fatalf("expected NOT_RESOURCE_OWNER, got %s", body["code"])
	}
	if rr := serve("/api/messages/42", nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 unauthenticated, got %d", rr.Code)
	}
	admin := &Principal{ID: "1", Email: "ops@trustverify.com"}
	if rr := serve("/api/messages/43", admin); rr.Code != http.StatusOK {
		t.Fatalf("expected admin bypass, got %d", rr.Code)
	}
}

func TestRequireAnyAndAllMiddleware(t *testing.T) {
	mw := newTestMiddleware(t)

	anyHandler := mw.RequireAny(PermManageUsers, PermReadOrgReports)(okHandler())
	allHandler := mw.RequireAll(PermManageUsers, PermManageRoles)(okHandler())

	analyst := &Principal{ID: "5", Email: "a@example.com", AssignedRole: RoleClientAnalyst}
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req = req.WithContext(ContextWithPrincipal(req.Context(), analyst))
	rr := httptest.NewRecorder()
	anyHandler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected analyst to pass any-gate, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req = req.WithContext(ContextWithPrincipal(req.Context(), analyst))
	rr = httptest.NewRecorder()
	allHandler.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected analyst to fail all-gate, got %d", rr.Code)
	}
}

func TestPrincipalContextRoundTrip(t *testing.T) {
	p := &Principal{ID: "1", Email: "u@example.com"}
	ctx := ContextWithPrincipal(context.Background(), p)
	if got := PrincipalFromContext(ctx); got != p {
		t.Fatal("principal lost in context round trip")
	}
	if got := PrincipalFromContext(context.Background()); got != nil {
		t.Fatal("expected nil principal on empty context")
	}
}
