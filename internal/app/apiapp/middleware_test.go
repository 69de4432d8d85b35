package apiapp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	identitysvc "github.com/olzhas-sembi/dating-backend/internal/services/identity"
)

func TestIdentityMiddlewareResolvesHeader(t *testing.T) {
	var captured identitysvc.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := identitysvc.FromContext(r.Context())
		if !ok {
			t.Fatalf("identity missing from request context")
		}
		captured = id
		w.WriteHeader(http.StatusNoContent)
	})

	handler := IdentityMiddleware(nil)(next)

	req := httptest.NewRequest(http.MethodGet, "/v1/matches", nil)
	req.Header.Set("X-User-ID", "42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if captured.UserID != 42 {
		t.Fatalf("user id = %d, want 42", captured.UserID)
	}
}

func TestIdentityMiddlewareRejectsBadHeader(t *testing.T) {
	next := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatalf("next handler must not run without identity")
	})

	handler := IdentityMiddleware(nil)(next)

	for _, value := range []string{"", "abc", "0", "-5"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/matches", nil)
		if value != "" {
			req.Header.Set("X-User-ID", value)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: status = %d, want %d", value, rec.Code, http.StatusUnauthorized)
		}
	}
}
