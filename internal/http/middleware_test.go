package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/community-roster/internal/application"
	"github.com/example/community-roster/internal/roster"
)

type fakeTokenValidator struct {
	principal application.Principal
	err       error
}

func (f fakeTokenValidator) ValidateToken(ctx context.Context, token string) (application.Principal, error) {
	return f.principal, f.err
}

func TestRequireSession(t *testing.T) {
	t.Parallel()

	t.Run("rejects requests without tokens", func(t *testing.T) {
		t.Parallel()

		handler := RequireSession(fakeTokenValidator{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler should not be called without a token")
		}))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/duties", nil))

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", recorder.Code)
		}
	})

	t.Run("rejects invalid tokens", func(t *testing.T) {
		t.Parallel()

		handler := RequireSession(fakeTokenValidator{err: application.ErrInvalidCredentials}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler should not be called with an invalid token")
		}))

		req := httptest.NewRequest(http.MethodGet, "/duties", nil)
		req.Header.Set("Authorization", "Bearer bogus")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", recorder.Code)
		}
	})

	t.Run("rejects expired sessions", func(t *testing.T) {
		t.Parallel()

		handler := RequireSession(fakeTokenValidator{err: application.ErrSessionExpired}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler should not be called with an expired session")
		}))

		req := httptest.NewRequest(http.MethodGet, "/duties", nil)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "expired"})
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", recorder.Code)
		}
	})

	t.Run("attaches principal to context", func(t *testing.T) {
		t.Parallel()

		principal := application.Principal{MemberID: "m1", Roles: []roster.Role{roster.RoleAdmin}}
		captured := make(chan application.Principal, 1)

		handler := RequireSession(fakeTokenValidator{principal: principal}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				t.Error("expected principal in request context")
			}
			captured <- p
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/duties", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", recorder.Code)
		}
		got := <-captured
		if got.MemberID != principal.MemberID {
			t.Fatalf("principal = %+v, want %+v", got, principal)
		}
	})
}

func TestExtractTokenFromRequest(t *testing.T) {
	t.Parallel()

	t.Run("prefers bearer header", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer header-token")
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "cookie-token"})
		if token := extractTokenFromRequest(req); token != "header-token" {
			t.Fatalf("token = %q, want header token", token)
		}
	})

	t.Run("falls back to cookie", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "cookie-token"})
		if token := extractTokenFromRequest(req); token != "cookie-token" {
			t.Fatalf("token = %q, want cookie token", token)
		}
	})

	t.Run("empty when absent", func(t *testing.T) {
		t.Parallel()
		if token := extractTokenFromRequest(httptest.NewRequest(http.MethodGet, "/", nil)); token != "" {
			t.Fatalf("token = %q, want empty", token)
		}
	})
}
