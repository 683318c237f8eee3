package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crewshift/internal/domain/auth"
)

func TestAuthMiddlewareSetsUser(t *testing.T) {
	secret := "test-secret"
	token, err := auth.GenerateToken(secret, auth.Identity{ID: "u1", Role: auth.RoleManager}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	called := false
	handler := Auth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		user, ok := GetUser(r.Context())
		if !ok {
			t.Fatal("expected user in context")
		}
		if user.ID != "u1" || user.Role != auth.RoleManager {
			t.Fatalf("unexpected user: %+v", user)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if !called {
		t.Fatal("handler not called")
	}
}

func TestAuthMiddlewareIgnoresBadTokens(t *testing.T) {
	other, err := auth.GenerateToken("other-secret", auth.Identity{ID: "u1", Role: auth.RoleWorker}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer not-a-jwt", "Bearer " + other} {
		handler := Auth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetUser(r.Context()); ok {
				t.Fatalf("did not expect user in context for %q", header)
			}
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
}
