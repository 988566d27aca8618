package admin

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/louisbranch/yardconsole/internal/services/admin/integration/upstream"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "name claim", token: signedToken(t, jwt.MapClaims{"name": "Dewi Lestari", "email": "dewi@example.com"}), want: "Dewi Lestari"},
		{name: "falls back to email", token: signedToken(t, jwt.MapClaims{"name": "  ", "email": "ops@example.com"}), want: "ops@example.com"},
		{name: "subject only", token: signedToken(t, jwt.MapClaims{"sub": "user-42"}), want: "user-42"},
		{name: "not a jwt", token: "opaque-token", want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := displayName(tc.token); got != tc.want {
				t.Fatalf("displayName = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRelayTokenAttachesCookie(t *testing.T) {
	t.Parallel()

	token := signedToken(t, jwt.MapClaims{"preferred_username": "ops"})
	var gotToken, gotName string
	handler := relayToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = upstream.TokenFromContext(r.Context())
		gotName = userNameFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/en/yard-management-system", nil)
	req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: token})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if gotToken != token {
		t.Fatalf("token = %q, want cookie value", gotToken)
	}
	if gotName != "ops" {
		t.Fatalf("user name = %q, want ops", gotName)
	}
}

func TestRelayTokenSkipsExemptPaths(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"/static/app.css", "/healthz", "/metrics"} {
		var gotToken string
		handler := relayToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotToken = upstream.TokenFromContext(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: "abc"})
		handler.ServeHTTP(httptest.NewRecorder(), req)
		if gotToken != "" {
			t.Fatalf("%s token = %q, want empty", path, gotToken)
		}
	}
}

func TestRelayTokenWithoutCookie(t *testing.T) {
	t.Parallel()

	called := false
	handler := relayToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if got := upstream.TokenFromContext(r.Context()); got != "" {
			t.Errorf("token = %q, want empty", got)
		}
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Fatal("expected next handler to run")
	}
}
