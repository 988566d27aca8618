package admin

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/louisbranch/yardconsole/internal/services/admin/integration/upstream"
	routepath "github.com/louisbranch/yardconsole/internal/services/admin/routepath"
)

// tokenCookieName is the cookie set by the identity provider login flow.
const tokenCookieName = "id_token"

// nameClaims are read in order for the top bar name.
var nameClaims = []string{"name", "preferred_username", "email", "sub"}

// relayToken attaches the id_token cookie to the request context so every
// upstream call made for the request carries it as a bearer token.
//
// The console does not verify the token; the upstream API does. Static assets
// and operational endpoints skip the lookup.
func relayToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isAuthExempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		token := requestToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		ctx := upstream.WithToken(r.Context(), token)
		if name := displayName(token); name != "" {
			ctx = contextWithUserName(ctx, name)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// isAuthExempt returns true for paths that never reach the upstream API.
func isAuthExempt(path string) bool {
	return strings.HasPrefix(path, routepath.StaticPrefix) ||
		path == routepath.Healthz ||
		path == routepath.Metrics
}

func requestToken(r *http.Request) string {
	cookie, err := r.Cookie(tokenCookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

// displayName reads the user's name from unverified token claims. It is for
// display only.
func displayName(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	for _, key := range nameClaims {
		if value, ok := claims[key].(string); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
