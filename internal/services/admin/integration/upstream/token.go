package upstream

import (
	"context"
	"strings"
)

type tokenKey struct{}

// WithToken returns a context carrying the bearer token relayed to the
// upstream API.
func WithToken(ctx context.Context, token string) context.Context {
	token = strings.TrimSpace(token)
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the relayed bearer token, if any.
func TokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}
