package admin

import "context"

// userNameKey is the context key for the signed-in display name.
type userNameKey struct{}

// contextWithUserName returns a context carrying the display name shown in
// the top bar.
func contextWithUserName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, userNameKey{}, name)
}

// userNameFromContext extracts the display name from the context.
// Returns an empty string if absent or the context is nil.
func userNameFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(userNameKey{}).(string)
	return v
}
