// Package auth carries the authenticated parent through request contexts.
// Every store call takes the parent id from here rather than from ambient
// global state.
package auth

import "context"

type contextKey struct{}

type AuthContext struct {
	ParentID  string
	SessionID string
	Email     string
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

// ParentID returns the signed-in parent, or "" when the request is anonymous.
func ParentID(ctx context.Context) string {
	ac, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return ac.ParentID
}

func SessionID(ctx context.Context) string {
	ac, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return ac.SessionID
}
