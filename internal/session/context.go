package session

import (
	"context"

	"seamline.io/internal/authz"
)

type principalContextKey struct{}

// ContextWithPrincipal attaches the authenticated principal to the context.
func ContextWithPrincipal(ctx context.Context, principal authz.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, &principal)
}

// PrincipalFromContext extracts the authenticated principal from the context.
func PrincipalFromContext(ctx context.Context) (authz.Principal, bool) {
	if ctx == nil {
		return authz.Principal{}, false
	}
	v, ok := ctx.Value(principalContextKey{}).(*authz.Principal)
	if !ok || v == nil {
		return authz.Principal{}, false
	}
	return *v, true
}
