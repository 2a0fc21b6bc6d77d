package domain

import (
	"context"
)

type principalKey struct{}

// SystemPrincipal is the principal name recorded for operations initiated by
// the engine itself (CLI commands, the grace sweep worker) rather than an
// authenticated API caller.
const SystemPrincipal = "system"

// WithPrincipal returns a context carrying the authenticated principal.
func WithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// PrincipalFromContext extracts the authenticated principal from the context.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(*Principal)
	return principal, ok
}

// PrincipalName returns the name of the authenticated principal, or
// SystemPrincipal when the context carries none.
func PrincipalName(ctx context.Context) string {
	if principal, ok := PrincipalFromContext(ctx); ok {
		return principal.Name
	}
	return SystemPrincipal
}
