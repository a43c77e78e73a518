// Package reqctx provides request context utilities for passing request
// metadata between middleware and handlers.
package reqctx

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const keyTenant contextKey = "tenant"

// WithTenant adds the authenticated tenant id to the context.
func WithTenant(ctx context.Context, tenant string) context.Context {
	return context.WithValue(ctx, keyTenant, tenant)
}

// Tenant returns the authenticated tenant id, or "" when unauthenticated.
func Tenant(ctx context.Context) string {
	tenant, _ := ctx.Value(keyTenant).(string)
	return tenant
}

// BearerToken extracts the bearer token from an Authorization header.
// Returns "" when the header is absent or not a bearer scheme.
func BearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return token
	}
	return ""
}
