package api

import (
	"context"
	"time"
)

// QueryTimeout is the default timeout for database queries
const QueryTimeout = 10 * time.Second

// WithQueryTimeout creates a context with query timeout
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, QueryTimeout)
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a context carrying the authenticated identity's
// access claims. Handlers receive identity through the request context, not
// through fields on the request.
func WithIdentity(parent context.Context, claims *AccessClaims) context.Context {
	return context.WithValue(parent, identityKey, claims)
}

// IdentityFromContext returns the authenticated identity, if any
func IdentityFromContext(ctx context.Context) (*AccessClaims, bool) {
	claims, ok := ctx.Value(identityKey).(*AccessClaims)
	return claims, ok
}
