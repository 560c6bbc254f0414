package middleware

import (
	"context"

	"github.com/kkarhua/fullrest-backend/internal/authz"
)

type contextKey string

const ctxIdentity contextKey = "identity"

// WithIdentity attaches the authenticated caller to ctx.
func WithIdentity(ctx context.Context, id *authz.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, id)
}

// IdentityFromContext returns the caller, or nil for anonymous requests.
func IdentityFromContext(ctx context.Context) *authz.Identity {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxIdentity).(*authz.Identity); ok {
		return v
	}
	return nil
}
