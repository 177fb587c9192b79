package auth

import (
	"context"

	"github.com/hongminglow/forum-be/internal/models"
)

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying the resolved identity.
func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the identity stored by WithIdentity, or Anonymous.
func IdentityFromContext(ctx context.Context) models.Identity {
	if identity, ok := ctx.Value(identityKey{}).(models.Identity); ok {
		return identity
	}
	return models.Anonymous
}
