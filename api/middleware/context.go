package middleware

import "context"

type adminKey struct{}

// adminIdentity is what RequireAdmin learned from a valid token.
type adminIdentity struct {
	username  string
	sessionID string
}

func identity(ctx context.Context) adminIdentity {
	if ctx == nil {
		return adminIdentity{}
	}
	id, _ := ctx.Value(adminKey{}).(adminIdentity)
	return id
}

// AdminFromContext returns "" on storefront requests.
func AdminFromContext(ctx context.Context) string { return identity(ctx).username }

func SessionIDFromContext(ctx context.Context) string { return identity(ctx).sessionID }

func WithAdmin(ctx context.Context, username, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, adminKey{}, adminIdentity{username: username, sessionID: sessionID})
}
