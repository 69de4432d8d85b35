package identity

import "context"

type identityContextKey string

const identityKey identityContextKey = "request_identity"

// Identity is the caller resolved by the edge gateway and forwarded on
// every request.
type Identity struct {
	UserID int64
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
