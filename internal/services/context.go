package services

import (
	"context"

	"memora/internal/domain/user"
)

type ctxKey string

var identityKey ctxKey = "identity"

// WithIdentity stores the verified caller for the HTTP layer. Services never
// read it back; handlers pass the identity explicitly.
func WithIdentity(ctx context.Context, id user.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (user.Identity, bool) {
	value := ctx.Value(identityKey)
	if value == nil {
		return user.Identity{}, false
	}
	id, ok := value.(user.Identity)
	return id, ok && id.Valid()
}
