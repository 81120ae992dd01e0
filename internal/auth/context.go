package auth

import (
	"context"

	"github.com/examgate/examgate/internal/exam"
)

// Identity is the resolved caller, carried per-request in the context.
// Handlers receive it explicitly; there is no ambient session state.
type Identity struct {
	UserID string
	Role   exam.Role
}

type ctxKey struct{}

var ctxKeyIdentity = ctxKey{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKeyIdentity).(Identity)
	return id, ok && id.UserID != ""
}
