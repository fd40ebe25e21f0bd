package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/jewel109/mobiledoor-api/internal/authz"
	"github.com/jewel109/mobiledoor-api/pkg/enums"
	pkgerrors "github.com/jewel109/mobiledoor-api/pkg/errors"
)

type contextKey string

const ctxActor contextKey = "actor"

// ActorFromContext returns the authenticated caller. ok is false when the
// request did not pass through Auth.
func ActorFromContext(ctx context.Context) (authz.Actor, bool) {
	if ctx == nil {
		return authz.Actor{}, false
	}
	actor, ok := ctx.Value(ctxActor).(authz.Actor)
	if !ok || actor.UserID == uuid.Nil {
		return authz.Actor{}, false
	}
	return actor, true
}

func UserIDFromContext(ctx context.Context) string {
	if actor, ok := ActorFromContext(ctx); ok {
		return actor.UserID.String()
	}
	return ""
}

// WithActor injects the caller into the context.
func WithActor(ctx context.Context, userID uuid.UUID, role enums.UserRole) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, authz.Actor{UserID: userID, Role: role})
}

// RequireActor is ActorFromContext for handlers that cannot run anonymously.
func RequireActor(ctx context.Context) (authz.Actor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return authz.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return actor, nil
}
