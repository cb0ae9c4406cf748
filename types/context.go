package types

import "context"

type contextKey string

const actorContextKey contextKey = "actor"

// AnonymousActor identifies callers that did not present an identity.
const AnonymousActor = "anon@local"

// WithActor stores the acting identity on ctx.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// ActorFromContext returns the acting identity, or AnonymousActor.
func ActorFromContext(ctx context.Context) string {
	if actor, ok := ctx.Value(actorContextKey).(string); ok && actor != "" {
		return actor
	}
	return AnonymousActor
}
