package shared

import "context"

// Actor is the authenticated identity attached to every engine call.
// Authentication and role policy happen upstream; the engine only records
// who acted.
type Actor struct {
	ID   int64
	Role string
}

type actorContextKey struct{}

// ContextWithActor stores the acting user in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the acting user from context. The zero Actor
// is returned when none is attached.
func ActorFromContext(ctx context.Context) Actor {
	actor, _ := ctx.Value(actorContextKey{}).(Actor)
	return actor
}
