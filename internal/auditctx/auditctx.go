// Package auditctx carries the identity of the request actor through
// context.Context so the audit trail can attribute writes without every
// service signature growing actor parameters.
package auditctx

import "context"

// Actor describes who triggered the current operation and from where.
type Actor struct {
	UserID    string
	Username  string
	IPAddress string
	UserAgent string
}

// IsZero reports whether no actor information is present at all.
func (a Actor) IsZero() bool {
	return a.UserID == "" && a.Username == "" && a.IPAddress == "" && a.UserAgent == ""
}

type actorContextKey struct{}

// WithActor returns a context carrying the actor. Handlers attach it once
// per request; services never need to know where the values came from.
func WithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// FromContext recovers the actor stored by WithActor, if any.
func FromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}
