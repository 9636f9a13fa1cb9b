package identity

import (
	"context"

	"github.com/crescentvet/clinic-booking/internal/clinic"
)

// Role is the account type encoded in the auth token. Every request resolves
// to exactly one role up front; handlers never probe attributes to figure out
// who is calling.
type Role string

const (
	RoleClient Role = "client"
	RoleDoctor Role = "doctor"
	RoleStaff  Role = "staff"
)

// Actor is the authenticated caller. Doctor is populated only for RoleDoctor,
// resolved once during authentication from the doctor's linked account email.
type Actor struct {
	Role   Role
	Email  string
	Doctor *clinic.Doctor
}

type actorContextKey struct{}

// WithActor stores the actor on the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext returns the authenticated actor, if any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}
