// Package policy implements the authorization rules as small composable
// predicates over the acting identity, so routes and services can declare
// which checks they need instead of inlining conditionals.
package policy

import "github.com/bloghive/bloghive-api/internal/domain/entity"

// Actor is the identity making the current request, derived from its token.
// Blocked reflects the persisted flag as of this request, not the token.
type Actor struct {
	ID      string
	Role    entity.Role
	Blocked bool
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == entity.RoleAdmin }

// Decision is an allow/deny outcome with the reason for a denial.
type Decision struct {
	Allowed bool
	Reason  string
}

// Predicate evaluates a single authorization rule for an actor.
type Predicate func(a Actor) Decision

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

// RequireRole allows only actors holding the given role. Unlike ownership,
// role membership is never bypassed.
func RequireRole(role entity.Role) Predicate {
	return func(a Actor) Decision {
		if a.Role != role {
			return deny("requires " + string(role) + " role")
		}
		return allow()
	}
}

// NotBlocked denies mutations for accounts flagged as blocked.
// Reads are exempt; callers apply this predicate to mutating paths only.
func NotBlocked() Predicate {
	return func(a Actor) Decision {
		if a.Blocked {
			return deny("account is blocked")
		}
		return allow()
	}
}

// Owner allows the recorded owner of a resource, or any admin.
func Owner(ownerID string) Predicate {
	return func(a Actor) Decision {
		if a.IsAdmin() {
			return allow()
		}
		if a.ID != ownerID {
			return deny("not the owner")
		}
		return allow()
	}
}

// NotSelf denies actions targeting the actor's own account. Admins are not
// exempt: an admin may never change their own role, block themselves, or
// delete themselves, and no user may follow themselves.
func NotSelf(targetID string) Predicate {
	return func(a Actor) Decision {
		if a.ID == targetID {
			return deny("cannot target yourself")
		}
		return allow()
	}
}

// All composes predicates; the first denial wins, evaluated in order.
func All(preds ...Predicate) Predicate {
	return func(a Actor) Decision {
		for _, p := range preds {
			if d := p(a); !d.Allowed {
				return d
			}
		}
		return allow()
	}
}
