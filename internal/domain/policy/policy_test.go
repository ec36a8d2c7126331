package policy

import (
	"testing"

	"github.com/bloghive/bloghive-api/internal/domain/entity"
)

func TestRequireRole(t *testing.T) {
	admin := Actor{ID: "a", Role: entity.RoleAdmin}
	user := Actor{ID: "u", Role: entity.RoleUser}

	if d := RequireRole(entity.RoleAdmin)(admin); !d.Allowed {
		t.Fatalf("admin denied admin-only action: %q", d.Reason)
	}
	if d := RequireRole(entity.RoleAdmin)(user); d.Allowed {
		t.Fatal("user allowed admin-only action")
	}
	// Role membership is exact, not hierarchical.
	if d := RequireRole(entity.RoleUser)(admin); d.Allowed {
		t.Fatal("admin allowed user-only action")
	}
}

func TestNotBlocked(t *testing.T) {
	if d := NotBlocked()(Actor{ID: "u", Role: entity.RoleUser}); !d.Allowed {
		t.Fatalf("unblocked actor denied: %q", d.Reason)
	}
	d := NotBlocked()(Actor{ID: "u", Role: entity.RoleUser, Blocked: true})
	if d.Allowed {
		t.Fatal("blocked actor allowed to mutate")
	}
	if d.Reason == "" {
		t.Fatal("denial carries no reason")
	}
}

func TestOwnerBypassedForAdmin(t *testing.T) {
	owner := Actor{ID: "alice", Role: entity.RoleUser}
	other := Actor{ID: "bob", Role: entity.RoleUser}
	admin := Actor{ID: "root", Role: entity.RoleAdmin}

	if d := Owner("alice")(owner); !d.Allowed {
		t.Fatalf("owner denied own resource: %q", d.Reason)
	}
	if d := Owner("alice")(other); d.Allowed {
		t.Fatal("non-owner allowed")
	}
	if d := Owner("alice")(admin); !d.Allowed {
		t.Fatalf("admin denied despite ownership bypass: %q", d.Reason)
	}
}

func TestNotSelfAppliesToAdmins(t *testing.T) {
	admin := Actor{ID: "root", Role: entity.RoleAdmin}
	if d := NotSelf("root")(admin); d.Allowed {
		t.Fatal("admin allowed to target themselves")
	}
	if d := NotSelf("alice")(admin); !d.Allowed {
		t.Fatalf("admin denied action on another user: %q", d.Reason)
	}
}

func TestAllFirstDenialWins(t *testing.T) {
	actor := Actor{ID: "u", Role: entity.RoleUser, Blocked: true}
	d := All(NotBlocked(), Owner("someone-else"))(actor)
	if d.Allowed {
		t.Fatal("composed predicate allowed a blocked non-owner")
	}
	if d.Reason != "account is blocked" {
		t.Fatalf("expected blocked denial first, got %q", d.Reason)
	}

	ok := All(NotBlocked(), Owner("u"))(Actor{ID: "u", Role: entity.RoleUser})
	if !ok.Allowed {
		t.Fatalf("composed predicate denied a valid owner: %q", ok.Reason)
	}
	if !All()(actor).Allowed {
		t.Fatal("empty composition must allow")
	}
}
