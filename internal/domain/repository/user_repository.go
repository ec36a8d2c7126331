package repository

import (
	"context"

	"github.com/bloghive/bloghive-api/internal/domain/entity"
)

// UserListFilter narrows the admin user listing.
type UserListFilter struct {
	Query     string // case-insensitive substring on username or email
	Role      entity.Role
	IsBlocked *bool
	Page      int
	Limit     int
}

// UserRepository defines user persistence including the follower edge set.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetRole(ctx context.Context, id string, role entity.Role) (*entity.User, error)
	ToggleBlock(ctx context.Context, id string) (*entity.User, error)

	// IsBlocked re-reads the persisted flag so a block takes effect on the
	// target's next request regardless of token freshness.
	IsBlocked(ctx context.Context, id string) (bool, error)

	// Delete removes the user and all blogs they authored in one transaction.
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, f UserListFilter) ([]entity.User, int, error)
	SearchByUsername(ctx context.Context, q string, limit int) ([]entity.User, error)

	// ToggleFollow flips actorID's membership in targetID's follower set as a
	// single read-modify-write. It reports whether the actor follows the
	// target after the call.
	ToggleFollow(ctx context.Context, actorID, targetID string) (bool, error)
	IsFollowing(ctx context.Context, actorID, targetID string) (bool, error)
	Followers(ctx context.Context, userID string) ([]entity.User, error)
}
