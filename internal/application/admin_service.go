package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/bloghive/bloghive-api/internal/domain/entity"
	"github.com/bloghive/bloghive-api/internal/domain/policy"
	"github.com/bloghive/bloghive-api/internal/domain/repository"
)

// AdminService is the moderation surface. Ownership checks are bypassed for
// admins by construction, but self-action prevention still applies: an admin
// can never change their own role, block themselves or delete themselves.
type AdminService struct {
	Users  repository.UserRepository
	Blogs  repository.BlogRepository
	Logger *logrus.Logger
}

func (s *AdminService) requireAdmin(actor policy.Actor) error {
	if d := policy.RequireRole(entity.RoleAdmin)(actor); !d.Allowed {
		return Forbidden(d.Reason)
	}
	return nil
}

func (s *AdminService) ListUsers(ctx context.Context, actor policy.Actor, f repository.UserListFilter) ([]entity.User, int, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, 0, err
	}
	return s.Users.List(ctx, f)
}

func (s *AdminService) ChangeRole(ctx context.Context, actor policy.Actor, targetID string, role entity.Role) (*entity.User, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if d := policy.NotSelf(targetID)(actor); !d.Allowed {
		return nil, ErrSelfAction
	}
	u, err := s.Users.SetRole(ctx, targetID, role)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// ToggleBlock flips the target's blocked flag. The flag is re-read from the
// database on the target's next request, so the block takes effect
// immediately regardless of any token they still hold.
func (s *AdminService) ToggleBlock(ctx context.Context, actor policy.Actor, targetID string) (*entity.User, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	if d := policy.NotSelf(targetID)(actor); !d.Allowed {
		return nil, ErrSelfAction
	}
	u, err := s.Users.ToggleBlock(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// DeleteUser removes the target and every blog they authored as one unit of
// cleanup; the repository runs both deletes in a single transaction.
func (s *AdminService) DeleteUser(ctx context.Context, actor policy.Actor, targetID string) error {
	if err := s.requireAdmin(actor); err != nil {
		return err
	}
	if d := policy.NotSelf(targetID)(actor); !d.Allowed {
		return ErrSelfAction
	}
	if err := s.Users.Delete(ctx, targetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *AdminService) ListBlogs(ctx context.Context, actor policy.Actor, f repository.BlogListFilter) ([]entity.Blog, int, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, 0, err
	}
	return s.Blogs.List(ctx, f)
}

func (s *AdminService) DeleteBlog(ctx context.Context, actor policy.Actor, blogID string) error {
	if err := s.requireAdmin(actor); err != nil {
		return err
	}
	if err := s.Blogs.Delete(ctx, blogID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBlogNotFound
		}
		return err
	}
	return nil
}

func (s *AdminService) DeleteComment(ctx context.Context, actor policy.Actor, blogID, commentID string) error {
	if err := s.requireAdmin(actor); err != nil {
		return err
	}
	if err := s.Blogs.DeleteComment(ctx, blogID, commentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	return nil
}
