package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/bloghive/bloghive-api/internal/domain/entity"
	"github.com/bloghive/bloghive-api/internal/domain/policy"
	"github.com/bloghive/bloghive-api/internal/domain/repository"
)

// BlogService owns blog CRUD, embedded comments and like toggles. Reads are
// public; every mutation goes through the policy predicates.
type BlogService struct {
	Blogs  repository.BlogRepository
	Logger *logrus.Logger
}

type BlogInput struct {
	Title   string
	Content string
}

func (s *BlogService) Create(ctx context.Context, actor policy.Actor, in BlogInput) (*entity.Blog, error) {
	if d := policy.NotBlocked()(actor); !d.Allowed {
		return nil, Forbidden(d.Reason)
	}
	b := &entity.Blog{Title: in.Title, Content: in.Content, AuthorID: actor.ID}
	if err := s.Blogs.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BlogService) Get(ctx context.Context, id string) (*entity.Blog, error) {
	b, err := s.Blogs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBlogNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *BlogService) List(ctx context.Context, f repository.BlogListFilter) ([]entity.Blog, int, error) {
	return s.Blogs.List(ctx, f)
}

// Update is permitted to the author or an admin, and never to a blocked
// account.
func (s *BlogService) Update(ctx context.Context, actor policy.Actor, id string, in BlogInput) (*entity.Blog, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d := policy.All(policy.NotBlocked(), policy.Owner(b.AuthorID))(actor); !d.Allowed {
		return nil, Forbidden(d.Reason)
	}
	b.Title = in.Title
	b.Content = in.Content
	if err := s.Blogs.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BlogService) Delete(ctx context.Context, actor policy.Actor, id string) error {
	b, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if d := policy.All(policy.NotBlocked(), policy.Owner(b.AuthorID))(actor); !d.Allowed {
		return Forbidden(d.Reason)
	}
	return s.Blogs.Delete(ctx, id)
}

func (s *BlogService) AddComment(ctx context.Context, actor policy.Actor, blogID, body string) (*entity.Comment, error) {
	if d := policy.NotBlocked()(actor); !d.Allowed {
		return nil, Forbidden(d.Reason)
	}
	if _, err := s.Get(ctx, blogID); err != nil {
		return nil, err
	}
	c := &entity.Comment{BlogID: blogID, UserID: actor.ID, Body: body}
	if err := s.Blogs.AddComment(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBlogNotFound
		}
		return nil, err
	}
	return c, nil
}

// DeleteComment is permitted to the comment's author or an admin; blog
// ownership grants no rights over other users' comments.
func (s *BlogService) DeleteComment(ctx context.Context, actor policy.Actor, blogID, commentID string) error {
	c, err := s.Blogs.GetComment(ctx, blogID, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	if d := policy.All(policy.NotBlocked(), policy.Owner(c.UserID))(actor); !d.Allowed {
		return Forbidden(d.Reason)
	}
	return s.Blogs.DeleteComment(ctx, blogID, commentID)
}

// ToggleLike flips the actor's like on the blog; the second toggle undoes
// the first.
func (s *BlogService) ToggleLike(ctx context.Context, actor policy.Actor, blogID string) (bool, int, error) {
	if d := policy.NotBlocked()(actor); !d.Allowed {
		return false, 0, Forbidden(d.Reason)
	}
	liked, count, err := s.Blogs.ToggleLike(ctx, blogID, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, 0, ErrBlogNotFound
		}
		return false, 0, err
	}
	return liked, count, nil
}
