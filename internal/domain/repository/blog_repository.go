package repository

import (
	"context"

	"github.com/bloghive/bloghive-api/internal/domain/entity"
)

// BlogListFilter narrows blog listings.
type BlogListFilter struct {
	Query    string // case-insensitive substring on title
	AuthorID string
	Page     int
	Limit    int
}

// BlogRepository defines blog persistence including embedded comments and
// the like set.
type BlogRepository interface {
	Create(ctx context.Context, b *entity.Blog) error
	GetByID(ctx context.Context, id string) (*entity.Blog, error)
	Update(ctx context.Context, b *entity.Blog) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f BlogListFilter) ([]entity.Blog, int, error)

	AddComment(ctx context.Context, c *entity.Comment) error
	GetComment(ctx context.Context, blogID, commentID string) (*entity.Comment, error)
	DeleteComment(ctx context.Context, blogID, commentID string) error

	// ToggleLike flips userID's membership in the blog's like set as a single
	// read-modify-write. It reports the new state and the resulting count.
	ToggleLike(ctx context.Context, blogID, userID string) (bool, int, error)
}
