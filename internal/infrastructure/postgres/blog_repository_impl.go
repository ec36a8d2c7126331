package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bloghive/bloghive-api/internal/domain/entity"
	"github.com/bloghive/bloghive-api/internal/domain/repository"
)

type BlogRepository struct {
	pool *pgxpool.Pool
}

func NewBlogRepository(pool *pgxpool.Pool) *BlogRepository {
	return &BlogRepository{pool: pool}
}

func (r *BlogRepository) Create(ctx context.Context, b *entity.Blog) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO blogs (title, content, author_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, b.Title, b.Content, b.AuthorID)
	return row.Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *BlogRepository) GetByID(ctx context.Context, id string) (*entity.Blog, error) {
	b := &entity.Blog{}
	row := r.pool.QueryRow(ctx, `
		SELECT b.id, b.title, b.content, b.author_id, u.username, b.created_at, b.updated_at
		FROM blogs b JOIN users u ON u.id = b.author_id
		WHERE b.id = $1
	`, id)
	if err := row.Scan(&b.ID, &b.Title, &b.Content, &b.AuthorID, &b.AuthorName,
		&b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadComments(ctx, b); err != nil {
		return nil, err
	}
	if err := r.loadLikes(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BlogRepository) loadComments(ctx context.Context, b *entity.Blog) error {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.blog_id, c.user_id, u.username, c.body, c.created_at
		FROM comments c JOIN users u ON u.id = c.user_id
		WHERE c.blog_id = $1
		ORDER BY c.created_at
	`, b.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var c entity.Comment
		if err := rows.Scan(&c.ID, &c.BlogID, &c.UserID, &c.Username, &c.Body, &c.CreatedAt); err != nil {
			return err
		}
		b.Comments = append(b.Comments, c)
	}
	return rows.Err()
}

func (r *BlogRepository) loadLikes(ctx context.Context, b *entity.Blog) error {
	rows, err := r.pool.Query(ctx, `SELECT user_id FROM blog_likes WHERE blog_id = $1`, b.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		b.Likes = append(b.Likes, id)
	}
	return rows.Err()
}

func (r *BlogRepository) Update(ctx context.Context, b *entity.Blog) error {
	b.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE blogs SET title = $1, content = $2, updated_at = $3 WHERE id = $4
	`, b.Title, b.Content, b.UpdatedAt, b.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *BlogRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM blogs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *BlogRepository) List(ctx context.Context, f repository.BlogListFilter) ([]entity.Blog, int, error) {
	where := make([]string, 0, 2)
	args := make([]any, 0, 2)
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		where = append(where, `b.title ILIKE $`+strconv.Itoa(len(args)))
	}
	if f.AuthorID != "" {
		args = append(args, f.AuthorID)
		where = append(where, `b.author_id = $`+strconv.Itoa(len(args)))
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM blogs b`+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := pageBounds(f.Page, f.Limit)
	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx, `
		SELECT b.id, b.title, b.content, b.author_id, u.username, b.created_at, b.updated_at
		FROM blogs b JOIN users u ON u.id = b.author_id`+cond+`
		ORDER BY b.created_at DESC
		LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]entity.Blog, 0, limit)
	for rows.Next() {
		var b entity.Blog
		if err := rows.Scan(&b.ID, &b.Title, &b.Content, &b.AuthorID, &b.AuthorName,
			&b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range items {
		if err := r.loadComments(ctx, &items[i]); err != nil {
			return nil, 0, err
		}
		if err := r.loadLikes(ctx, &items[i]); err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

func (r *BlogRepository) AddComment(ctx context.Context, c *entity.Comment) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO comments (blog_id, user_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, c.BlogID, c.UserID, c.Body)
	if err := row.Scan(&c.ID, &c.CreatedAt); err != nil {
		return err
	}
	return nil
}

func (r *BlogRepository) GetComment(ctx context.Context, blogID, commentID string) (*entity.Comment, error) {
	c := &entity.Comment{}
	row := r.pool.QueryRow(ctx, `
		SELECT c.id, c.blog_id, c.user_id, u.username, c.body, c.created_at
		FROM comments c JOIN users u ON u.id = c.user_id
		WHERE c.id = $1 AND c.blog_id = $2
	`, commentID, blogID)
	if err := row.Scan(&c.ID, &c.BlogID, &c.UserID, &c.Username, &c.Body, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *BlogRepository) DeleteComment(ctx context.Context, blogID, commentID string) error {
	res, err := r.pool.Exec(ctx, `
		DELETE FROM comments WHERE id = $1 AND blog_id = $2
	`, commentID, blogID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ToggleLike flips userID's membership in the blog's like set. The toggle is
// delete-then-insert in one transaction, so concurrent toggles settle on one
// of the two valid states rather than corrupting the set.
func (r *BlogRepository) ToggleLike(ctx context.Context, blogID, userID string) (bool, int, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM blogs WHERE id = $1)`, blogID).Scan(&exists); err != nil {
		return false, 0, err
	}
	if !exists {
		return false, 0, repository.ErrNotFound
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	res, err := tx.Exec(ctx, `DELETE FROM blog_likes WHERE blog_id = $1 AND user_id = $2`, blogID, userID)
	if err != nil {
		return false, 0, err
	}
	liked := false
	if res.RowsAffected() == 0 {
		if _, err := tx.Exec(ctx, `
			INSERT INTO blog_likes (blog_id, user_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, blogID, userID); err != nil {
			return false, 0, err
		}
		liked = true
	}

	var count int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM blog_likes WHERE blog_id = $1`, blogID).Scan(&count); err != nil {
		return false, 0, err
	}
	return liked, count, tx.Commit(ctx)
}

var _ repository.BlogRepository = (*BlogRepository)(nil)
