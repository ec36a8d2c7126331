package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bloghive/bloghive-api/internal/domain/entity"
	"github.com/bloghive/bloghive-api/internal/domain/repository"
)

const userColumns = `id, username, email, password_hash, role, is_blocked, bio, avatar_url, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row, u *entity.User) error {
	return row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.Role,
		&u.IsBlocked, &u.Bio, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, role, is_blocked, bio, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, u.Username, u.Email, u.Password, u.Role, u.IsBlocked, u.Bio, u.AvatarURL)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u := &entity.User{}
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err := scanUser(row, u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u := &entity.User{}
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err := scanUser(row, u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET username = $1, email = $2, bio = $3, avatar_url = $4, updated_at = $5
		WHERE id = $6
	`, u.Username, u.Email, u.Bio, u.AvatarURL, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2
	`, passwordHash, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetRole(ctx context.Context, id string, role entity.Role) (*entity.User, error) {
	u := &entity.User{}
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET role = $1, updated_at = now() WHERE id = $2
		RETURNING `+userColumns, role, id)
	if err := scanUser(row, u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) ToggleBlock(ctx context.Context, id string) (*entity.User, error) {
	u := &entity.User{}
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET is_blocked = NOT is_blocked, updated_at = now() WHERE id = $1
		RETURNING `+userColumns, id)
	if err := scanUser(row, u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) IsBlocked(ctx context.Context, id string) (bool, error) {
	var blocked bool
	err := r.pool.QueryRow(ctx, `SELECT is_blocked FROM users WHERE id = $1`, id).Scan(&blocked)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, repository.ErrNotFound
	}
	return blocked, err
}

// Delete removes the user and every blog they authored in one transaction so
// a failure cannot leave orphaned blogs behind.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM blogs WHERE author_id = $1`, id); err != nil {
		return err
	}
	res, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return tx.Commit(ctx)
}

func (r *UserRepository) List(ctx context.Context, f repository.UserListFilter) ([]entity.User, int, error) {
	where := make([]string, 0, 3)
	args := make([]any, 0, 3)
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		n := strconv.Itoa(len(args))
		where = append(where, `(username ILIKE $`+n+` OR email ILIKE $`+n+`)`)
	}
	if f.Role != "" {
		args = append(args, f.Role)
		where = append(where, `role = $`+strconv.Itoa(len(args)))
	}
	if f.IsBlocked != nil {
		args = append(args, *f.IsBlocked)
		where = append(where, `is_blocked = $`+strconv.Itoa(len(args)))
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := pageBounds(f.Page, f.Limit)
	args = append(args, limit, offset)
	q := `SELECT ` + userColumns + ` FROM users` + cond +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]entity.User, 0, limit)
	for rows.Next() {
		var u entity.User
		if err := scanUser(rows, &u); err != nil {
			return nil, 0, err
		}
		items = append(items, u)
	}
	return items, total, rows.Err()
}

func (r *UserRepository) SearchByUsername(ctx context.Context, q string, limit int) ([]entity.User, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE username ILIKE $1
		ORDER BY username
		LIMIT $2
	`, "%"+q+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]entity.User, 0, limit)
	for rows.Next() {
		var u entity.User
		if err := scanUser(rows, &u); err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

// ToggleFollow flips actorID's membership in targetID's follower set.
// Delete-then-insert inside one transaction keeps the toggle a single
// read-modify-write against the edge table.
func (r *UserRepository) ToggleFollow(ctx context.Context, actorID, targetID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, targetID).Scan(&exists)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, repository.ErrNotFound
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	res, err := tx.Exec(ctx, `
		DELETE FROM followers WHERE followee_id = $1 AND follower_id = $2
	`, targetID, actorID)
	if err != nil {
		return false, err
	}
	following := false
	if res.RowsAffected() == 0 {
		if _, err := tx.Exec(ctx, `
			INSERT INTO followers (followee_id, follower_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, targetID, actorID); err != nil {
			return false, err
		}
		following = true
	}
	return following, tx.Commit(ctx)
}

func (r *UserRepository) IsFollowing(ctx context.Context, actorID, targetID string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM followers WHERE followee_id = $1 AND follower_id = $2)
	`, targetID, actorID).Scan(&ok)
	return ok, err
}

func (r *UserRepository) Followers(ctx context.Context, userID string) ([]entity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+prefixed(userColumns, "u.")+`
		FROM followers f
		JOIN users u ON u.id = f.follower_id
		WHERE f.followee_id = $1
		ORDER BY f.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]entity.User, 0)
	for rows.Next() {
		var u entity.User
		if err := scanUser(rows, &u); err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

func pageBounds(page, limit int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}
	return limit, (page - 1) * limit
}

func prefixed(columns, prefix string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = prefix + p
	}
	return strings.Join(parts, ", ")
}

var _ repository.UserRepository = (*UserRepository)(nil)
