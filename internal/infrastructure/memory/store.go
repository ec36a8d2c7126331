// Package memory provides an in-memory store implementing the domain
// repositories. It backs unit tests and keeps the same semantics as the
// postgres implementations, including toggle and cascade behavior.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bloghive/bloghive-api/internal/domain/entity"
	"github.com/bloghive/bloghive-api/internal/domain/repository"
)

type resetToken struct {
	userID    string
	expiresAt time.Time
}

type Store struct {
	mu        sync.Mutex
	users     map[string]*entity.User
	blogs     map[string]*entity.Blog
	comments  map[string]*entity.Comment // keyed by comment id
	likes     map[string]map[string]bool // blog id -> user id set
	followers map[string]map[string]bool // followee id -> follower id set
	tokens    map[string]resetToken
}

func NewStore() *Store {
	return &Store{
		users:     map[string]*entity.User{},
		blogs:     map[string]*entity.Blog{},
		comments:  map[string]*entity.Comment{},
		likes:     map[string]map[string]bool{},
		followers: map[string]map[string]bool{},
		tokens:    map[string]resetToken{},
	}
}

func copyUser(u *entity.User) *entity.User {
	c := *u
	return &c
}

// --- UserRepository ---

func (s *Store) Create(_ context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = copyUser(u)
	return nil
}

func (s *Store) GetByID(_ context.Context, id string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyUser(u), nil
}

func (s *Store) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) Update(_ context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Username = u.Username
	cur.Email = u.Email
	cur.Bio = u.Bio
	cur.AvatarURL = u.AvatarURL
	cur.UpdatedAt = time.Now()
	return nil
}

func (s *Store) UpdatePassword(_ context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Password = hash
	u.UpdatedAt = time.Now()
	return nil
}

func (s *Store) SetRole(_ context.Context, id string, role entity.Role) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	return copyUser(u), nil
}

func (s *Store) ToggleBlock(_ context.Context, id string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.IsBlocked = !u.IsBlocked
	u.UpdatedAt = time.Now()
	return copyUser(u), nil
}

func (s *Store) IsBlocked(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	return u.IsBlocked, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.users, id)
	for blogID, b := range s.blogs {
		if b.AuthorID == id {
			s.removeBlogLocked(blogID)
		}
	}
	delete(s.followers, id)
	for _, set := range s.followers {
		delete(set, id)
	}
	return nil
}

func (s *Store) removeBlogLocked(blogID string) {
	delete(s.blogs, blogID)
	delete(s.likes, blogID)
	for cid, c := range s.comments {
		if c.BlogID == blogID {
			delete(s.comments, cid)
		}
	}
}

func (s *Store) List(_ context.Context, f repository.UserListFilter) ([]entity.User, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := make([]entity.User, 0, len(s.users))
	q := strings.ToLower(f.Query)
	for _, u := range s.users {
		if q != "" && !strings.Contains(strings.ToLower(u.Username), q) &&
			!strings.Contains(strings.ToLower(u.Email), q) {
			continue
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.IsBlocked != nil && u.IsBlocked != *f.IsBlocked {
			continue
		}
		matched = append(matched, *u)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := len(matched)
	return paginate(matched, f.Page, f.Limit), total, nil
}

func (s *Store) SearchByUsername(_ context.Context, q string, limit int) ([]entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	lq := strings.ToLower(q)
	out := make([]entity.User, 0, limit)
	for _, u := range s.users {
		if strings.Contains(strings.ToLower(u.Username), lq) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ToggleFollow(_ context.Context, actorID, targetID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[targetID]; !ok {
		return false, repository.ErrNotFound
	}
	set := s.followers[targetID]
	if set == nil {
		set = map[string]bool{}
		s.followers[targetID] = set
	}
	if set[actorID] {
		delete(set, actorID)
		return false, nil
	}
	set[actorID] = true
	return true, nil
}

func (s *Store) IsFollowing(_ context.Context, actorID, targetID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.followers[targetID][actorID], nil
}

func (s *Store) Followers(_ context.Context, userID string) ([]entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.User, 0, len(s.followers[userID]))
	for id := range s.followers[userID] {
		if u, ok := s.users[id]; ok {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// --- BlogRepository ---

func (s *Store) CreateBlog(_ context.Context, b *entity.Blog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = uuid.NewString()
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	if u, ok := s.users[b.AuthorID]; ok {
		b.AuthorName = u.Username
	}
	c := *b
	s.blogs[b.ID] = &c
	return nil
}

func (s *Store) GetBlogByID(_ context.Context, id string) (*entity.Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blogs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.assembleBlogLocked(b), nil
}

func (s *Store) assembleBlogLocked(b *entity.Blog) *entity.Blog {
	out := *b
	out.Comments = nil
	out.Likes = nil
	for _, c := range s.comments {
		if c.BlogID == b.ID {
			cc := *c
			if u, ok := s.users[c.UserID]; ok {
				cc.Username = u.Username
			}
			out.Comments = append(out.Comments, cc)
		}
	}
	sort.Slice(out.Comments, func(i, j int) bool {
		return out.Comments[i].CreatedAt.Before(out.Comments[j].CreatedAt)
	})
	for uid := range s.likes[b.ID] {
		out.Likes = append(out.Likes, uid)
	}
	sort.Strings(out.Likes)
	return &out
}

func (s *Store) UpdateBlog(_ context.Context, b *entity.Blog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.blogs[b.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Title = b.Title
	cur.Content = b.Content
	cur.UpdatedAt = time.Now()
	return nil
}

func (s *Store) DeleteBlog(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blogs[id]; !ok {
		return repository.ErrNotFound
	}
	s.removeBlogLocked(id)
	return nil
}

func (s *Store) ListBlogs(_ context.Context, f repository.BlogListFilter) ([]entity.Blog, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := make([]entity.Blog, 0, len(s.blogs))
	q := strings.ToLower(f.Query)
	for _, b := range s.blogs {
		if q != "" && !strings.Contains(strings.ToLower(b.Title), q) {
			continue
		}
		if f.AuthorID != "" && b.AuthorID != f.AuthorID {
			continue
		}
		matched = append(matched, *s.assembleBlogLocked(b))
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := len(matched)
	return paginate(matched, f.Page, f.Limit), total, nil
}

func (s *Store) AddComment(_ context.Context, c *entity.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blogs[c.BlogID]; !ok {
		return repository.ErrNotFound
	}
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	if u, ok := s.users[c.UserID]; ok {
		c.Username = u.Username
	}
	cc := *c
	s.comments[c.ID] = &cc
	return nil
}

func (s *Store) GetComment(_ context.Context, blogID, commentID string) (*entity.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[commentID]
	if !ok || c.BlogID != blogID {
		return nil, repository.ErrNotFound
	}
	cc := *c
	return &cc, nil
}

func (s *Store) DeleteComment(_ context.Context, blogID, commentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[commentID]
	if !ok || c.BlogID != blogID {
		return repository.ErrNotFound
	}
	delete(s.comments, commentID)
	return nil
}

func (s *Store) ToggleLike(_ context.Context, blogID, userID string) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blogs[blogID]; !ok {
		return false, 0, repository.ErrNotFound
	}
	set := s.likes[blogID]
	if set == nil {
		set = map[string]bool{}
		s.likes[blogID] = set
	}
	liked := !set[userID]
	if liked {
		set[userID] = true
	} else {
		delete(set, userID)
	}
	return liked, len(set), nil
}

// --- TokenStore ---

func (s *Store) SaveResetToken(_ context.Context, token, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = resetToken{userID: userID, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *Store) ConsumeResetToken(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[token]
	if !ok || time.Now().After(t.expiresAt) {
		return "", repository.ErrNotFound
	}
	delete(s.tokens, token)
	return t.userID, nil
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

var (
	_ repository.UserRepository = (*Store)(nil)
	_ repository.TokenStore     = (*Store)(nil)
)

// BlogStore adapts Store to the BlogRepository interface; the method set is
// prefixed on Store to avoid clashing with user methods of the same shape.
type BlogStore struct{ *Store }

func (s *Store) Blogs() BlogStore { return BlogStore{s} }

func (b BlogStore) Create(ctx context.Context, e *entity.Blog) error { return b.CreateBlog(ctx, e) }
func (b BlogStore) GetByID(ctx context.Context, id string) (*entity.Blog, error) {
	return b.GetBlogByID(ctx, id)
}
func (b BlogStore) Update(ctx context.Context, e *entity.Blog) error { return b.UpdateBlog(ctx, e) }
func (b BlogStore) Delete(ctx context.Context, id string) error      { return b.DeleteBlog(ctx, id) }
func (b BlogStore) List(ctx context.Context, f repository.BlogListFilter) ([]entity.Blog, int, error) {
	return b.ListBlogs(ctx, f)
}

var _ repository.BlogRepository = BlogStore{}
