package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bloghive/bloghive-api/internal/application"
	"github.com/bloghive/bloghive-api/internal/domain/entity"
	"github.com/bloghive/bloghive-api/pkg/response"
)

// UserView is the sanitized user representation; the password hash never
// leaves the service boundary.
type UserView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsBlocked bool      `json:"is_blocked"`
	Bio       string    `json:"bio"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewUserView(u *entity.User) UserView {
	return UserView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		IsBlocked: u.IsBlocked,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func NewUserViews(users []entity.User) []UserView {
	out := make([]UserView, 0, len(users))
	for i := range users {
		out = append(out, NewUserView(&users[i]))
	}
	return out
}

type CommentView struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type BlogView struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Content    string        `json:"content"`
	AuthorID   string        `json:"author_id"`
	AuthorName string        `json:"author_name"`
	Comments   []CommentView `json:"comments"`
	Likes      int           `json:"likes"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func NewCommentView(c *entity.Comment) CommentView {
	return CommentView{ID: c.ID, UserID: c.UserID, Username: c.Username, Body: c.Body, CreatedAt: c.CreatedAt}
}

func NewBlogView(b *entity.Blog) BlogView {
	comments := make([]CommentView, 0, len(b.Comments))
	for i := range b.Comments {
		comments = append(comments, NewCommentView(&b.Comments[i]))
	}
	return BlogView{
		ID:         b.ID,
		Title:      b.Title,
		Content:    b.Content,
		AuthorID:   b.AuthorID,
		AuthorName: b.AuthorName,
		Comments:   comments,
		Likes:      len(b.Likes),
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

func NewBlogViews(blogs []entity.Blog) []BlogView {
	out := make([]BlogView, 0, len(blogs))
	for i := range blogs {
		out = append(out, NewBlogView(&blogs[i]))
	}
	return out
}

// fail translates service errors to the HTTP error taxonomy.
func fail(c *gin.Context, err error) {
	var fe *application.ForbiddenError
	switch {
	case errors.As(err, &fe):
		response.Error[any](c, http.StatusForbidden, fe.Reason, nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error[any](c, http.StatusBadRequest, "invalid credentials", nil)
	case errors.Is(err, application.ErrAccountBlocked):
		response.Error[any](c, http.StatusForbidden, "account is blocked", nil)
	case errors.Is(err, application.ErrEmailTaken):
		response.Error[any](c, http.StatusBadRequest, "email already registered", nil)
	case errors.Is(err, application.ErrSelfAction):
		response.Error[any](c, http.StatusBadRequest, "cannot perform this action on yourself", nil)
	case errors.Is(err, application.ErrInvalidRole):
		response.Error[any](c, http.StatusBadRequest, "invalid role", nil)
	case errors.Is(err, application.ErrInvalidResetToken):
		response.Error[any](c, http.StatusBadRequest, "invalid or expired token", nil)
	case errors.Is(err, application.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
	case errors.Is(err, application.ErrBlogNotFound):
		response.Error[any](c, http.StatusNotFound, "blog not found", nil)
	case errors.Is(err, application.ErrCommentNotFound):
		response.Error[any](c, http.StatusNotFound, "comment not found", nil)
	default:
		response.Error[any](c, http.StatusInternalServerError, "internal error", err.Error())
	}
}
