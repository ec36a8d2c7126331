package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/bloghive/bloghive-api/internal/application"
	"github.com/bloghive/bloghive-api/internal/domain/repository"
	"github.com/bloghive/bloghive-api/internal/interface/middleware"
	"github.com/bloghive/bloghive-api/pkg/response"
	"github.com/bloghive/bloghive-api/pkg/validation"
)

type UserHandler struct {
	Svc    *application.UserService
	Blogs  *application.BlogService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, blogs *application.BlogService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Blogs: blogs, Logger: logger}
}

func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, NewUserView(u), "profile", nil)
}

type updateProfileRequest struct {
	Bio *string `json:"bio"`
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), middleware.Actor(c), application.UpdateProfileInput{Bio: req.Bio})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, NewUserView(u), "profile updated", nil)
}

// UploadAvatar accepts a multipart image and stores it in object storage.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "avatar file is required", nil)
		return
	}
	f, err := file.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "cannot read avatar file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	url, err := h.Svc.UploadAvatar(c.Request.Context(), middleware.Actor(c), f,
		file.Filename, file.Header.Get("Content-Type"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"avatar_url": url}, "avatar updated", nil)
}

type updatePasswordRequest struct {
	Password string `json:"password" binding:"required,pwd"`
}

func (h *UserHandler) UpdatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.UpdatePassword(c.Request.Context(), middleware.Actor(c), req.Password); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": true}, "password updated", nil)
}

func (h *UserHandler) DeleteMe(c *gin.Context) {
	if err := h.Svc.DeleteAccount(c.Request.Context(), middleware.Actor(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, "account deleted", nil)
}

func (h *UserHandler) MyBlogs(c *gin.Context) {
	h.blogsByAuthor(c, c.GetString(middleware.CtxUserIDKey))
}

func (h *UserHandler) UserBlogs(c *gin.Context) {
	h.blogsByAuthor(c, c.Param("id"))
}

func (h *UserHandler) blogsByAuthor(c *gin.Context, authorID string) {
	page, limit := pageParams(c)
	items, total, err := h.Blogs.List(c.Request.Context(), repository.BlogListFilter{
		AuthorID: authorID, Page: page, Limit: limit,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, response.NewPagedList(NewBlogViews(items), total, page, limit), "blogs", nil)
}

func (h *UserHandler) MyFollowers(c *gin.Context) {
	h.followersOf(c, c.GetString(middleware.CtxUserIDKey))
}

func (h *UserHandler) UserFollowers(c *gin.Context) {
	h.followersOf(c, c.Param("id"))
}

func (h *UserHandler) followersOf(c *gin.Context, userID string) {
	users, err := h.Svc.Followers(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, NewUserViews(users), "followers", nil)
}

// Search matches usernames by case-insensitive substring.
func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "query is required", nil)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	users, err := h.Svc.Search(c.Request.Context(), q, limit)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, NewUserViews(users), "users", nil)
}

func (h *UserHandler) PublicProfile(c *gin.Context) {
	p, err := h.Svc.PublicProfile(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"user":         NewUserView(p.User),
		"is_following": p.IsFollowing,
		"followers":    p.Followers,
	}, "profile", nil)
}

// ToggleFollow follows the target if not yet followed, unfollows otherwise.
func (h *UserHandler) ToggleFollow(c *gin.Context) {
	following, err := h.Svc.ToggleFollow(c.Request.Context(), middleware.Actor(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	msg := "unfollowed"
	if following {
		msg = "followed"
	}
	response.Success(c, http.StatusOK, gin.H{"following": following}, msg, nil)
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return page, limit
}
