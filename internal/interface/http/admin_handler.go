package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/bloghive/bloghive-api/internal/application"
	"github.com/bloghive/bloghive-api/internal/domain/entity"
	"github.com/bloghive/bloghive-api/internal/domain/repository"
	"github.com/bloghive/bloghive-api/internal/interface/middleware"
	"github.com/bloghive/bloghive-api/pkg/response"
	"github.com/bloghive/bloghive-api/pkg/validation"
)

type AdminHandler struct {
	Svc    *application.AdminService
	Logger *logrus.Logger
}

func NewAdminHandler(svc *application.AdminService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Svc: svc, Logger: logger}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, limit := pageParams(c)
	f := repository.UserListFilter{
		Query: c.Query("q"),
		Role:  entity.Role(c.Query("role")),
		Page:  page,
		Limit: limit,
	}
	if raw := c.Query("isBlocked"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "isBlocked must be a boolean", nil)
			return
		}
		f.IsBlocked = &v
	}
	users, total, err := h.Svc.ListUsers(c.Request.Context(), middleware.Actor(c), f)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, response.NewPagedList(NewUserViews(users), total, page, limit), "users", nil)
}

type changeRoleRequest struct {
	Role string `json:"role" binding:"required,role"`
}

func (h *AdminHandler) ChangeRole(c *gin.Context) {
	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.ChangeRole(c.Request.Context(), middleware.Actor(c), c.Param("id"), entity.Role(req.Role))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, NewUserView(u), "role updated", nil)
}

// ToggleBlock blocks the user if active, unblocks if already blocked.
func (h *AdminHandler) ToggleBlock(c *gin.Context) {
	u, err := h.Svc.ToggleBlock(c.Request.Context(), middleware.Actor(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	msg := "user unblocked"
	if u.IsBlocked {
		msg = "user blocked"
	}
	response.Success(c, http.StatusOK, NewUserView(u), msg, nil)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.Svc.DeleteUser(c.Request.Context(), middleware.Actor(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, "user deleted", nil)
}

func (h *AdminHandler) ListBlogs(c *gin.Context) {
	page, limit := pageParams(c)
	blogs, total, err := h.Svc.ListBlogs(c.Request.Context(), middleware.Actor(c), repository.BlogListFilter{
		Query:    c.Query("q"),
		AuthorID: c.Query("author"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, response.NewPagedList(NewBlogViews(blogs), total, page, limit), "blogs", nil)
}

func (h *AdminHandler) DeleteBlog(c *gin.Context) {
	if err := h.Svc.DeleteBlog(c.Request.Context(), middleware.Actor(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, "blog deleted", nil)
}

func (h *AdminHandler) DeleteComment(c *gin.Context) {
	err := h.Svc.DeleteComment(c.Request.Context(), middleware.Actor(c), c.Param("id"), c.Param("commentId"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, "comment deleted", nil)
}
