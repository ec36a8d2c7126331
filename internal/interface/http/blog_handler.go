package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/bloghive/bloghive-api/internal/application"
	"github.com/bloghive/bloghive-api/internal/domain/repository"
	"github.com/bloghive/bloghive-api/internal/interface/middleware"
	"github.com/bloghive/bloghive-api/pkg/response"
	"github.com/bloghive/bloghive-api/pkg/validation"
)

type BlogHandler struct {
	Svc    *application.BlogService
	Logger *logrus.Logger
}

func NewBlogHandler(svc *application.BlogService, logger *logrus.Logger) *BlogHandler {
	return &BlogHandler{Svc: svc, Logger: logger}
}

type blogRequest struct {
	Title   string `json:"title" binding:"required,max=200"`
	Content string `json:"content" binding:"required"`
}

func (h *BlogHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	items, total, err := h.Svc.List(c.Request.Context(), repository.BlogListFilter{
		Query: c.Query("q"), Page: page, Limit: limit,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, response.NewPagedList(NewBlogViews(items), total, page, limit), "blogs", nil)
}

func (h *BlogHandler) Get(c *gin.Context) {
	b, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, NewBlogView(b), "blog", nil)
}

func (h *BlogHandler) Create(c *gin.Context) {
	var req blogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	b, err := h.Svc.Create(c.Request.Context(), middleware.Actor(c), application.BlogInput{
		Title: req.Title, Content: req.Content,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, NewBlogView(b), "blog created", nil)
}

func (h *BlogHandler) Update(c *gin.Context) {
	var req blogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	b, err := h.Svc.Update(c.Request.Context(), middleware.Actor(c), c.Param("id"), application.BlogInput{
		Title: req.Title, Content: req.Content,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, NewBlogView(b), "blog updated", nil)
}

func (h *BlogHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.Actor(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, "blog deleted", nil)
}

type commentRequest struct {
	Body string `json:"body" binding:"required,max=2000"`
}

func (h *BlogHandler) AddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	comment, err := h.Svc.AddComment(c.Request.Context(), middleware.Actor(c), c.Param("id"), req.Body)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, NewCommentView(comment), "comment added", nil)
}

func (h *BlogHandler) DeleteComment(c *gin.Context) {
	err := h.Svc.DeleteComment(c.Request.Context(), middleware.Actor(c), c.Param("id"), c.Param("commentId"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, "comment deleted", nil)
}

// ToggleLike likes the blog if not yet liked, unlikes otherwise.
func (h *BlogHandler) ToggleLike(c *gin.Context) {
	liked, count, err := h.Svc.ToggleLike(c.Request.Context(), middleware.Actor(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	msg := "unliked"
	if liked {
		msg = "liked"
	}
	response.Success(c, http.StatusOK, gin.H{"liked": liked, "likes": count}, msg, nil)
}
