package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/middleware"
	"reviewhub/internal/httpapi/service"
)

type CommentHandler struct {
	svc service.CommentService
}

func NewCommentHandler(svc service.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// RegisterRoutes expects a group nested under
// /titles/:title_id/reviews/:review_id.
func (h *CommentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:comment_id", h.Get)
	rg.POST("", h.Create)
	rg.PATCH("/:comment_id", h.Update)
	rg.DELETE("/:comment_id", h.Delete)
}

func (h *CommentHandler) List(c *gin.Context) {
	tid, rid, ok := reviewPath(c)
	if !ok {
		return
	}
	list, err := h.svc.ListByReview(c.Request.Context(), tid, rid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CommentHandler) Get(c *gin.Context) {
	tid, rid, cid, ok := commentPath(c)
	if !ok {
		return
	}
	comment, err := h.svc.Get(c.Request.Context(), tid, rid, cid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Create(c *gin.Context) {
	tid, rid, ok := reviewPath(c)
	if !ok {
		return
	}
	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	comment, err := h.svc.Create(c.Request.Context(), middleware.GetActor(c), tid, rid, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *CommentHandler) Update(c *gin.Context) {
	tid, rid, cid, ok := commentPath(c)
	if !ok {
		return
	}
	var req dto.CommentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	comment, err := h.svc.Update(c.Request.Context(), middleware.GetActor(c), tid, rid, cid, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	tid, rid, cid, ok := commentPath(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.GetActor(c), tid, rid, cid); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func commentPath(c *gin.Context) (titleID, reviewID, commentID int64, ok bool) {
	tid, rid, ok := reviewPath(c)
	if !ok {
		return 0, 0, 0, false
	}
	cid, err := strconv.ParseInt(c.Param("comment_id"), 10, 64)
	if err != nil || cid <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid comment id"})
		return 0, 0, 0, false
	}
	return tid, rid, cid, true
}
