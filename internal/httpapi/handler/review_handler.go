package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/middleware"
	"reviewhub/internal/httpapi/service"
)

type ReviewHandler struct {
	svc service.ReviewService
}

func NewReviewHandler(svc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

// RegisterRoutes expects a group already nested under /titles/:title_id.
func (h *ReviewHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:review_id", h.Get)
	rg.POST("", h.Create)
	rg.PATCH("/:review_id", h.Update)
	rg.DELETE("/:review_id", h.Delete)
}

func (h *ReviewHandler) List(c *gin.Context) {
	tid, ok := titleID(c)
	if !ok {
		return
	}
	list, err := h.svc.ListByTitle(c.Request.Context(), tid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ReviewHandler) Get(c *gin.Context) {
	tid, rid, ok := reviewPath(c)
	if !ok {
		return
	}
	review, err := h.svc.Get(c.Request.Context(), tid, rid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) Create(c *gin.Context) {
	tid, ok := titleID(c)
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	review, err := h.svc.Create(c.Request.Context(), middleware.GetActor(c), tid, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) Update(c *gin.Context) {
	tid, rid, ok := reviewPath(c)
	if !ok {
		return
	}
	var req dto.ReviewUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	review, err := h.svc.Update(c.Request.Context(), middleware.GetActor(c), tid, rid, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	tid, rid, ok := reviewPath(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.GetActor(c), tid, rid); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func reviewPath(c *gin.Context) (titleID, reviewID int64, ok bool) {
	tid, err := strconv.ParseInt(c.Param("title_id"), 10, 64)
	if err != nil || tid <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid title id"})
		return 0, 0, false
	}
	rid, err := strconv.ParseInt(c.Param("review_id"), 10, 64)
	if err != nil || rid <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid review id"})
		return 0, 0, false
	}
	return tid, rid, true
}
