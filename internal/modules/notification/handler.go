package notification

import (
	"net/http"
	"strconv"

	"tierraalta/internal/middleware"
	"tierraalta/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// ListQuery bounds the feed page; zero means the service default.
type ListQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the guest feed. protected must already carry JWTAuth.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	g := protected.Group("/notifications")
	g.GET("", h.List)
	g.PATCH("/read-all", h.MarkAllAsRead)
	g.PATCH("/:id/read", h.MarkAsRead)
}

func (h *Handler) List(c *gin.Context) {
	guest, _ := middleware.PrincipalFrom(c)
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be a positive integer")
		return
	}

	list, unread, err := h.service.GetUserNotifications(c.Request.Context(), guest.ID, q.Limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"notifications": list,
		"unread_count":  unread,
	})
}

func (h *Handler) MarkAsRead(c *gin.Context) {
	guest, _ := middleware.PrincipalFrom(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid id")
		return
	}
	if err := h.service.MarkAsRead(c.Request.Context(), id, guest.ID); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "is_read": true})
}

func (h *Handler) MarkAllAsRead(c *gin.Context) {
	guest, _ := middleware.PrincipalFrom(c)
	n, err := h.service.MarkAllAsRead(c.Request.Context(), guest.ID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": n})
}
