package room

import (
	"net/http"
	"strconv"

	"tierraalta/internal/middleware"
	"tierraalta/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/rooms", h.List)
	public.GET("/rooms/:id", h.Get)

	staff := protected.Group("/rooms", middleware.StaffOnly())
	staff.POST("", h.Create)
	staff.POST("/:id/status", h.ApplyAction)
}

func (h *Handler) List(c *gin.Context) {
	rooms, err := h.service.List(c.Request.Context(), c.Query("type"), c.Query("status"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rooms": rooms})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	room, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"room": room})
}

func (h *Handler) Create(c *gin.Context) {
	actor, _ := middleware.PrincipalFrom(c)

	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	room, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"room": room})
}

func (h *Handler) ApplyAction(c *gin.Context) {
	actor, _ := middleware.PrincipalFrom(c)
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req StatusActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "action is required")
		return
	}
	action, err := ParseAction(req.Action)
	if err != nil {
		response.FromError(c, err)
		return
	}

	result, err := h.service.ApplyAction(c.Request.Context(), actor, id, action)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid id")
		return 0, false
	}
	return id, true
}
