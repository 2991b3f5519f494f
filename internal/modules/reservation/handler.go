package reservation

import (
	"net/http"
	"strconv"

	"tierraalta/internal/middleware"
	"tierraalta/internal/pkg/apperror"
	"tierraalta/internal/pkg/dateutil"
	"tierraalta/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the availability search on public and the rest on
// protected. limit guards reservation creation and may be nil.
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup, limit gin.HandlerFunc) {
	public.GET("/rooms/availability", h.SearchAvailability)

	create := []gin.HandlerFunc{h.Create}
	if limit != nil {
		create = append([]gin.HandlerFunc{limit}, create...)
	}
	protected.POST("/reservations", create...)
	protected.GET("/reservations/my", h.ListMine)
	protected.GET("/reservations/export", middleware.StaffOnly(), h.Export)
	protected.GET("/reservations/:id", h.Get)
	protected.PATCH("/reservations/:id", h.UpdateStatus)
	protected.DELETE("/reservations/:id", h.Cancel)
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	in, err := req.Input(actor.ID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	v, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"reservation": v,
		"nights":      v.Nights,
	})
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	actor, _ := middleware.PrincipalFrom(c)
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "status is required")
		return
	}

	change, err := h.service.UpdateStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, change)
}

func (h *Handler) Cancel(c *gin.Context) {
	actor, _ := middleware.PrincipalFrom(c)
	id, ok := pathID(c)
	if !ok {
		return
	}

	change, err := h.service.Cancel(c.Request.Context(), actor, id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, change)
}

func (h *Handler) Get(c *gin.Context) {
	actor, _ := middleware.PrincipalFrom(c)
	id, ok := pathID(c)
	if !ok {
		return
	}

	v, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservation": v})
}

func (h *Handler) ListMine(c *gin.Context) {
	actor, _ := middleware.PrincipalFrom(c)

	list, err := h.service.ListMine(c.Request.Context(), actor.ID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservations": list})
}

func (h *Handler) SearchAvailability(c *gin.Context) {
	var q AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "check_in and check_out are required")
		return
	}
	in, err := q.Input()
	if err != nil {
		response.FromError(c, err)
		return
	}

	rooms, err := h.service.SearchAvailability(c.Request.Context(), in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rooms": rooms})
}

func (h *Handler) Export(c *gin.Context) {
	var q ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "from and to are required")
		return
	}
	from, err := dateutil.ParseLocalDate(q.From)
	if err != nil {
		response.FromError(c, apperror.Validation("from: %v", err))
		return
	}
	to, err := dateutil.ParseLocalDate(q.To)
	if err != nil {
		response.FromError(c, apperror.Validation("to: %v", err))
		return
	}

	list, err := h.service.ListForExport(c.Request.Context(), from, to)
	if err != nil {
		response.FromError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+ExportFileName(from, to)+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Status(http.StatusOK)
	if err := WriteWorkbook(c.Writer, from, to, list); err != nil {
		_ = c.Error(err)
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid id")
		return 0, false
	}
	return id, true
}
