package hotelservice

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

// RegisterRoutes mounts the catalog reads on public and everything else on
// protected. limit guards booking creation and may be nil.
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup, limit gin.HandlerFunc) {
	public.GET("/services", h.ListServices)
	public.GET("/services/:id", h.GetService)
	public.GET("/services/:id/slots", h.ListSlots)

	book := []gin.HandlerFunc{h.Book}
	if limit != nil {
		book = append([]gin.HandlerFunc{limit}, book...)
	}
	protected.POST("/services/book", book...)
	protected.GET("/service-bookings/my", h.ListMine)
	protected.DELETE("/service-bookings/:id", h.CancelBooking)

	staff := protected.Group("", middleware.StaffOnly())
	{
		staff.POST("/services", h.CreateService)
		staff.PATCH("/services/:id", h.UpdateService)
		staff.DELETE("/services/:id", h.DeleteService)
		staff.POST("/services/:id/generate-slots", h.GenerateSlots)
		staff.PATCH("/slots/:id", h.UpdateSlot)
		staff.DELETE("/slots/:id", h.DeleteSlot)
	}
}

func (h *Handler) ListServices(c *gin.Context) {
	list, err := h.service.ListServices(c.Request.Context(), c.Query("type"), true)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"services": list})
}

func (h *Handler) GetService(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	svc, err := h.service.GetService(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"service": svc})
}

func (h *Handler) CreateService(c *gin.Context) {
	actor, _ := middleware.PrincipalFrom(c)
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	svc, err := h.service.CreateService(c.Request.Context(), actor, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"service": svc})
}

func (h *Handler) UpdateService(c *gin.Context) {
	actor, _ := middleware.PrincipalFrom(c)
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	svc, err := h.service.UpdateService(c.Request.Context(), actor, id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"service": svc})
}

func (h *Handler) DeleteService(c *gin.Context) {
	actor, _ := middleware.PrincipalFrom(c)
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteService(c.Request.Context(), actor, id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) GenerateSlots(c *gin.Context) {
	actor, _ := middleware.PrincipalFrom(c)
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req GenerateSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "start_date and end_date are required")
		return
	}
	start, err := dateutil.ParseLocalDate(req.StartDate)
	if err != nil {
		response.FromError(c, apperror.Validation("start_date: %v", err))
		return
	}
	end, err := dateutil.ParseLocalDate(req.EndDate)
	if err != nil {
		response.FromError(c, apperror.Validation("end_date: %v", err))
		return
	}

	count, err := h.service.GenerateSlots(c.Request.Context(), actor, id, start, end)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"count": count})
}

func (h *Handler) ListSlots(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var q SlotQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "date is required")
		return
	}
	day, err := dateutil.ParseLocalDate(q.Date)
	if err != nil {
		response.FromError(c, apperror.Validation("date: %v", err))
		return
	}

	slots, err := h.service.ListSlots(c.Request.Context(), id, day)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"slots": slots})
}

func (h *Handler) UpdateSlot(c *gin.Context) {
	actor, _ := middleware.PrincipalFrom(c)
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	slot, err := h.service.UpdateSlot(c.Request.Context(), actor, id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"slot": slot})
}

func (h *Handler) DeleteSlot(c *gin.Context) {
	actor, _ := middleware.PrincipalFrom(c)
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteSlot(c.Request.Context(), actor, id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) Book(c *gin.Context) {
	actor, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	in, err := req.Input()
	if err != nil {
		response.FromError(c, err)
		return
	}

	result, err := h.service.Book(c.Request.Context(), actor, in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

func (h *Handler) CancelBooking(c *gin.Context) {
	actor, _ := middleware.PrincipalFrom(c)
	id, ok := pathID(c)
	if !ok {
		return
	}
	booking, err := h.service.CancelBooking(c.Request.Context(), actor, id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": booking})
}

func (h *Handler) ListMine(c *gin.Context) {
	actor, _ := middleware.PrincipalFrom(c)
	list, err := h.service.ListMine(c.Request.Context(), actor.ID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": list})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid id")
		return 0, false
	}
	return id, true
}
