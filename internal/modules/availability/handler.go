package availability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"rentview/internal/middleware"
	"rentview/internal/pkg/response"
	"rentview/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/availableAppointments")

	g.GET("/available", h.AvailableSlots)

	admin := g.Group("/")
	admin.Use(middleware.AdminOnly())
	{
		admin.GET("/unavailable", h.UnavailableSlots)
		admin.GET("/getById/:id", h.GetWindow)
		admin.GET("/getAll", h.ListWindows)
		admin.POST("/create", h.CreateWindow)
		admin.PUT("/update/:id", h.UpdateWindow)
		admin.PATCH("/updateAvailability/:id", h.ToggleActive)
		admin.DELETE("/delete/:id", h.DeleteWindow)
	}
}

func (h *Handler) AvailableSlots(c *gin.Context) {
	slots, err := h.service.AvailableSlots(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list available slots")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"slots": toSlotResponses(slots)})
}

func (h *Handler) UnavailableSlots(c *gin.Context) {
	slots, err := h.service.UnavailableSlots(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list unavailable slots")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"slots": toSlotResponses(slots)})
}

func (h *Handler) CreateWindow(c *gin.Context) {
	var req CreateWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Request failed validation", errs)
		return
	}

	w, err := h.service.CreateWindow(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		h.writeError(c, err, "Failed to create window")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"window": w})
}

func (h *Handler) UpdateWindow(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Request failed validation", errs)
		return
	}

	w, err := h.service.UpdateWindow(c.Request.Context(), id, req)
	if err != nil {
		h.writeError(c, err, "Failed to update window")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"window": w})
}

func (h *Handler) ToggleActive(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	w, err := h.service.ToggleActive(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "Failed to toggle window")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"window": w})
}

func (h *Handler) DeleteWindow(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cascade := c.Query("cascade") == "true"

	if err := h.service.DeleteWindow(c.Request.Context(), id, cascade); err != nil {
		h.writeError(c, err, "Failed to delete window")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) GetWindow(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	w, err := h.service.GetWindow(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "Failed to fetch window")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"window": w})
}

func (h *Handler) ListWindows(c *gin.Context) {
	from, to, ok := rangeParams(c)
	if !ok {
		return
	}

	windows, err := h.service.ListWindows(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list windows")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"windows": windows})
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Start time must be before end time")
	case errors.Is(err, ErrWindowOverlap):
		response.Error(c, http.StatusConflict, "WINDOW_OVERLAP", "Window overlaps an existing window")
	case errors.Is(err, ErrWindowHasReservations):
		response.Error(c, http.StatusConflict, "WINDOW_HAS_RESERVATIONS", "Window has reserved slots; pass cascade=true to cancel them")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Window not found")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid window ID")
		return 0, false
	}
	return id, true
}

func rangeParams(c *gin.Context) (time.Time, time.Time, bool) {
	from := time.Now().AddDate(0, -1, 0)
	to := time.Now().AddDate(0, 3, 0)

	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid from parameter")
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid to parameter")
			return time.Time{}, time.Time{}, false
		}
		to = parsed
	}
	return from, to, true
}
