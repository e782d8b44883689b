package booking

import (
	"errors"
	"net/http"
	"strconv"

	"rentview/internal/domain"
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
	g := rg.Group("/appointments")

	g.POST("/create", h.CreateBooking)
	g.PUT("/status/:id", h.UpdateStatus)
	g.DELETE("/delete/:id", h.DeleteBooking)
	g.GET("/getById/:id", h.GetByID)
	g.GET("/user/:userId", h.ListByUser)

	admin := g.Group("/")
	admin.Use(middleware.AdminOnly())
	{
		admin.GET("/getAll", h.ListAll)
		admin.GET("/status", h.ListByStatus)
	}
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Request failed validation", errs)
		return
	}

	b, err := h.service.RequestBooking(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		h.writeError(c, err, "Failed to create booking")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": toBookingResponse(b)})
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	status, ok := domain.ParseBookingStatus(c.Query("status"))
	if !ok {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown status value")
		return
	}

	b, err := h.service.UpdateStatus(
		c.Request.Context(),
		id,
		c.GetInt64("user_id"),
		c.GetString("role"),
		status,
		c.Query("address"),
	)
	if err != nil {
		h.writeError(c, err, "Failed to update booking status")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": toBookingResponse(b)})
}

// DeleteBooking is the hard-cancel path the client's delete button hits. The
// booking row survives with a terminal status; only the slot is released.
func (h *Handler) DeleteBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	b, err := h.service.Cancel(
		c.Request.Context(),
		id,
		c.GetInt64("user_id"),
		c.GetString("role"),
		c.Query("reason"),
	)
	if err != nil {
		h.writeError(c, err, "Failed to cancel booking")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": toBookingResponse(b)})
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), id, c.GetInt64("user_id"), c.GetString("role"))
	if err != nil {
		h.writeError(c, err, "Failed to fetch booking")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": toBookingResponse(b)})
}

func (h *Handler) ListAll(c *gin.Context) {
	bs, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list bookings")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": toBookingResponses(bs)})
}

func (h *Handler) ListByUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	bs, err := h.service.ListByUser(c.Request.Context(), userID, c.GetInt64("user_id"), c.GetString("role"))
	if err != nil {
		h.writeError(c, err, "Failed to list bookings")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": toBookingResponses(bs)})
}

func (h *Handler) ListByStatus(c *gin.Context) {
	status, ok := domain.ParseBookingStatus(c.Query("status"))
	if !ok {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown status value")
		return
	}

	bs, err := h.service.ListByStatus(c.Request.Context(), status)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list bookings")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": toBookingResponses(bs)})
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Request failed validation")
	case errors.Is(err, ErrSlotUnavailable):
		response.Error(c, http.StatusConflict, "SLOT_UNAVAILABLE", "Slot was taken; refresh the slot list and pick another")
	case errors.Is(err, ErrIllegalTransition):
		response.Error(c, http.StatusConflict, "ILLEGAL_TRANSITION", "Requested status change is not allowed")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You don't have access to this booking")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking or slot not found")
	case errors.Is(err, ErrStorageBusy):
		response.Error(c, http.StatusServiceUnavailable, "STORAGE_BUSY", "Storage is busy, try again")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return 0, false
	}
	return id, true
}
