package booking

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"studiobooking/internal/database"
	"studiobooking/internal/domain"
	"studiobooking/internal/middleware"
	"studiobooking/internal/pkg/response"
	"studiobooking/internal/policy"
	"studiobooking/internal/repository"
	"studiobooking/internal/scheduling"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes expects a group behind JWTAuth.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	bookings := protected.Group("/bookings")
	{
		bookings.GET("", h.ListBookings)
		bookings.POST("", h.CreateBooking)
		bookings.GET("/:id", h.GetBooking)
		bookings.PUT("/:id", h.UpdateBooking)
		bookings.DELETE("/:id", h.DeleteBooking)
	}

	dashboard := protected.Group("/dashboard")
	{
		dashboard.GET("/tabs", h.GetTabs)
		dashboard.GET("/summary", h.GetSummary)
	}
}

// CreateBooking handles POST /bookings.
func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	in, err := req.toInput()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), middleware.Actor(c), in)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": toBookingResponse(b)})
}

// ListBookings handles GET /bookings?tab=&studio_id=&client_id=&status=&start_date=&end_date=&limit=
func (h *Handler) ListBookings(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		handleError(c, err)
		return
	}

	list, err := h.service.ListBookings(c.Request.Context(), middleware.Actor(c), f, c.Query("tab"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": toBookingResponses(list)})
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": toBookingResponse(b)})
}

// UpdateBooking handles PUT /bookings/:id. Absent fields are left unchanged.
func (h *Handler) UpdateBooking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.UpdateBooking(c.Request.Context(), middleware.Actor(c), id, req.toChanges())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": toBookingResponse(b)})
}

func (h *Handler) DeleteBooking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteBooking(c.Request.Context(), middleware.Actor(c), id); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Booking deleted"})
}

/* ---------- DASHBOARD ---------- */

func (h *Handler) GetTabs(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"tabs": h.service.Tabs(middleware.Actor(c))})
}

func (h *Handler) GetSummary(c *gin.Context) {
	sum, err := h.service.Summary(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, sum)
}

/* ---------- HELPERS ---------- */

func (r CreateBookingRequest) toInput() (CreateInput, error) {
	var in CreateInput

	studioID, err := uuid.Parse(r.StudioID)
	if err != nil {
		return in, errors.New("invalid studio_id")
	}
	in.StudioID = studioID

	if r.ClientID != "" {
		clientID, err := uuid.Parse(r.ClientID)
		if err != nil {
			return in, errors.New("invalid client_id")
		}
		in.ClientID = clientID
	}

	for _, raw := range r.StaffIDs {
		staffID, err := uuid.Parse(raw)
		if err != nil {
			return in, fmt.Errorf("invalid staff id %q", raw)
		}
		in.Staff = append(in.Staff, scheduling.StaffRequest{StaffID: staffID})
	}
	for _, s := range r.Staff {
		staffID, err := uuid.Parse(s.StaffID)
		if err != nil {
			return in, fmt.Errorf("invalid staff id %q", s.StaffID)
		}
		in.Staff = append(in.Staff, scheduling.StaffRequest{StaffID: staffID, Role: s.Role})
	}

	in.Start = r.StartTime
	in.End = r.EndTime
	in.Notes = r.Notes
	return in, nil
}

func (r UpdateBookingRequest) toChanges() scheduling.Changes {
	ch := scheduling.Changes{Start: r.StartTime, End: r.EndTime, Notes: r.Notes}
	if r.Status != nil {
		st := domain.BookingStatus(strings.ToUpper(strings.TrimSpace(*r.Status)))
		ch.Status = &st
	}
	return ch
}

func parseFilter(c *gin.Context) (domain.BookingFilter, error) {
	var f domain.BookingFilter

	parseUUID := func(key string) (*uuid.UUID, error) {
		raw := c.Query(key)
		if raw == "" {
			return nil, nil
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidQuery, key)
		}
		return &id, nil
	}
	parseTime := func(key string) (*time.Time, error) {
		raw := c.Query(key)
		if raw == "" {
			return nil, nil
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			if t, err = time.Parse(time.DateOnly, raw); err != nil {
				return nil, fmt.Errorf("%w: %s must be a date or RFC 3339 timestamp", ErrInvalidQuery, key)
			}
			// A bare end date includes the whole day.
			if key == "end_date" {
				t = t.AddDate(0, 0, 1)
			}
		}
		t = t.UTC()
		return &t, nil
	}

	var err error
	if f.StudioID, err = parseUUID("studio_id"); err != nil {
		return f, err
	}
	if f.ClientID, err = parseUUID("client_id"); err != nil {
		return f, err
	}
	if f.StartFrom, err = parseTime("start_date"); err != nil {
		return f, err
	}
	if f.EndTo, err = parseTime("end_date"); err != nil {
		return f, err
	}

	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			st := domain.BookingStatus(strings.ToUpper(strings.TrimSpace(s)))
			if !st.Valid() {
				return f, fmt.Errorf("%w: %q", scheduling.ErrInvalidStatus, s)
			}
			f.Statuses = append(f.Statuses, st)
		}
	}

	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			return f, fmt.Errorf("%w: limit must be 1..500", ErrInvalidQuery)
		}
		f.Limit = n
	}
	return f, nil
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return uuid.Nil, false
	}
	return id, true
}

func handleError(c *gin.Context, err error) {
	var conflict *scheduling.ConflictError
	switch {
	case errors.As(err, &conflict):
		response.ErrorWithDetails(c, http.StatusConflict, "BOOKING_CONFLICT", "The studio is already booked for this time", gin.H{
			"conflicting_booking_id": conflict.BookingID.String(),
			"start_time":             conflict.Interval.Start,
			"end_time":               conflict.Interval.End,
		})
	case errors.Is(err, scheduling.ErrSchedulingConflict):
		response.Error(c, http.StatusConflict, "BOOKING_CONFLICT", "The studio is already booked for this time")
	case errors.Is(err, scheduling.ErrInvalidInterval):
		response.Error(c, http.StatusBadRequest, "INVALID_INTERVAL", "Start time must be before end time")
	case errors.Is(err, scheduling.ErrInvalidStatus):
		response.Error(c, http.StatusBadRequest, "INVALID_STATUS", "Status must be one of PENDING, CONFIRMED, COMPLETED, CANCELLED")
	case errors.Is(err, ErrInvalidStaff):
		response.Error(c, http.StatusBadRequest, "INVALID_STAFF", "Staff member not found")
	case errors.Is(err, ErrInvalidClient):
		response.Error(c, http.StatusBadRequest, "INVALID_CLIENT", "Client not found")
	case errors.Is(err, ErrInvalidQuery):
		response.Error(c, http.StatusBadRequest, "INVALID_QUERY", err.Error())
	case errors.Is(err, scheduling.ErrStudioInactive):
		response.Error(c, http.StatusUnprocessableEntity, "STUDIO_INACTIVE", "Studio is not accepting bookings")
	case errors.Is(err, repository.ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.Is(err, policy.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	case errors.Is(err, policy.ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You are not allowed to do this")
	case errors.Is(err, database.ErrSerialization):
		c.Header("Retry-After", "1")
		response.Error(c, http.StatusServiceUnavailable, "BUSY", "Too many concurrent changes, try again")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
