package catalog

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"studiobooking/internal/pkg/response"
	"studiobooking/internal/repository"
	"studiobooking/internal/scheduling"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(v1 *gin.RouterGroup) {
	studios := v1.Group("/studios")
	{
		studios.GET("", h.GetStudios)
		studios.GET("/:id", h.GetStudio)
		studios.GET("/:id/price-estimate", h.EstimatePrice)
		studios.GET("/:id/availability", h.GetAvailability)
	}
	v1.GET("/equipment", h.GetEquipment)
}

// RegisterAdminRoutes expects a group already restricted to admins.
func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.POST("/studios", h.CreateStudio)
	admin.PUT("/studios/:id", h.UpdateStudio)
	admin.DELETE("/studios/:id", h.DeactivateStudio)

	admin.POST("/equipment", h.CreateEquipment)
	admin.PUT("/equipment/:id", h.UpdateEquipment)
	admin.DELETE("/equipment/:id", h.DeleteEquipment)
}

/* ---------- STUDIO HANDLERS ---------- */

// GetStudios handles GET /studios; ?active=true hides deactivated studios.
func (h *Handler) GetStudios(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.Query("active"))

	studios, err := h.service.ListStudios(c.Request.Context(), activeOnly)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"studios": studios})
}

func (h *Handler) GetStudio(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	studio, err := h.service.GetStudio(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"studio": studio})
}

// EstimatePrice handles GET /studios/:id/price-estimate?start=&end= (RFC 3339).
func (h *Handler) EstimatePrice(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	start, err1 := time.Parse(time.RFC3339, c.Query("start"))
	end, err2 := time.Parse(time.RFC3339, c.Query("end"))
	if err1 != nil || err2 != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "start and end must be RFC 3339 timestamps")
		return
	}

	est, err := h.service.EstimatePrice(c.Request.Context(), id, start, end)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, est)
}

func (h *Handler) GetAvailability(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	date := c.Query("date")
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}

	av, err := h.service.Availability(c.Request.Context(), id, date)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, av)
}

func (h *Handler) CreateStudio(c *gin.Context) {
	var req CreateStudioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	studio, err := h.service.CreateStudio(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"studio": studio})
}

func (h *Handler) UpdateStudio(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateStudioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	studio, err := h.service.UpdateStudio(c.Request.Context(), id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"studio": studio})
}

func (h *Handler) DeactivateStudio(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeactivateStudio(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Studio deactivated"})
}

/* ---------- EQUIPMENT HANDLERS ---------- */

func (h *Handler) GetEquipment(c *gin.Context) {
	var studioID *uuid.UUID
	if raw := c.Query("studio_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid studio ID")
			return
		}
		studioID = &id
	}

	items, err := h.service.ListEquipment(c.Request.Context(), studioID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"equipment": items})
}

func (h *Handler) CreateEquipment(c *gin.Context) {
	var req EquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	e, err := h.service.CreateEquipment(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"equipment": e})
}

func (h *Handler) UpdateEquipment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req EquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	e, err := h.service.UpdateEquipment(c.Request.Context(), id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"equipment": e})
}

func (h *Handler) DeleteEquipment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteEquipment(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Equipment deleted"})
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid ID")
		return uuid.Nil, false
	}
	return id, true
}

func handleError(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", verr.Fields)
	case errors.Is(err, scheduling.ErrInvalidInterval):
		response.Error(c, http.StatusBadRequest, "INVALID_INTERVAL", "Start time must be before end time")
	case errors.Is(err, ErrInvalidDate):
		response.Error(c, http.StatusBadRequest, "INVALID_DATE", "Date must be in YYYY-MM-DD format")
	case errors.Is(err, repository.ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
