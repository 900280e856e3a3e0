package handler

import (
	"net/http"
	"time"

	"github.com/NguyenDuong24/ChappAt-sub000/internal/middleware"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type LocationHandler struct {
	svc *service.LocationService
}

func NewLocationHandler(svc *service.LocationService) *LocationHandler {
	return &LocationHandler{svc: svc}
}

func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Latitude          *float64   `json:"latitude" binding:"required"`
		Longitude         *float64   `json:"longitude" binding:"required"`
		AccuracyMeters    float64    `json:"accuracy_meters"`
		RecordedAt        *time.Time `json:"recorded_at"`
		IsLocationVisible *bool      `json:"is_location_visible"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	u := service.LocationUpdate{
		Latitude:       *req.Latitude,
		Longitude:      *req.Longitude,
		AccuracyMeters: req.AccuracyMeters,
		Visible:        req.IsLocationVisible,
	}
	if req.RecordedAt != nil {
		u.RecordedAt = *req.RecordedAt
	}
	loc, err := h.svc.Update(c.Request.Context(), userID, u)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

func (h *LocationHandler) GetMyLocation(c *gin.Context) {
	userID := middleware.GetUserID(c)
	loc, err := h.svc.Current(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if loc == nil {
		c.JSON(http.StatusOK, gin.H{"latitude": nil, "longitude": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"latitude":            loc.Latitude,
		"longitude":           loc.Longitude,
		"accuracy_meters":     loc.AccuracyMeters,
		"is_location_visible": loc.IsLocationVisible,
		"recorded_at":         loc.RecordedAt,
		"last_updated_at":     loc.LastUpdatedAt,
	})
}

// ClearLocation forgets the caller's position everywhere.
func (h *LocationHandler) ClearLocation(c *gin.Context) {
	if err := h.svc.Clear(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
