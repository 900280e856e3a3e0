package handler

import (
	"net/http"

	"github.com/NguyenDuong24/ChappAt-sub000/internal/middleware"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/repository"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/service"
	"github.com/NguyenDuong24/ChappAt-sub000/pkg/location"
	"github.com/NguyenDuong24/ChappAt-sub000/pkg/proximity"

	"github.com/gin-gonic/gin"
)

// DistanceHandler returns how far another user is, without revealing their coordinates.
type DistanceHandler struct {
	locations *service.LocationService
	blocks    *repository.BlockRepository
}

func NewDistanceHandler(locations *service.LocationService, blocks *repository.BlockRepository) *DistanceHandler {
	return &DistanceHandler{locations: locations, blocks: blocks}
}

func (h *DistanceHandler) GetDistance(c *gin.Context) {
	userID := middleware.GetUserID(c)
	otherID := c.Param("user_id")
	if otherID == "" || otherID == userID {
		badRequest(c, "invalid user_id")
		return
	}

	me, err := h.locations.Current(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if me == nil {
		respondError(c, proximity.ErrLocationUnavailable)
		return
	}

	hidden, err := h.blocks.HiddenFrom(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	other, err := h.locations.Current(otherID)
	if err != nil {
		respondError(c, err)
		return
	}
	if _, blocked := hidden[otherID]; blocked || other == nil || !other.IsLocationVisible {
		c.JSON(http.StatusNotFound, gin.H{"error": "user location not available"})
		return
	}

	d := location.Distance(me.Latitude, me.Longitude, other.Latitude, other.Longitude)
	b := location.Bearing(me.Latitude, me.Longitude, other.Latitude, other.Longitude)
	c.JSON(http.StatusOK, gin.H{
		"user_id":         otherID,
		"distance_meters": d,
		"distance_label":  location.FormatDistance(d),
		"bearing_degrees": b,
		"direction":       location.CardinalDirection(b),
		"last_updated_at": other.LastUpdatedAt,
	})
}
