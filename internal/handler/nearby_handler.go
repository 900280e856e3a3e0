package handler

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/NguyenDuong24/ChappAt-sub000/config"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/domain"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/middleware"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/service"
	"github.com/NguyenDuong24/ChappAt-sub000/pkg/proximity"

	"github.com/gin-gonic/gin"
)

type NearbyHandler struct {
	proximity *service.ProximityService
	locations *service.LocationService
	cfg       *config.ProximityConfig
}

func NewNearbyHandler(p *service.ProximityService, locations *service.LocationService, cfg *config.ProximityConfig) *NearbyHandler {
	return &NearbyHandler{proximity: p, locations: locations, cfg: cfg}
}

// Nearby lists users around lat/lng, or around the caller's stored location
// when no coordinates are given.
func (h *NearbyHandler) Nearby(c *gin.Context) {
	userID := middleware.GetUserID(c)

	loc, ok := h.queryLocation(c)
	if !ok {
		return
	}
	if loc == nil {
		stored, err := h.locations.RequesterLocation(userID)
		if err != nil {
			respondError(c, err)
			return
		}
		loc = stored
	}

	opts := proximity.Options{
		Radius: h.cfg.DefaultRadiusMeters,
		MaxAge: h.cfg.DefaultMaxAge,
		Limit:  h.cfg.DefaultLimit,
	}
	if v := c.Query("radius_m"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
			badRequest(c, "radius_m must be a positive number")
			return
		}
		opts.Radius = math.Min(r, h.cfg.MaxRadiusMeters)
	}
	if v := c.Query("max_age_sec"); v != "" {
		s, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(s) || math.IsInf(s, 0) || s < 0 {
			badRequest(c, "max_age_sec must be zero or positive")
			return
		}
		opts.MaxAge = time.Duration(s * float64(time.Second))
	}
	if v := c.Query("include_offline"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			badRequest(c, "include_offline must be a boolean")
			return
		}
		opts.IncludeOffline = b
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(c, "limit must be zero or positive")
			return
		}
		opts.Limit = n
	}
	if opts.Limit == 0 || opts.Limit > h.cfg.MaxLimit {
		opts.Limit = h.cfg.MaxLimit
	}

	var heading *float64
	if v := c.Query("heading"); v != "" {
		hd, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(hd) || math.IsInf(hd, 0) {
			badRequest(c, "heading must be a number")
			return
		}
		heading = &hd
	}

	users, err := h.proximity.FindNearbyUsers(c.Request.Context(), userID, loc, opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users":    proximity.Radar(users, opts.Radius, heading),
		"count":    len(users),
		"radius_m": opts.Radius,
		"center":   gin.H{"latitude": loc.Latitude, "longitude": loc.Longitude},
		"heading":  heading,
	})
}

// Options returns the radius presets and server limits the radar screen offers.
func (h *NearbyHandler) Options(c *gin.Context) {
	presets := make([]float64, 0, len(domain.SearchRadiusMeters))
	for _, r := range domain.SearchRadiusMeters {
		if r <= h.cfg.MaxRadiusMeters {
			presets = append(presets, r)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"radius_presets_m":   presets,
		"default_radius_m":   h.cfg.DefaultRadiusMeters,
		"max_radius_m":       h.cfg.MaxRadiusMeters,
		"default_max_age_s":  h.cfg.DefaultMaxAge.Seconds(),
		"default_limit":      h.cfg.DefaultLimit,
		"max_limit":          h.cfg.MaxLimit,
		"rescan_interval_s":  h.cfg.RescanInterval.Seconds(),
		"heading_display_hz": h.cfg.HeadingDisplayHz,
	})
}

// queryLocation parses lat/lng. Both or neither must be set; ok=false means a response was written.
func (h *NearbyHandler) queryLocation(c *gin.Context) (*proximity.Location, bool) {
	latS, lngS := c.Query("lat"), c.Query("lng")
	if latS == "" && lngS == "" {
		return nil, true
	}
	lat, err1 := strconv.ParseFloat(latS, 64)
	lng, err2 := strconv.ParseFloat(lngS, 64)
	if err1 != nil || err2 != nil {
		badRequest(c, "lat and lng must both be numbers")
		return nil, false
	}
	return &proximity.Location{Latitude: lat, Longitude: lng, Timestamp: time.Now().UTC()}, true
}
