package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SessionCounter reports open realtime sessions.
type SessionCounter interface {
	SessionCount() int
	UserCount() int
}

type HealthHandler struct {
	db       *gorm.DB
	sessions SessionCounter
}

func NewHealthHandler(db *gorm.DB, sessions SessionCounter) *HealthHandler {
	return &HealthHandler{db: db, sessions: sessions}
}

func (h *HealthHandler) Health(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	status := http.StatusOK
	if sqlDB, err := h.db.DB(); err != nil {
		resp["status"], resp["database"] = "degraded", err.Error()
		status = http.StatusServiceUnavailable
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			resp["status"], resp["database"] = "degraded", err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	if h.sessions != nil {
		resp["radar_sessions"] = h.sessions.SessionCount()
		resp["radar_users"] = h.sessions.UserCount()
	}
	c.JSON(status, resp)
}
