package handler

import (
	"net/http"

	"github.com/NguyenDuong24/ChappAt-sub000/internal/middleware"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type PresenceHandler struct {
	svc *service.LocationService
}

func NewPresenceHandler(svc *service.LocationService) *PresenceHandler {
	return &PresenceHandler{svc: svc}
}

func (h *PresenceHandler) SetPresence(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Status string `json:"status" binding:"required,oneof=ONLINE OFFLINE BUSY"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	presence, err := h.svc.SetPresence(c.Request.Context(), userID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, presence)
}

func (h *PresenceHandler) GetMyPresence(c *gin.Context) {
	presence, err := h.svc.Presence(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, presence)
}
