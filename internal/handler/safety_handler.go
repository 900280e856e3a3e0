package handler

import (
	"net/http"
	"strings"

	"github.com/NguyenDuong24/ChappAt-sub000/internal/middleware"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/models"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/repository"

	"github.com/gin-gonic/gin"
)

type BlockHandler struct {
	repo *repository.BlockRepository
}

func NewBlockHandler(repo *repository.BlockRepository) *BlockHandler {
	return &BlockHandler{repo: repo}
}

func (h *BlockHandler) Block(c *gin.Context) {
	blockerID := middleware.GetUserID(c)
	blockedID := strings.TrimSpace(c.Param("user_id"))
	if blockedID == "" {
		badRequest(c, "user_id required")
		return
	}
	if blockerID == blockedID {
		badRequest(c, "cannot block yourself")
		return
	}
	if err := h.repo.Create(&models.Block{BlockerID: blockerID, BlockedID: blockedID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to block"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *BlockHandler) Unblock(c *gin.Context) {
	blockerID := middleware.GetUserID(c)
	if err := h.repo.Delete(blockerID, c.Param("user_id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unblock"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
