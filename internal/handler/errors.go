package handler

import (
	"errors"
	"net/http"

	"github.com/NguyenDuong24/ChappAt-sub000/internal/domain"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/logger"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/repository"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/service"
	"github.com/NguyenDuong24/ChappAt-sub000/pkg/proximity"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps domain errors to status codes. Unknown errors are logged and hidden.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, proximity.ErrLocationUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": "your location is unknown, share it first", "code": domain.CodeLocationUnavailable})
	case errors.Is(err, proximity.ErrInvalidLocation),
		errors.Is(err, proximity.ErrInvalidOptions),
		errors.Is(err, service.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": domain.CodeInvalidInput})
	case errors.Is(err, proximity.ErrCandidatePoolFetch):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "nearby search is temporarily unavailable", "code": domain.CodePoolUnavailable})
	case errors.Is(err, repository.ErrStaleLocation):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": domain.CodeStaleLocation})
	default:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": domain.CodeInternal})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": domain.CodeInvalidInput})
}
