package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/NguyenDuong24/ChappAt-sub000/internal/middleware"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/repository"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/service"
	"github.com/NguyenDuong24/ChappAt-sub000/pkg/cloudinary"

	"github.com/gin-gonic/gin"
)

const maxPhotoBytes = 10 << 20

type ProfileHandler struct {
	users     *repository.UserRepository
	locations *service.LocationService
	cloud     cloudinary.Client
}

func NewProfileHandler(users *repository.UserRepository, locations *service.LocationService, cloud cloudinary.Client) *ProfileHandler {
	return &ProfileHandler{users: users, locations: locations, cloud: cloud}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	u, err := h.users.GetOrCreate(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Username          *string `json:"username" binding:"omitempty,max=64"`
		DisplayName       *string `json:"display_name" binding:"omitempty,max=128"`
		Bio               *string `json:"bio" binding:"omitempty,max=1024"`
		DateOfBirth       *string `json:"date_of_birth"` // YYYY-MM-DD
		IsLocationVisible *bool   `json:"is_location_visible"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	u, err := h.users.GetOrCreate(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if req.Username != nil {
		u.Username = strings.TrimSpace(*req.Username)
	}
	if req.DisplayName != nil {
		u.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.Bio != nil {
		u.Bio = *req.Bio
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil || dob.After(time.Now()) {
			badRequest(c, "date_of_birth must be a past date in YYYY-MM-DD format")
			return
		}
		u.DateOfBirth = &dob
	}
	if err := h.users.Update(u); err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	if req.IsLocationVisible != nil {
		err = h.locations.SetVisibility(ctx, userID, *req.IsLocationVisible)
	} else {
		err = h.locations.Refresh(ctx, userID)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// UploadPhoto replaces the caller's profile photo shown on the radar.
func (h *ProfileHandler) UploadPhoto(c *gin.Context) {
	if h.cloud == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "photo uploads are not configured"})
		return
	}
	userID := middleware.GetUserID(c)
	file, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file required")
		return
	}
	if file.Size > maxPhotoBytes {
		badRequest(c, "file too large")
		return
	}
	f, err := file.Open()
	if err != nil {
		badRequest(c, "could not read file")
		return
	}
	defer f.Close()

	url, thumb, err := h.cloud.UploadImage(c.Request.Context(), f, "ChappAt/avatars/"+userID, "avatar")
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}
	u, err := h.users.GetOrCreate(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	u.PhotoURL = url
	if err := h.users.Update(u); err != nil {
		respondError(c, err)
		return
	}
	if err := h.locations.Refresh(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photo_url": url, "thumbnail_url": thumb})
}
