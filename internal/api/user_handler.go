package api

import (
	"alcyxob/fitcoach/internal/logger"
	"alcyxob/fitcoach/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// UserHandler serves profiles and the trainer directory.
type UserHandler struct {
	userService service.UserService
	log         *logger.Logger
}

func NewUserHandler(userService service.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{userService: userService, log: log}
}

// UpdateProfileRequest only touches the fields that are present.
type UpdateProfileRequest struct {
	Name            *string  `json:"name"`
	Bio             *string  `json:"bio"`
	Phone           *string  `json:"phone"`
	Specialty       *string  `json:"specialty"`
	ExperienceYears *int     `json:"experienceYears" binding:"omitempty,min=0"`
	HourlyRateCents *int64   `json:"hourlyRateCents" binding:"omitempty,min=0"`
	Age             *int     `json:"age" binding:"omitempty,min=0"`
	HeightCm        *float64 `json:"heightCm" binding:"omitempty,min=0"`
	WeightKg        *float64 `json:"weightKg" binding:"omitempty,min=0"`
	Goals           *string  `json:"goals"`
}

type ProfileImageUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ProfileImageUploadResponse struct {
	UploadURL string    `json:"uploadUrl"`
	ObjectKey string    `json:"objectKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ConfirmProfileImageRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

// GetMe godoc
// @Summary Get the caller's profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Router /me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	profile, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapProfileToResponse(profile))
}

// GetUser godoc
// @Summary Get a user's public profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} gin.H
// @Router /users/{userId} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := pathObjectID(c, "userId")
	if !ok {
		return
	}
	profile, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapProfileToResponse(profile))
}

// UpdateMe godoc
// @Summary Update the caller's profile
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} UserResponse
// @Router /me [patch]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	profile, err := h.userService.UpdateProfile(c.Request.Context(), userID, service.ProfileUpdate{
		Name:            req.Name,
		Bio:             req.Bio,
		Phone:           req.Phone,
		Specialty:       req.Specialty,
		ExperienceYears: req.ExperienceYears,
		HourlyRateCents: req.HourlyRateCents,
		Age:             req.Age,
		HeightCm:        req.HeightCm,
		WeightKg:        req.WeightKg,
		Goals:           req.Goals,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapProfileToResponse(profile))
}

// ListTrainers godoc
// @Summary Browse trainers
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param specialty query string false "Specialty substring"
// @Success 200 {array} UserResponse
// @Router /trainers [get]
func (h *UserHandler) ListTrainers(c *gin.Context) {
	trainers, err := h.userService.ListTrainers(c.Request.Context(), c.Query("specialty"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	responses := make([]UserResponse, len(trainers))
	for i := range trainers {
		responses[i] = MapProfileToResponse(&trainers[i])
	}
	c.JSON(http.StatusOK, responses)
}

// RequestProfileImageUpload godoc
// @Summary Get a pre-signed URL for uploading a profile image
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ProfileImageUploadRequest true "Image content type"
// @Success 200 {object} ProfileImageUploadResponse
// @Failure 503 {object} gin.H "Storage not configured"
// @Router /me/profile-image/upload-url [post]
func (h *UserHandler) RequestProfileImageUpload(c *gin.Context) {
	var req ProfileImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	upload, err := h.userService.RequestProfileImageUpload(c.Request.Context(), userID, req.ContentType)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ProfileImageUploadResponse{
		UploadURL: upload.UploadURL,
		ObjectKey: upload.ObjectKey,
		ExpiresAt: upload.ExpiresAt,
	})
}

// ConfirmProfileImage godoc
// @Summary Attach an uploaded object as the profile image
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ConfirmProfileImageRequest true "Uploaded object key"
// @Success 200 {object} UserResponse
// @Router /me/profile-image [put]
func (h *UserHandler) ConfirmProfileImage(c *gin.Context) {
	var req ConfirmProfileImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	profile, err := h.userService.ConfirmProfileImage(c.Request.Context(), userID, req.ObjectKey)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapProfileToResponse(profile))
}
