package api

import (
	"alcyxob/trainer-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type TrainerHandler struct {
	trainerService service.TrainerService
}

func NewTrainerHandler(trainerService service.TrainerService) *TrainerHandler {
	return &TrainerHandler{trainerService: trainerService}
}

// --- DTOs for the trainer's own account ---

type UpdateProfileRequest struct {
	Name         string `json:"name" binding:"required"`
	Phone        string `json:"phone"`
	BusinessName string `json:"businessName"`
	Bio          string `json:"bio"`
	Currency     string `json:"currency"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,max=72"`
}

type AvatarUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type SetAvatarRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

// GetMe godoc
// @Summary Get the authenticated trainer's profile
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Success 200 {object} TrainerResponse
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /me [get]
func (h *TrainerHandler) GetMe(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	profile, err := h.trainerService.GetProfile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "load profile")
		return
	}
	c.JSON(http.StatusOK, MapProfileToResponse(profile))
}

// UpdateMe godoc
// @Summary Update the authenticated trainer's profile
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} TrainerResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Router /me [put]
func (h *TrainerHandler) UpdateMe(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	profile, err := h.trainerService.UpdateProfile(c.Request.Context(), id, service.ProfileInput{
		Name:         req.Name,
		Phone:        req.Phone,
		BusinessName: req.BusinessName,
		Bio:          req.Bio,
		Currency:     req.Currency,
	})
	if err != nil {
		respondError(c, err, "update profile")
		return
	}
	c.JSON(http.StatusOK, MapProfileToResponse(profile))
}

// ChangePassword godoc
// @Summary Change the authenticated trainer's password
// @Tags Trainer
// @Accept json
// @Security BearerAuth
// @Param passwords body ChangePasswordRequest true "Current and new password"
// @Success 204
// @Failure 400 {object} gin.H "Invalid input or wrong current password"
// @Router /me/password [put]
func (h *TrainerHandler) ChangePassword(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	if err := h.trainerService.ChangePassword(c.Request.Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err, "change password")
		return
	}
	c.Status(http.StatusNoContent)
}

// RequestAvatarUpload godoc
// @Summary Get a presigned URL to upload an avatar
// @Description The client PUTs the image to uploadUrl, then confirms with PUT /me/avatar.
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AvatarUploadRequest true "Image content type"
// @Success 200 {object} service.UploadURLResponse
// @Failure 400 {object} gin.H "Unsupported content type"
// @Failure 503 {object} gin.H "Storage not configured"
// @Router /me/avatar/upload-url [post]
func (h *TrainerHandler) RequestAvatarUpload(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	var req AvatarUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	resp, err := h.trainerService.RequestAvatarUpload(c.Request.Context(), id, req.ContentType)
	if err != nil {
		respondError(c, err, "generate upload URL")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetAvatar godoc
// @Summary Confirm an uploaded avatar
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SetAvatarRequest true "Uploaded object key"
// @Success 200 {object} TrainerResponse
// @Failure 400 {object} gin.H "Key does not belong to the trainer"
// @Failure 503 {object} gin.H "Storage not configured"
// @Router /me/avatar [put]
func (h *TrainerHandler) SetAvatar(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	var req SetAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	profile, err := h.trainerService.SetAvatar(c.Request.Context(), id, req.ObjectKey)
	if err != nil {
		respondError(c, err, "set avatar")
		return
	}
	c.JSON(http.StatusOK, MapProfileToResponse(profile))
}
