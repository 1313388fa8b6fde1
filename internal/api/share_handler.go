package api

import (
	"alcyxob/trainer-app/internal/service"
	"alcyxob/trainer-app/internal/web"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ShareHandler manages public plan links and serves them to anonymous visitors.
type ShareHandler struct {
	shareService service.ShareService
}

func NewShareHandler(shareService service.ShareService) *ShareHandler {
	return &ShareHandler{shareService: shareService}
}

// SharePlan godoc
// @Summary Create or rotate a plan's public link
// @Description Any previous link stops working.
// @Tags Sharing
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 200 {object} service.ShareInfo
// @Failure 404 {object} gin.H "Plan not found"
// @Failure 409 {object} gin.H "Plan is inactive"
// @Router /plans/{id}/share [post]
func (h *ShareHandler) SharePlan(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	info, err := h.shareService.Share(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		respondError(c, err, "share plan")
		return
	}
	c.JSON(http.StatusOK, info)
}

// GetShare godoc
// @Summary Get a plan's public link
// @Tags Sharing
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 200 {object} service.ShareInfo
// @Failure 404 {object} gin.H "Plan not found or not shared"
// @Router /plans/{id}/share [get]
func (h *ShareHandler) GetShare(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	info, err := h.shareService.Info(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		respondError(c, err, "load share link")
		return
	}
	c.JSON(http.StatusOK, info)
}

// RevokeShare godoc
// @Summary Revoke a plan's public link
// @Tags Sharing
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 204
// @Router /plans/{id}/share [delete]
func (h *ShareHandler) RevokeShare(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	if err := h.shareService.Revoke(c.Request.Context(), id, c.Param("id")); err != nil {
		respondError(c, err, "revoke share link")
		return
	}
	c.Status(http.StatusNoContent)
}

// ShareQRCode godoc
// @Summary QR code of a plan's public link
// @Tags Sharing
// @Produce png
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param size query int false "Image size in pixels (default 256, max 1024)"
// @Success 200 {file} binary
// @Failure 404 {object} gin.H "Plan not found or not shared"
// @Router /plans/{id}/share/qr [get]
func (h *ShareHandler) ShareQRCode(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	size, err := queryInt(c, "size")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	png, err := h.shareService.QRCode(c.Request.Context(), id, c.Param("id"), size)
	if err != nil {
		respondError(c, err, "render QR code")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

// GetPublicPlan godoc
// @Summary Read-only view of a shared plan
// @Description No authentication; the token is the credential.
// @Tags Public
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} service.PublicPlanView
// @Failure 404 {object} gin.H "Unknown, revoked or inactive plan"
// @Router /public/plans/{token} [get]
func (h *ShareHandler) GetPublicPlan(c *gin.Context) {
	view, err := h.shareService.PublicPlan(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err, "load shared plan")
		return
	}
	c.JSON(http.StatusOK, view)
}

// PublicPlanPage renders the shared plan as HTML for students opening the link or QR code.
func (h *ShareHandler) PublicPlanPage(c *gin.Context) {
	view, err := h.shareService.PublicPlan(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, service.ErrPublicPlanNotFound) {
			c.HTML(http.StatusNotFound, web.NotFoundPage, gin.H{
				"Title":   "Plan not found",
				"Message": "This plan link is invalid or has been revoked. Ask your trainer for a new one.",
			})
			return
		}
		respondError(c, err, "load shared plan")
		return
	}
	c.Header("X-Robots-Tag", "noindex")
	c.HTML(http.StatusOK, web.PublicPlanPage, gin.H{"Title": view.Name, "Plan": view})
}
